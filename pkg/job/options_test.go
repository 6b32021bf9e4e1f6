package job

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionsTestTask struct{}

func (t *optionsTestTask) Name() string { return "options_test" }

func (t *optionsTestTask) Handle(context.Context, struct{}) error { return nil }

type scheduledTestTask struct {
	schedule string
}

func (t *scheduledTestTask) Name() string     { return "scheduled_test" }
func (t *scheduledTestTask) Schedule() string { return t.schedule }

func (t *scheduledTestTask) Handle(context.Context) error { return nil }

func TestOptions(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	assert.Nil(t, cfg.logger)
	assert.Zero(t, cfg.maxWorkers)

	log := slog.Default()
	for _, opt := range []Option{
		WithTask[struct{}](&optionsTestTask{}),
		WithScheduledTask(&scheduledTestTask{schedule: "0 * * * *"}),
		WithQueue("email", 10),
		WithQueue("zero", 0),
		WithLogger(log),
		WithLogger(nil),
		WithMaxWorkers(50),
		WithMaxWorkers(-1),
	} {
		opt(cfg)
	}

	_, ok := cfg.registry.get("options_test")
	assert.True(t, ok)
	require.Len(t, cfg.schedules, 1)
	assert.Equal(t, "scheduled_test", cfg.schedules[0].name)
	assert.Equal(t, "0 * * * *", cfg.schedules[0].schedule)
	assert.Equal(t, map[string]int{"email": 10}, cfg.queues)
	assert.Same(t, log, cfg.logger)
	assert.Equal(t, 50, cfg.maxWorkers)
}
