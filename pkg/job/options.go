package job

import (
	"context"
	"log/slog"
	"time"
)

type config struct {
	registry   taskRegistry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []scheduleConfig
	maxWorkers int
	backoff    time.Duration
}

func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

type scheduleConfig struct {
	handler  func(context.Context) error
	name     string
	schedule string
}

// Option configures a Manager or an Inline runner.
type Option func(*config)

// WithTask registers a task. The payload type is named explicitly:
//
//	func (t *WelcomeEmail) Name() string { return "welcome_email" }
//	func (t *WelcomeEmail) Handle(ctx context.Context, p WelcomeEmailPayload) error
//
//	job.WithTask[WelcomeEmailPayload](tasks.NewWelcomeEmail(sender))
func WithTask[P any](task Task[P]) Option {
	return func(c *config) {
		c.registry.register(task.Name(), newTaskWrapper(task))
	}
}

// WithScheduledTask registers a periodic task. An invalid schedule fails
// NewManager and NewInline.
func WithScheduledTask(task ScheduledTask) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue configures a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the default queue's worker count (default 100).
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithRetryBackoff sets the delay before the first retry of an inline job
// (default 1s). Each later retry waits twice as long, up to a minute.
// Manager leaves retry timing to River.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.backoff = d
		}
	}
}
