package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
)

// Task handles one-off jobs carrying a P payload.
type Task[P any] interface {
	Name() string
	Handle(ctx context.Context, payload P) error
}

// ScheduledTask runs on a five field cron schedule without a payload.
type ScheduledTask interface {
	Name() string
	Schedule() string
	Handle(ctx context.Context) error
}

type taskExecutor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

// executorFunc adapts a function to taskExecutor.
type executorFunc func(ctx context.Context, payload json.RawMessage) error

func (f executorFunc) Execute(ctx context.Context, payload json.RawMessage) error {
	return f(ctx, payload)
}

// newTaskWrapper decodes the JSON payload into P before handing it to task.
// An empty payload yields the zero P.
func newTaskWrapper[P any](task Task[P]) executorFunc {
	return func(ctx context.Context, raw json.RawMessage) error {
		var payload P
		if len(raw) != 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return errors.Join(ErrInvalidPayload, err)
			}
		}
		return task.Handle(ctx, payload)
	}
}

// scheduledTaskExecutor ignores whatever payload the queue stored.
type scheduledTaskExecutor struct {
	handler func(context.Context) error
}

func (e *scheduledTaskExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return e.handler(ctx)
}

// taskRegistry is filled while options are applied and only read once a
// runner exists, so it needs no locking.
type taskRegistry map[string]taskExecutor

func newTaskRegistry() taskRegistry { return make(taskRegistry) }

func (r taskRegistry) register(name string, e taskExecutor) { r[name] = e }

func (r taskRegistry) get(name string) (taskExecutor, bool) {
	e, ok := r[name]
	return e, ok
}

func (r taskRegistry) names() []string { return slices.Sorted(maps.Keys(r)) }
