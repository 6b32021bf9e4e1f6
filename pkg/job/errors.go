package job

import "errors"

// Job errors.
var (
	// ErrNotConfigured is returned when a job is enqueued on an app
	// without a dispatcher.
	ErrNotConfigured = errors.New("job: not configured")

	// ErrUnknownTask is returned when attempting to execute a task
	// that has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a task payload cannot be
	// unmarshaled into the expected type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when stopping a runner that is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrPoolRequired is returned by NewManager without a pool.
	ErrPoolRequired = errors.New("job: pool is required")

	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
