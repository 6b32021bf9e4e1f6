package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/userdesk/pkg/logger"
)

var (
	ErrCheckFailed  = errors.New("health: one or more checks failed")
	ErrCheckTimeout = errors.New("health: check timed out")
)

const (
	defaultTimeout = 5 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the probes returned by db.Healthcheck and
// redis.Healthcheck.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe.
type Checks map[string]CheckFunc

// Response is the JSON body of a probe.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one probe.
type Check struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures the readiness handler.
type Option func(*config)

// WithTimeout bounds the time all checks may take together.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{timeout: defaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks concurrently. The returned error joins
// ErrCheckFailed (or ErrCheckTimeout) with every failure.
func Run(ctx context.Context, checks Checks, opts ...Option) (*Response, error) {
	cfg := newConfig(opts...)
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	resp.Checks = make(map[string]Check, len(checks))
	for name, check := range checks {
		wg.Go(func() {
			start := time.Now()
			err := check(ctx)
			result := Check{Status: StatusHealthy, Elapsed: time.Since(start).Round(time.Millisecond).String()}
			if err != nil {
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					err = errors.Join(ErrCheckTimeout, err)
				}
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = result
			if err != nil {
				errs = append(errs, err)
			}
		})
	}
	wg.Wait()

	if len(errs) > 0 {
		resp.Status = StatusUnhealthy
		return resp, errors.Join(append([]error{ErrCheckFailed}, errs...)...)
	}
	return resp, nil
}
