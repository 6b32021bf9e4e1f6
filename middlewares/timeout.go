package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/userdesk/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutError reports a request that outlived its deadline. It maps to 503.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func (e *TimeoutError) StatusCode() int { return http.StatusServiceUnavailable }

// AsTimeoutError reports whether err wraps a *TimeoutError.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}

// Timeout bounds the rest of the chain to d (DefaultTimeout when d <= 0).
// The request context carries the deadline, so stores and repositories
// called with c.Context() are cancelled with it. The chain runs on the
// serving goroutine; when the deadline passed and nothing was written yet,
// the result is replaced by a *TimeoutError.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()
			c.SetContext(ctx)

			err := next(c)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Written() {
				c.LogWarn("request timeout", "timeout", d.String(), "route", c.Route())
				return &TimeoutError{Duration: d}
			}
			return err
		}
	}
}
