package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/userdesk/internal"
)

// DefaultStackSize caps the captured stack trace in bytes.
const DefaultStackSize = 4 << 10

// PanicError carries a recovered panic value and, unless disabled, the
// stack of the panicking goroutine. It always maps to 500.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string      { return fmt.Sprintf("panic: %v", e.Value) }
func (e *PanicError) StatusCode() int    { return http.StatusInternalServerError }
func (e *PanicError) StackTrace() string { return string(e.Stack) }

// AsPanicError reports whether err wraps a *PanicError.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

type recoverConfig struct {
	stackSize int
	noStack   bool
}

// RecoverOption tunes Recover.
type RecoverOption func(*recoverConfig)

// WithRecoverStackSize overrides DefaultStackSize.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack skips stack capture.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) { cfg.noStack = true }
}

// Recover turns a panic in the rest of the chain into a *PanicError.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				pe := &PanicError{Value: v}
				if !cfg.noStack {
					buf := make([]byte, cfg.stackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
				}
				c.LogError("panic recovered", "panic", v, "route", c.Route())
				err = pe
			}()
			return next(c)
		}
	}
}
