package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption tunes App.Run.
type RunOption func(*runtimeConfig)

// Logger overrides the application logger for server lifecycle messages.
func Logger(l *slog.Logger) RunOption {
	return func(c *runtimeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds the drain of in-flight requests plus every
// shutdown hook. Default 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runtimeConfig) { c.shutdownTimeout = d }
}

// StartupHook runs before the listener opens. An error aborts Run and the
// shutdown hooks still run.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runtimeConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook runs after the server drained, in registration order:
//
//	internal.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runtimeConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext stops the server when ctx is done, in addition to SIGINT and
// SIGTERM.
func WithContext(ctx context.Context) RunOption {
	return func(c *runtimeConfig) { c.baseCtx = ctx }
}
