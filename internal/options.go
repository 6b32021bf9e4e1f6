package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/userdesk/pkg/cookie"
	"github.com/dmitrymomot/userdesk/pkg/fsroute"
	"github.com/dmitrymomot/userdesk/pkg/health"
	"github.com/dmitrymomot/userdesk/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithPages builds the route map from the page files under root in fsys.
// Handlers registered later attach to the discovered routes. It panics if
// the tree holds conflicting routes.
func WithPages(fsys fs.FS, root string) Option {
	return func(a *App) {
		routes, err := fsroute.Build[HandlerFunc](fsys, root)
		if err != nil {
			panic(fmt.Sprintf("pages: %v", err))
		}
		a.routes = routes
	}
}

// WithMiddleware appends page pipeline middleware. The first middleware is
// the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds net/http middleware on the chi router. It wraps
// every endpoint, health and metrics included.
//
//	internal.WithHTTPMiddleware(middleware.RealIP)
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMWs = append(a.httpMWs, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithHealthChecks enables /health/live and /health/ready.
//
//	internal.WithHealthChecks(
//		internal.WithReadinessCheck("db", db.Healthcheck(pool)),
//		internal.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(a *App) {
		a.metrics = h
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager shared by sessions,
// auth and alerts.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookies = cookie.New(opts...)
	}
}

// WithSession enables server-side sessions on store. The Session
// middleware attaches them to requests.
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionStore = store
		a.sessionOpts = opts
	}
}

// WithJobs sets the background job runner. It is started and stopped with
// the server, and Context.Enqueue dispatches to it.
func WithJobs(runner JobRunner) Option {
	return func(a *App) {
		a.jobs = runner
	}
}

// WithDev enables development mode: detailed error pages and no caching.
func WithDev(dev bool) Option {
	return func(a *App) {
		a.dev = dev
	}
}
