package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/userdesk/pkg/access"
	"github.com/dmitrymomot/userdesk/pkg/cookie"
	"github.com/dmitrymomot/userdesk/pkg/fsroute"
	"github.com/dmitrymomot/userdesk/pkg/health"
	"github.com/dmitrymomot/userdesk/pkg/job"
	"github.com/dmitrymomot/userdesk/pkg/logger"
	"github.com/dmitrymomot/userdesk/pkg/session"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// JobRunner dispatches background jobs and has a lifecycle tied to the
// server. job.Manager and job.Inline implement it.
type JobRunner interface {
	job.Dispatcher
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// App owns the chi router, the page route map, the access table and the
// page pipeline. It is immutable after New.
//
// Health and metrics endpoints are served by chi directly. Every other
// request runs through the page middlewares and then dispatch.
type App struct {
	router       chi.Router
	routes       *fsroute.Map[HandlerFunc]
	rules        *access.Table
	errorHandler ErrorHandler
	healthConfig *healthConfig
	metrics      http.Handler
	logger       *slog.Logger
	cookies      *cookie.Manager
	sessions     *SessionManager
	sessionStore session.Store
	jobs         JobRunner
	sessionOpts  []SessionOption
	middlewares  []Middleware
	httpMWs      []func(http.Handler) http.Handler
	handlers     []Handler
	dev          bool
}

// New creates a new application with the given options.
//
//	app := internal.New(
//		internal.WithPages(views.Pages, "pages"),
//		internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//		internal.WithHandlers(handlers.NewAuth(...), handlers.NewUsers(...)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:  chi.NewRouter(),
		routes:  fsroute.New[HandlerFunc](),
		rules:   access.NewTable(),
		logger:  logger.NewNope(),
		cookies: cookie.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.errorHandler == nil {
		a.errorHandler = DefaultErrorHandler(a.dev)
	}
	if a.sessionStore != nil {
		a.sessions = NewSessionManager(a.sessionStore, a.cookies, a.sessionOpts...)
	}

	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Routes returns the page route map.
func (a *App) Routes() *fsroute.Map[HandlerFunc] {
	return a.routes
}

// Rules returns the access table.
func (a *App) Rules() *access.Table {
	return a.rules
}

// Run starts the HTTP server and blocks until shutdown. A configured job
// runner is started before serving and stopped after the server drains.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := runtimeConfig{handler: a.router, address: addr, logger: a.logger}
	if a.jobs != nil {
		cfg.startupHooks = append(cfg.startupHooks, a.jobs.Start)
		cfg.shutdownHooks = append(cfg.shutdownHooks, a.jobs.Stop)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return runServer(cfg)
}

func (a *App) setupRoutes() {
	for _, mw := range a.httpMWs {
		a.router.Use(mw)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}
	if a.metrics != nil {
		a.router.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r := &routerAdapter{routes: a.routes, rules: a.rules}
	for _, h := range a.handlers {
		h.Routes(r)
	}
	bindPages(a.routes)

	pages := a.serve(Chain(a.dispatch, a.middlewares...))
	a.router.Handle("/", pages)
	a.router.Handle("/*", pages)
}

// serve adapts a HandlerFunc to net/http using the app's error handler.
func (a *App) serve(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("error after response was written", slog.Any("error", err))
		return
	}
	if herr := a.errorHandler(c, err); herr != nil {
		c.LogError("error handler failed", slog.Any("error", herr), slog.Any("cause", err))
		if !c.Written() {
			http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets the liveness endpoint path (default "/health/live").
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets the readiness endpoint path (default "/health/ready").
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Checks run in parallel.
//
//	internal.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}
