package userdesk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/config"
	"github.com/dmitrymomot/userdesk/internal/handlers"
	"github.com/dmitrymomot/userdesk/internal/tasks"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/internal/views"
	"github.com/dmitrymomot/userdesk/middlewares"
	"github.com/dmitrymomot/userdesk/pkg/cache"
	"github.com/dmitrymomot/userdesk/pkg/cookie"
	"github.com/dmitrymomot/userdesk/pkg/db"
	"github.com/dmitrymomot/userdesk/pkg/job"
	"github.com/dmitrymomot/userdesk/pkg/jwt"
	"github.com/dmitrymomot/userdesk/pkg/logger"
	"github.com/dmitrymomot/userdesk/pkg/mailer"
	"github.com/dmitrymomot/userdesk/pkg/mailer/resend"
	"github.com/dmitrymomot/userdesk/pkg/metrics"
	"github.com/dmitrymomot/userdesk/pkg/password"
	"github.com/dmitrymomot/userdesk/pkg/ratelimit"
	"github.com/dmitrymomot/userdesk/pkg/redis"
	"github.com/dmitrymomot/userdesk/pkg/session"
)

const (
	sessionKeyPrefix  = "userdesk:session"
	identityKeyPrefix = "userdesk:identity"
	tokenIssuer       = "userdesk"
)

// Server is the assembled application. Build it with New and start it
// with Run.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	app     *internal.App
	repo    *users.Repository
	limiter *ratelimit.Limiter
	pool    *pgxpool.Pool
	redis   goredis.UniversalClient
	closers []func(context.Context) error
}

// New connects the configured backends, applies migrations, seeds the
// admin account and builds the HTTP application. Anything opened before a
// failure is closed again.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	s := &Server{cfg: cfg, logger: o.logger}
	if s.logger == nil {
		s.logger = logger.New(cfg.Logger,
			middlewares.RequestIDExtractor(),
			middlewares.UserIDExtractor(),
			middlewares.SessionIDExtractor(),
		)
	}

	if err := s.build(ctx, o); err != nil {
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Close releases pools, clients and caches in reverse order of opening.
// Run does this on shutdown; call Close only for a Server that never ran.
func (s *Server) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Server) onClose(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) build(ctx context.Context, o *options) error {
	cfg := s.cfg
	dev := cfg.Dev()

	if err := s.connect(ctx); err != nil {
		return err
	}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return errors.Join(ErrBuildServer, err)
	}
	store := o.store
	if store == nil {
		store = s.userStore()
	}
	s.repo = users.NewRepository(store, users.WithHasher(hasher))

	if !cfg.Seed.Disabled {
		if err := seedAdmin(ctx, s.repo, cfg.Seed, s.logger); err != nil {
			return err
		}
	}

	tokens, err := jwt.NewFromString(cfg.Secret, jwt.WithTTL(cfg.TokenTTL), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return errors.Join(ErrBuildServer, err)
	}

	sessions := session.NewCacheStore(
		newCache[session.Session](s, sessionKeyPrefix),
		session.WithIdleTimeout(cfg.SessionIdleTimeout),
		session.WithLifetime(cfg.SessionLifetime),
	)
	identities := users.NewIdentities(s.repo, newCache[users.User](s, identityKeyPrefix), cfg.IdentityTTL)

	renderer, err := views.Default(dev)
	if err != nil {
		return errors.Join(ErrBuildServer, err)
	}

	sender := o.sender
	if sender == nil {
		if sender, err = s.mailSender(); err != nil {
			return errors.Join(ErrBuildServer, err)
		}
	}
	mail := mailer.New(sender, mailer.NewRenderer(tasks.Templates), cfg.Mailer)

	runner, err := s.jobRunner(mail, sessions)
	if err != nil {
		return errors.Join(ErrBuildServer, err)
	}
	s.repo.OnCreate(tasks.EnqueueWelcome(runner, s.logger))

	stats := metrics.New(cfg.Namespace)
	s.limiter = ratelimit.New(
		ratelimit.WithRate(rate.Limit(cfg.LoginRate)),
		ratelimit.WithBurst(cfg.LoginBurst),
	)

	hs := []internal.Handler{
		handlers.NewAuth(s.repo, tokens,
			handlers.WithRecorder(stats),
			handlers.WithThrottle(middlewares.RateLimit(s.limiter)),
		),
		handlers.NewUsers(s.repo, handlers.WithRecorder(stats)),
	}
	if dev {
		hs = append(hs, handlers.Dev{})
	}

	s.app = internal.New(
		internal.WithLogger(s.logger),
		internal.WithDev(dev),
		internal.WithPages(views.Files, views.PagesDir),
		internal.WithCookieOptions(cookie.WithSecret(cfg.Secret), cookie.WithSecure(!dev)),
		internal.WithSession(sessions, internal.WithSessionMaxAge(cfg.SessionLifetime)),
		internal.WithHTTPMiddleware(s.httpMiddlewares()...),
		internal.WithHealthChecks(s.readinessChecks(runner)...),
		internal.WithMetrics(stats.Handler()),
		internal.WithJobs(runner),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Metrics(stats),
			middlewares.Timeout(cfg.RequestTimeout),
			middlewares.SecureHeaders(dev),
			middlewares.Static(views.Public, "/public", !dev),
			middlewares.Session(),
			middlewares.Body(cfg.BodyLimit),
			middlewares.Auth(tokens, identities),
			middlewares.Alert(),
			middlewares.Pages(renderer, dev),
		),
		internal.WithHandlers(hs...),
	)
	return nil
}

// connect opens Postgres and Redis when they are configured and migrates
// the database.
func (s *Server) connect(ctx context.Context) error {
	if s.cfg.DB.Enabled() {
		pool, err := db.Connect(ctx, s.cfg.DB)
		if err != nil {
			return err
		}
		s.pool = pool
		s.onClose(db.Shutdown(pool))

		if err := db.Migrate(ctx, db.SQL(pool), users.Migrations, users.MigrationsDir, s.cfg.DB.MigrationsTable, s.logger); err != nil {
			return err
		}
		if err := job.Migrate(ctx, pool, s.logger); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "database ready")
	}

	if s.cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, s.cfg.Redis)
		if err != nil {
			return err
		}
		s.redis = client
		s.onClose(redis.Shutdown(client))
		s.logger.InfoContext(ctx, "redis ready")
	}
	return nil
}

func (s *Server) userStore() users.Store {
	if s.pool != nil {
		return users.NewPostgresStore(db.SQL(s.pool))
	}
	s.logger.Warn("DATABASE_URL is not set, users are kept in memory")
	return users.NewMemoryStore()
}

// newCache returns a Redis cache under prefix when Redis is connected and
// a process-local one otherwise.
func newCache[V any](s *Server, prefix string) cache.Cache[V] {
	var c cache.Cache[V]
	if s.redis != nil {
		c = cache.NewRedis[V](s.redis, nil, cache.WithPrefix(prefix))
	} else {
		c = cache.NewMemory[V]()
	}
	s.onClose(func(context.Context) error { return c.Close() })
	return c
}

func (s *Server) mailSender() (mailer.Sender, error) {
	if !s.cfg.Resend.Enabled() {
		s.logger.Warn("RESEND_API_KEY is not set, outgoing mail is logged only")
		return mailer.NewLogSender(s.logger), nil
	}
	sender, err := resend.New(s.cfg.Resend)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

// jobRunner registers the tasks on River when Postgres is available and on
// the in-process runner otherwise.
func (s *Server) jobRunner(m *mailer.Mailer, sweeper tasks.Sweeper) (internal.JobRunner, error) {
	opts := []job.Option{
		job.WithLogger(s.logger),
		job.WithTask[tasks.WelcomeEmailPayload](tasks.NewWelcomeEmail(m, s.logger)),
		job.WithScheduledTask(tasks.NewSessionSweep(sweeper, s.logger)),
	}
	if s.pool != nil {
		manager, err := job.NewManager(s.pool, opts...)
		if err != nil {
			return nil, err
		}
		return manager, nil
	}
	inline, err := job.NewInline(opts...)
	if err != nil {
		return nil, err
	}
	return inline, nil
}

func (s *Server) httpMiddlewares() []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{}
	if s.cfg.TrustProxy {
		mws = append(mws, middleware.RealIP)
	}
	return append(mws, middleware.Compress(5))
}

func (s *Server) readinessChecks(runner internal.JobRunner) []internal.HealthOption {
	var checks []internal.HealthOption
	if s.pool != nil {
		checks = append(checks, internal.WithReadinessCheck("db", db.Healthcheck(s.pool)))
	}
	if s.redis != nil {
		checks = append(checks, internal.WithReadinessCheck("redis", redis.Healthcheck(s.redis)))
	}
	if m, ok := runner.(*job.Manager); ok {
		checks = append(checks, internal.WithReadinessCheck("jobs", job.Healthcheck(m)))
	}
	return checks
}
