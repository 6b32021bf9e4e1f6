package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/userdesk/pkg/logger"
)

// ErrStartupHook wraps the error of a failing startup hook.
var ErrStartupHook = errors.New("server: startup hook failed")

// runtimeConfig holds configuration for running the HTTP server.
type runtimeConfig struct {
	handler         http.Handler
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

func (cfg *runtimeConfig) defaults() {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	if cfg.shutdownTimeout <= 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}
	if cfg.baseCtx == nil {
		cfg.baseCtx = context.Background()
	}
}

// runServer runs the startup hooks, serves until the context is done or a
// termination signal arrives, then drains the server and runs the
// shutdown hooks in order. Shutdown hooks also run when serving fails.
func runServer(cfg runtimeConfig) error {
	cfg.defaults()
	log := cfg.logger

	ctx, cancel := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return errors.Join(ErrStartupHook, err)
		}
	}

	ln, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return errors.Join(err, cfg.drain(nil))
	}

	srv := &http.Server{
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return errors.Join(err, cfg.drain(nil))
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	return cfg.drain(srv)
}

// drain stops srv, when given, and runs the shutdown hooks under one
// shutdown deadline.
func (cfg *runtimeConfig) drain(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			cfg.logger.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		cfg.logger.Error("shutdown completed with errors")
		return err
	}
	cfg.logger.Info("shutdown completed")
	return nil
}
