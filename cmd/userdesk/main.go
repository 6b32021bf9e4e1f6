// Command userdesk runs the user-management web application.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/userdesk"
	"github.com/dmitrymomot/userdesk/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("userdesk stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := userdesk.New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
