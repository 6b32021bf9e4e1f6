package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

var (
	ErrSetDialect      = errors.New("db: goose dialect")
	ErrApplyMigrations = errors.New("db: apply migrations")
)

// Migrate applies all pending goose migrations found in dir of fsys.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS, dir, table string, log *slog.Logger) error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log})
	if table != "" {
		goose.SetTableName(table)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "migrate"))
}

// Fatalf only logs; goose returns the error to Migrate.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "migrate"))
}
