package userdesk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/userdesk/internal/config"
	"github.com/dmitrymomot/userdesk/internal/users"
)

// seedAdmin creates the configured admin when no user exists yet.
func seedAdmin(ctx context.Context, repo *users.Repository, seed config.SeedAdmin, log *slog.Logger) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return errors.Join(ErrSeedAdmin, err)
	}
	if n > 0 {
		return nil
	}

	res, err := repo.Create(ctx, users.Input{
		"username": seed.Username,
		"password": seed.Password,
		"email":    seed.Email,
		"name":     seed.Name,
		"role":     string(users.RoleAdmin),
	})
	if err != nil {
		return errors.Join(ErrSeedAdmin, err)
	}
	if !res.OK() {
		return errors.Join(ErrSeedAdmin, fmt.Errorf("invalid seed values: %v", map[string]string(res.Errors)))
	}

	log.InfoContext(ctx, "admin user seeded",
		slog.String("user_id", res.Data),
		slog.String("username", seed.Username),
	)
	return nil
}
