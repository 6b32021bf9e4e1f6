// Package db connects to PostgreSQL through pgxpool and runs goose migrations.
//
// Settings come from the environment (see [Config]):
//
//	DATABASE_URL                - connection URL; empty disables the database
//	DATABASE_MAX_OPEN_CONNS     - pool size (default 10)
//	DATABASE_RETRY_ATTEMPTS     - startup attempts (default 3)
//
// Typical startup:
//
//	pool, err := db.Connect(ctx, cfg.DB)
//	sqlDB := db.SQL(pool)
//	err = db.Migrate(ctx, sqlDB, migrations, "migrations", cfg.DB.MigrationsTable, log)
//
// Errors wrap the sentinels below with [errors.Join].
package db
