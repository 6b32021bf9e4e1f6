package db

import "time"

// Config holds PostgreSQL pool settings, read from the environment.
// An empty ConnectionString means "no database"; callers fall back to
// in-memory storage.
type Config struct {
	ConnectionString string `env:"DATABASE_URL"`
	MigrationsTable  string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`

	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Startup retries: attempt n waits n*RetryInterval before the next one.
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s"`

	MaxOpenConns int32 `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MinConns     int32 `env:"DATABASE_MIN_CONNS" envDefault:"2"`
}

// Enabled reports whether a connection string is configured.
func (c Config) Enabled() bool {
	return c.ConnectionString != ""
}
