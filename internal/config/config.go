// Package config loads userdesk settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/userdesk/pkg/db"
	"github.com/dmitrymomot/userdesk/pkg/logger"
	"github.com/dmitrymomot/userdesk/pkg/mailer"
	"github.com/dmitrymomot/userdesk/pkg/mailer/resend"
	"github.com/dmitrymomot/userdesk/pkg/redis"
)

// DevSecret signs cookies and tokens when APP_SECRET is unset. Production
// refuses to start with it.
const DevSecret = "userdesk-development-secret-change-me"

// ErrInsecureSecret is returned by Validate in production when APP_SECRET
// is unset or too short.
var ErrInsecureSecret = errors.New("config: APP_SECRET must be set to at least 32 bytes in production")

// Config is the full application configuration.
type Config struct {
	Logger logger.Config
	Seed   SeedAdmin
	Mailer mailer.Config
	Resend resend.Config
	DB     db.Config
	Redis  redis.Config

	Addr      string `env:"APP_ADDR" envDefault:":3000"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	Secret    string `env:"APP_SECRET" envDefault:"userdesk-development-secret-change-me"`
	Namespace string `env:"METRICS_NAMESPACE" envDefault:"userdesk"`

	TokenTTL           time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"168h"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"24h"`
	SessionLifetime    time.Duration `env:"SESSION_LIFETIME" envDefault:"168h"`
	IdentityTTL        time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"5m"`

	BodyLimit  int64   `env:"BODY_LIMIT" envDefault:"1048576"`
	LoginRate  float64 `env:"LOGIN_RATE" envDefault:"0.2"`
	LoginBurst int     `env:"LOGIN_BURST" envDefault:"5"`
	BcryptCost int     `env:"BCRYPT_COST" envDefault:"10"`

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool `env:"TRUST_PROXY"`
}

// SeedAdmin is the account created when the users table is empty.
type SeedAdmin struct {
	Username string `env:"SEED_ADMIN_USERNAME" envDefault:"james"`
	Password string `env:"SEED_ADMIN_PASSWORD" envDefault:"password"`
	Email    string `env:"SEED_ADMIN_EMAIL" envDefault:"james@example.com"`
	Name     string `env:"SEED_ADMIN_NAME" envDefault:"James"`
	Disabled bool   `env:"SEED_ADMIN_DISABLED"`
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and parses Config. Missing files are not an error.
// Variables already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(errors.New("config: load .env"), err)
	}
	return Parse()
}

// Parse reads Config from the current environment only.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(errors.New("config: parse environment"), err)
	}
	return cfg, nil
}

// Dev reports whether the app runs outside production.
func (c Config) Dev() bool {
	return c.Env != "production"
}

// Validate rejects settings that are unsafe in production.
func (c Config) Validate() error {
	if !c.Dev() && (c.Secret == DevSecret || len(c.Secret) < 32) {
		return ErrInsecureSecret
	}
	return nil
}
