package redis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyConnectionURL = errors.New("redis: REDIS_URL is empty")
	ErrFailedToParseURL   = errors.New("redis: invalid connection URL")
	ErrConnectionFailed   = errors.New("redis: could not connect")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)

// Config holds Redis client settings, read from the environment.
// An empty URL disables Redis.
type Config struct {
	URL           string        `env:"REDIS_URL"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxIdleTime   time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	IOTimeout     time.Duration `env:"REDIS_IO_TIMEOUT" envDefault:"3s"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
}

// Enabled reports whether a Redis URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// Option adjusts a Config before connecting.
type Option func(*Config)

// WithRetry overrides the startup retry policy.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *Config) {
		c.RetryAttempts = attempts
		c.RetryInterval = interval
	}
}

// WithPoolSize overrides the connection pool size.
func WithPoolSize(n int) Option {
	return func(c *Config) {
		c.PoolSize = n
	}
}

// Open connects to the redis:// or rediss:// url with default settings.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	cfg := Config{
		URL:           url,
		PoolSize:      10,
		MinIdleConns:  2,
		MaxIdleTime:   10 * time.Minute,
		DialTimeout:   5 * time.Second,
		IOTimeout:     3 * time.Second,
		RetryAttempts: 3,
		RetryInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return Connect(ctx, cfg)
}

// Connect builds a client from cfg and pings it, retrying with linear backoff.
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	o, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	o.PoolSize = cfg.PoolSize
	o.MinIdleConns = cfg.MinIdleConns
	o.ConnMaxIdleTime = cfg.MaxIdleTime
	o.DialTimeout = cfg.DialTimeout
	o.ReadTimeout = cfg.IOTimeout
	o.WriteTimeout = cfg.IOTimeout

	var lastErr error
	for i := range max(cfg.RetryAttempts, 1) {
		client := redis.NewClient(o)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Healthcheck returns a readiness probe that pings the client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes the client.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
