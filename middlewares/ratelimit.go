package middlewares

import (
	"net"
	"strconv"
	"time"

	"github.com/dmitrymomot/userdesk/internal"
)

// Limiter decides whether a key may proceed. *ratelimit.Limiter implements it.
type Limiter interface {
	Allow(key string) bool
}

// RateLimitOption configures the RateLimit middleware.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	key        func(c internal.Context) string
	retryAfter time.Duration
}

// WithRateLimitKey sets the function that derives the bucket key.
// Defaults to the client IP.
func WithRateLimitKey(fn func(c internal.Context) string) RateLimitOption {
	return func(cfg *rateLimitConfig) {
		if fn != nil {
			cfg.key = fn
		}
	}
}

// WithRetryAfter sets the Retry-After hint sent with 429 responses.
func WithRetryAfter(d time.Duration) RateLimitOption {
	return func(cfg *rateLimitConfig) {
		if d > 0 {
			cfg.retryAfter = d
		}
	}
}

// RateLimit answers 429 when l refuses the request's key.
func RateLimit(l Limiter, opts ...RateLimitOption) internal.Middleware {
	cfg := &rateLimitConfig{
		key:        ClientIP,
		retryAfter: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	retryAfter := strconv.Itoa(int(cfg.retryAfter / time.Second))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			key := cfg.key(c)
			if l.Allow(key) {
				return next(c)
			}
			c.LogWarn("rate limit exceeded", "key", key, "route", c.Route())
			c.SetHeader("Retry-After", retryAfter)
			return internal.ErrTooManyRequests("Too many attempts, please try again later")
		}
	}
}

// ClientIP returns the host part of RemoteAddr. Behind a proxy, chi's
// RealIP middleware has already rewritten it.
func ClientIP(c internal.Context) string {
	addr := c.Request().RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
