// Package ratelimit provides keyed token-bucket limiters.
//
// Each key (usually a client IP) gets its own golang.org/x/time/rate
// limiter. Idle keys are evicted by Sweep, which Run calls periodically.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Defaults used by New when no option overrides them.
const (
	DefaultRate  = rate.Limit(1) // one token per second
	DefaultBurst = 5
	DefaultIdle  = 5 * time.Minute
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter tracks one token bucket per key.
type Limiter struct {
	now     func() time.Time
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	mu      sync.Mutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithRate sets the refill rate in tokens per second.
func WithRate(r rate.Limit) Option {
	return func(l *Limiter) {
		if r > 0 {
			l.limit = r
		}
	}
}

// WithBurst sets the bucket size.
func WithBurst(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.burst = n
		}
	}
}

// WithIdle sets how long an unused key is kept.
func WithIdle(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idle = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a Limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		now:     time.Now,
		buckets: make(map[string]*bucket),
		limit:   DefaultRate,
		burst:   DefaultBurst,
		idle:    DefaultIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes a token for key and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()

	return b.lim.AllowN(now, 1)
}

// Sweep drops keys idle for longer than the configured idle time and
// returns how many were removed.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Run sweeps every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
