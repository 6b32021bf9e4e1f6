package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption configures a Redis cache.
type RedisOption func(*redisSettings)

type redisSettings struct {
	ns        string // "prefix:" or empty
	ttl       time.Duration
	scanBatch int64
}

// WithPrefix namespaces keys as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(s *redisSettings) {
		s.ns = ""
		if prefix != "" {
			s.ns = prefix + ":"
		}
	}
}

// WithRedisDefaultTTL sets the TTL used when Set gets zero. Default 1h.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(s *redisSettings) { s.ttl = d }
}

// Redis stores values in Redis, encoded with a Marshaler (JSON by default).
// The client lifecycle belongs to the caller.
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Marshaler[V]
	redisSettings
}

// NewRedis creates a Redis-backed cache. A nil Marshaler selects JSON.
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	r := &Redis[V]{
		client:        client,
		codec:         m,
		redisSettings: redisSettings{ttl: time.Hour, scanBatch: 100},
	}
	for _, opt := range opts {
		opt(&r.redisSettings)
	}
	return r
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.codec.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.ttl
	}
	// Redis treats 0 as "no expiry", which is our negative TTL.
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Keys scans the keyspace for this cache's prefix and returns unprefixed keys.
func (r *Redis[V]) Keys(ctx context.Context) ([]string, error) {
	var out []string
	err := r.scan(ctx, func(batch []string) error {
		for _, k := range batch {
			out = append(out, r.unkey(k))
		}
		return nil
	})
	return out, err
}

// Clear removes this cache's keys with SCAN+DEL, or FLUSHDB when no prefix is set.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.ns == "" {
		return r.client.FlushDB(ctx).Err()
	}
	return r.scan(ctx, func(batch []string) error {
		return r.client.Del(ctx, batch...).Err()
	})
}

// Close is a no-op; the client is closed via pkg/redis.Shutdown.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(k string) string   { return r.ns + k }
func (r *Redis[V]) unkey(k string) string { return strings.TrimPrefix(k, r.ns) }

func (r *Redis[V]) scan(ctx context.Context, fn func([]string) error) error {
	pattern := r.ns + "*"
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, r.scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

var _ Cache[any] = (*Redis[any])(nil)
