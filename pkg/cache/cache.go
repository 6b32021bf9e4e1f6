package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned by Get for missing or expired keys.
	ErrNotFound = errors.New("cache: key not found")
	// ErrClosed is returned by a Memory cache after Close.
	ErrClosed    = errors.New("cache: use of closed cache")
	ErrMarshal   = errors.New("cache: encode value")
	ErrUnmarshal = errors.New("cache: decode value")
)

// Cache is a generic key-value cache with TTL support.
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Has(ctx context.Context, key string) (bool, error)

	// Keys returns the live keys in no particular order.
	Keys(ctx context.Context) ([]string, error)

	Clear(ctx context.Context) error

	Close() error
}

// Marshaler converts values to and from bytes for backends that need it.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var flights singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or loads it with fn on a miss.
// Concurrent misses for the same key share a single fn call. Errors from fn
// are returned as-is and nothing is cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := flights.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, val, ttl)
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return res.(loaded[V]).val, nil
}
