// Package session keeps server-side session state keyed by an opaque id.
//
// A [Store] creates, reads, writes, deletes and lists sessions. [CacheStore]
// implements it on top of pkg/cache, so the same code runs in memory during
// development and against Redis in production.
package session

import (
	"fmt"
	"maps"
	"time"
)

// Session is the server-side record behind a session cookie.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Values    map[string]any `json:"values,omitempty"`
	ID        string         `json:"id"`
}

// clone returns a copy whose Values map is not shared with s.
func (s Session) clone() Session {
	s.Values = maps.Clone(s.Values)
	return s
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Values == nil {
		return nil, false
	}
	v, ok := s.Values[key]
	return v, ok
}

// Put stores a value under key.
func (s *Session) Put(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
}

// Remove deletes key from the session values.
func (s *Session) Remove(key string) {
	delete(s.Values, key)
}

// Value returns the typed value stored under key.
// Values read back from a serializing store come out as JSON types
// (string, float64, bool, map[string]any, []any).
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	raw, ok := s.Get(key)
	if !ok {
		return zero, ErrNotFound
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrTypeMismatch, key)
	}
	return v, nil
}

// ValueOr is Value with a fallback for missing or mistyped keys.
func ValueOr[T any](s *Session, key string, fallback T) T {
	v, err := Value[T](s, key)
	if err != nil {
		return fallback
	}
	return v
}
