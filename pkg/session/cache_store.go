package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/userdesk/pkg/cache"
	"github.com/dmitrymomot/userdesk/pkg/id"
)

// Defaults for CacheStore.
const (
	DefaultIdleTimeout = 24 * time.Hour
	DefaultLifetime    = 30 * 24 * time.Hour
)

// CacheStore is a Store backed by a cache.Cache.
// Entries expire after IdleTimeout without writes; reads additionally
// reject sessions older than Lifetime. Sessions are copied in and out of
// the cache, so concurrent requests on one id never share a Values map and
// only see each other's changes after Set.
type CacheStore struct {
	cache       cache.Cache[Session]
	now         func() time.Time
	newID       func() string
	idleTimeout time.Duration
	lifetime    time.Duration
}

// CacheStoreOption configures a CacheStore.
type CacheStoreOption func(*CacheStore)

// WithIdleTimeout sets how long a session survives without writes.
func WithIdleTimeout(d time.Duration) CacheStoreOption {
	return func(s *CacheStore) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithLifetime sets the absolute session lifetime.
func WithLifetime(d time.Duration) CacheStoreOption {
	return func(s *CacheStore) {
		if d > 0 {
			s.lifetime = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheStoreOption {
	return func(s *CacheStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the session id generator.
func WithIDGenerator(fn func() string) CacheStoreOption {
	return func(s *CacheStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewCacheStore wraps c as a session store.
func NewCacheStore(c cache.Cache[Session], opts ...CacheStoreOption) *CacheStore {
	s := &CacheStore{
		cache:       c,
		now:         time.Now,
		newID:       id.New,
		idleTimeout: DefaultIdleTimeout,
		lifetime:    DefaultLifetime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CacheStore) Create(ctx context.Context) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
		Values:    map[string]any{},
	}
	if err := s.cache.Set(ctx, sess.ID, sess.clone(), s.idleTimeout); err != nil {
		return nil, errors.Join(errors.New("session: create"), err)
	}
	return sess, nil
}

func (s *CacheStore) Get(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return nil, ErrInvalidID
	}
	sess, err := s.cache.Get(ctx, sid)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.expired(sess) {
		_ = s.cache.Delete(ctx, sid)
		return nil, ErrExpired
	}
	sess = sess.clone()
	return &sess, nil
}

func (s *CacheStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidID
	}
	sess.UpdatedAt = s.now()
	return s.cache.Set(ctx, sess.ID, sess.clone(), s.idleTimeout)
}

func (s *CacheStore) Delete(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.cache.Delete(ctx, sid)
}

func (s *CacheStore) List(ctx context.Context) ([]string, error) {
	return s.cache.Keys(ctx)
}

// Sweep deletes sessions past their absolute lifetime and returns how many
// were removed. Idle expiry is handled by the cache itself.
func (s *CacheStore) Sweep(ctx context.Context) (int, error) {
	ids, err := s.cache.Keys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, sid := range ids {
		sess, err := s.cache.Get(ctx, sid)
		if errors.Is(err, cache.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if !s.expired(sess) {
			continue
		}
		if err := s.cache.Delete(ctx, sid); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *CacheStore) expired(sess Session) bool {
	return s.now().Sub(sess.CreatedAt) > s.lifetime
}

var _ Store = (*CacheStore)(nil)
