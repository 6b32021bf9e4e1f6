package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/pkg/cache"
	"github.com/dmitrymomot/userdesk/pkg/session"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T, opts ...session.CacheStoreOption) (*session.CacheStore, *clock) {
	t.Helper()

	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	mem := cache.NewMemory[session.Session](cache.WithCleanupInterval(0), cache.WithClock(clk.Now))
	t.Cleanup(func() { _ = mem.Close() })

	opts = append([]session.CacheStoreOption{session.WithClock(clk.Now)}, opts...)
	return session.NewCacheStore(mem, opts...), clk
}

func TestCacheStoreLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newStore(t)

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	require.Len(t, sess.ID, 16)
	assert.False(t, sess.CreatedAt.IsZero())

	sess.Put("user", "u1")
	require.NoError(t, store.Set(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.ValueOr(got, "user", ""))
	assert.Equal(t, sess.CreatedAt, got.CreatedAt)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{sess.ID}, ids)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	require.ErrorIs(t, err, session.ErrNotFound)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCacheStoreInvalidInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newStore(t)

	_, err := store.Get(ctx, "")
	require.ErrorIs(t, err, session.ErrInvalidID)
	require.ErrorIs(t, store.Set(ctx, &session.Session{}), session.ErrInvalidID)
	require.NoError(t, store.Delete(ctx, ""))
}

func TestCacheStoreIdleTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, clk := newStore(t, session.WithIdleTimeout(time.Minute))

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	clk.Advance(50 * time.Second)
	require.NoError(t, store.Set(ctx, sess))

	clk.Advance(50 * time.Second)
	_, err = store.Get(ctx, sess.ID)
	require.NoError(t, err, "writes refresh the idle timeout")

	clk.Advance(2 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestCacheStoreLifetimeAndSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, clk := newStore(t,
		session.WithIdleTimeout(time.Hour),
		session.WithLifetime(90*time.Minute),
	)

	old, err := store.Create(ctx)
	require.NoError(t, err)

	clk.Advance(50 * time.Minute)
	require.NoError(t, store.Set(ctx, old))
	fresh, err := store.Create(ctx)
	require.NoError(t, err)

	clk.Advance(50 * time.Minute)
	require.NoError(t, store.Set(ctx, old))

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, old.ID)
	require.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.Get(ctx, fresh.ID)
	require.NoError(t, err)
}

func TestValue(t *testing.T) {
	t.Parallel()

	s := &session.Session{}
	_, err := session.Value[string](s, "missing")
	require.ErrorIs(t, err, session.ErrNotFound)

	s.Put("n", 3)
	_, err = session.Value[string](s, "n")
	require.ErrorIs(t, err, session.ErrTypeMismatch)
	assert.Equal(t, 3, session.ValueOr(s, "n", 0))

	s.Remove("n")
	assert.Equal(t, 7, session.ValueOr(s, "n", 7))
}

func TestCacheStoreConcurrentRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newStore(t)

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	a, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	b, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)

	a.Put("user", "u1")
	_, ok := b.Get("user")
	assert.False(t, ok, "unsaved writes stay private to their request")

	var (
		wg    sync.WaitGroup
		ready = make(chan struct{})
	)
	for w := range 8 {
		wg.Go(func() {
			s, err := store.Get(ctx, sess.ID)
			if !assert.NoError(t, err) {
				return
			}
			<-ready
			for i := range 200 {
				s.Put(fmt.Sprintf("w%d-%d", w, i), i)
			}
			assert.NoError(t, store.Set(ctx, s))
		})
	}
	close(ready)
	wg.Wait()

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Values, 200, "the last Set wins as a whole")
}
