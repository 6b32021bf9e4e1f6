package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/pkg/cache"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)} }

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

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := cache.NewMemory[int](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "a", 2, time.Minute))

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := newClock()

	c := cache.NewMemory[string](
		cache.WithCleanupInterval(0),
		cache.WithDefaultTTL(10*time.Second),
		cache.WithClock(clk.Now),
	)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "default", "v", 0))
	require.NoError(t, c.Set(ctx, "short", "v", time.Second))
	require.NoError(t, c.Set(ctx, "forever", "v", -1))

	clk.Advance(2 * time.Second)

	has, err := c.Has(ctx, "short")
	require.NoError(t, err)
	assert.False(t, has)

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "forever"}, keys)

	clk.Advance(time.Hour)
	assert.Equal(t, 1, c.DeleteExpired())

	_, err = c.Get(ctx, "forever")
	require.NoError(t, err)
}

func TestMemoryLRU(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := cache.NewMemory[string](cache.WithMaxEntries(2), cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", "3", 0))

	has, _ := c.Has(ctx, "b")
	assert.False(t, has, "least recently used entry is evicted")
	has, _ = c.Has(ctx, "a")
	assert.True(t, has)
}

func TestMemoryDeleteClearClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := cache.NewMemory[string]()
	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "1", 0))

	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Set(ctx, "x", "y", 0), cache.ErrClosed)
	_, err := c.Keys(ctx)
	require.ErrorIs(t, err, cache.ErrClosed)
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })

	var calls atomic.Int32
	load := func(context.Context) (string, time.Duration, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "loaded", time.Minute, nil
	}

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			v, err := cache.GetOrSet(ctx, c, "getorset-key", load)
			assert.NoError(t, err)
			assert.Equal(t, "loaded", v)
		})
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())

	boom := errors.New("boom")
	_, err := cache.GetOrSet(ctx, c, "getorset-fail", func(context.Context) (string, time.Duration, error) {
		return "", 0, boom
	})
	require.ErrorIs(t, err, boom)
	has, _ := c.Has(ctx, "getorset-fail")
	assert.False(t, has)
}
