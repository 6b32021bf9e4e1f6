package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memorySettings)

type memorySettings struct {
	clock    func() time.Time
	ttl      time.Duration
	interval time.Duration
	capacity int
}

// WithDefaultTTL sets the TTL used when Set gets zero. Default 1h.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(s *memorySettings) { s.ttl = d }
}

// WithCleanupInterval sets how often expired entries are dropped in the
// background. Zero disables it. Default 1m.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(s *memorySettings) { s.interval = d }
}

// WithMaxEntries bounds the cache; the least recently used entry goes
// first. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(s *memorySettings) { s.capacity = n }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *memorySettings) {
		if now != nil {
			s.clock = now
		}
	}
}

type entry[V any] struct {
	expiresAt time.Time // zero = never
	value     V
	key       string
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process cache with TTL expiry and optional LRU bound.
// The front of the list holds the most recently used entry.
type Memory[V any] struct {
	items  map[string]*list.Element
	lru    *list.List
	done   chan struct{}
	mu     sync.Mutex
	closed bool
	memorySettings
}

// NewMemory creates an in-memory cache and starts its janitor.
// Call Close to stop it.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		done:  make(chan struct{}),
		memorySettings: memorySettings{
			clock:    time.Now,
			ttl:      time.Hour,
			interval: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(&m.memorySettings)
	}
	if m.interval > 0 {
		go m.janitor()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	elem, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := elem.Value.(*entry[V])
	if e.expired(m.clock()) {
		m.remove(elem)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(elem)
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.ttl
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.clock().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	if m.capacity > 0 && len(m.items) >= m.capacity {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.items[key] = m.lru.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return false, nil
	}
	if elem.Value.(*entry[V]).expired(m.clock()) {
		m.remove(elem)
		return false, nil
	}
	return true, nil
}

// Keys returns the keys of all unexpired entries, most recently used first.
func (m *Memory[V]) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	now := m.clock()
	keys := make([]string, 0, len(m.items))
	for elem := m.lru.Front(); elem != nil; elem = elem.Next() {
		if e := elem.Value.(*entry[V]); !e.expired(now) {
			keys = append(keys, e.key)
		}
	}
	return keys, nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]*list.Element)
	m.lru.Init()
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// DeleteExpired drops every expired entry and reports how many were removed.
func (m *Memory[V]) DeleteExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	removed := 0
	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).expired(now) {
			m.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.DeleteExpired()
		}
	}
}

// remove unlinks elem. Caller holds the mutex.
func (m *Memory[V]) remove(elem *list.Element) {
	m.lru.Remove(elem)
	delete(m.items, elem.Value.(*entry[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
