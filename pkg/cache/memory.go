package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// item is one cached value and its position in the recency list.
type item[V any] struct {
	expiresAt time.Time // zero = never expires
	value     V
	key       string
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

// Memory is an in-process cache with TTL expiry and optional LRU
// eviction once a maximum entry count is reached. The front of the
// recency list holds the most recently used entry.
type Memory[V any] struct {
	items   map[string]*list.Element
	recency *list.List
	opts    *memoryOptions
	onEvict func(key string, value V)
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates a new in-memory cache.
//
// Example:
//
//	c := cache.NewMemory[httpcache.Entry](
//	    cache.WithDefaultTTL(5 * time.Minute),
//	    cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		items:   make(map[string]*list.Element),
		recency: list.New(),
		opts:    o,
		done:    make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// SetEvictCallback sets a callback invoked whenever an entry leaves the
// cache: LRU eviction, expiry, deletion and clearing.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Get retrieves a value by key and marks it as recently used.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	elem, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}

	it := elem.Value.(*item[V])
	if it.expired(m.opts.now()) {
		m.remove(elem)
		return zero, ErrNotFound
	}

	m.recency.MoveToFront(elem)
	return it.value, nil
}

// Set stores a value with the given TTL.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	expiresAt := resolveTTL(m.opts.now(), ttl, m.opts.defaultTTL)

	if elem, ok := m.items[key]; ok {
		it := elem.Value.(*item[V])
		it.value = value
		it.expiresAt = expiresAt
		m.recency.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.recency.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.items[key] = m.recency.PushFront(&item[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Delete removes a key from the cache.
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

// Has checks whether a key exists and has not expired.
func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return false, nil
	}
	if elem.Value.(*item[V]).expired(m.opts.now()) {
		m.remove(elem)
		return false, nil
	}
	return true, nil
}

// Clear removes all entries from the cache.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.onEvict != nil {
		for _, elem := range m.items {
			it := elem.Value.(*item[V])
			m.onEvict(it.key, it.value)
		}
	}

	m.items = make(map[string]*list.Element)
	m.recency.Init()
	return nil
}

// Purge removes expired entries and returns how many were dropped.
func (m *Memory[V]) Purge(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	now := m.opts.now()
	n := 0
	for elem := m.recency.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*item[V]).expired(now) {
			m.remove(elem)
			n++
		}
		elem = prev
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor and marks the cache closed. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, _ = m.Purge(context.Background())
		}
	}
}

// remove unlinks elem. Caller must hold the mutex.
func (m *Memory[V]) remove(elem *list.Element) {
	m.recency.Remove(elem)
	it := elem.Value.(*item[V])
	delete(m.items, it.key)

	if m.onEvict != nil {
		m.onEvict(it.key, it.value)
	}
}

var (
	_ Cache[any] = (*Memory[any])(nil)
	_ Purger     = (*Memory[any])(nil)
)
