package cache

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcached treats relative expirations above thirty days as unix timestamps.
const memcacheRelativeLimit = 30 * 24 * time.Hour

// MemcacheOption configures the Memcache cache.
type MemcacheOption func(*memcacheOptions)

type memcacheOptions struct {
	now        func() time.Time
	prefix     string
	defaultTTL time.Duration
}

// WithMemcachePrefix namespaces keys as "{prefix}:{key}".
func WithMemcachePrefix(prefix string) MemcacheOption {
	return func(o *memcacheOptions) {
		o.prefix = prefix
	}
}

// WithMemcacheDefaultTTL sets the expiry used when Set is called with a zero TTL.
// Default: 1 hour.
func WithMemcacheDefaultTTL(d time.Duration) MemcacheOption {
	return func(o *memcacheOptions) {
		o.defaultTTL = d
	}
}

// Memcache is a cache backed by one or more memcached servers.
type Memcache[V any] struct {
	client    *memcache.Client
	marshaler Marshaler[V]
	opts      *memcacheOptions
}

// NewMemcache creates a Memcache-backed cache. A nil Marshaler selects JSON.
//
// Example:
//
//	client := memcache.New("10.0.0.1:11211", "10.0.0.2:11211")
//	c := cache.NewMemcache[httpcache.Entry](client, nil)
func NewMemcache[V any](client *memcache.Client, m Marshaler[V], opts ...MemcacheOption) *Memcache[V] {
	o := &memcacheOptions{now: time.Now, defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(o)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Memcache[V]{client: client, marshaler: m, opts: o}
}

// Get retrieves a value by key.
func (c *Memcache[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	it, err := c.client.Get(c.key(key))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return c.marshaler.Unmarshal(it.Value)
}

// Set stores a value with the given TTL.
func (c *Memcache[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	data, err := c.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(&memcache.Item{
		Key:        c.key(key),
		Value:      data,
		Expiration: c.expiration(ttl),
	})
}

// Delete removes a key.
func (c *Memcache[V]) Delete(_ context.Context, key string) error {
	if err := c.client.Delete(c.key(key)); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

// Has checks whether a key exists.
func (c *Memcache[V]) Has(ctx context.Context, key string) (bool, error) {
	_, err := c.client.Get(c.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	return err == nil, err
}

// Clear flushes every server. Memcached has no key enumeration, so the
// prefix cannot narrow the flush.
func (c *Memcache[V]) Clear(_ context.Context) error {
	return c.client.DeleteAll()
}

// Close is a no-op; the client holds no resources that need releasing.
func (c *Memcache[V]) Close() error {
	return nil
}

// expiration converts a TTL into memcached's expiration field.
func (c *Memcache[V]) expiration(ttl time.Duration) int32 {
	if ttl == 0 {
		ttl = c.opts.defaultTTL
	}
	if ttl <= 0 {
		return 0
	}
	if ttl > memcacheRelativeLimit {
		return int32(min(c.opts.now().Add(ttl).Unix(), math.MaxInt32))
	}
	secs := int32(math.Ceil(ttl.Seconds()))
	return max(secs, 1)
}

func (c *Memcache[V]) key(key string) string {
	if c.opts.prefix == "" {
		return key
	}
	return c.opts.prefix + ":" + key
}

var _ Cache[any] = (*Memcache[any])(nil)
