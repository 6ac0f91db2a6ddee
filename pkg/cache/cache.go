package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Cache is a generic key-value cache with TTL support.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: item never expires
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Has checks whether a key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

// Purger is implemented by backends that keep expired entries around
// until they are swept. Backends with native expiry do not implement it.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Marshaler serializes and deserializes cache values for storage backends
// that require byte representation (Redis, Memcache, files).
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

// JSON returns the default JSON marshaler.
func JSON[V any]() Marshaler[V] {
	return jsonMarshaler[V]{}
}

// resolveTTL applies the shared TTL rules and returns the absolute
// expiry, zero meaning never.
func resolveTTL(now time.Time, ttl, def time.Duration) time.Time {
	if ttl == 0 {
		ttl = def
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
