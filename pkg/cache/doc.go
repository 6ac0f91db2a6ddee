// Package cache provides a generic Cache interface with in-memory, Redis,
// Memcache and filesystem implementations.
//
// All backends share the [Cache] interface:
//
//   - Get(ctx, key) (V, error) returns ErrNotFound on a miss
//   - Set(ctx, key, value, ttl) error
//   - Delete(ctx, key) error
//   - Has(ctx, key) (bool, error)
//   - Clear(ctx) error
//   - Close() error
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the backend's default TTL (1 hour unless configured)
//   - Negative: item never expires
//
// Backends that keep expired entries until swept ([Memory], [File])
// also implement [Purger].
//
// # Selecting a backend
//
// [Open] picks the backend from a DSN string and falls back to the
// filesystem when an external server is unreachable:
//
//	c, dsn, err := cache.Open[httpcache.Entry](ctx, "redis=localhost:6379:0",
//	    cache.WithNamespace("stick"),
//	    cache.WithLogger(log),
//	)
//
// Recognized engines are apc, apcu and memory (in-process), redis,
// memcache and memcached, and folder (or an empty DSN, or "fallback")
// for the filesystem.
//
// # Direct construction
//
//	mem := cache.NewMemory[string](cache.WithMaxEntries(10000))
//	rds := cache.NewRedis[string](client, nil, cache.WithPrefix("app"))
//	mc := cache.NewMemcache[string](memcache.New("localhost:11211"), nil)
//	fs, err := cache.NewFile[string]("/var/cache/app", nil)
package cache
