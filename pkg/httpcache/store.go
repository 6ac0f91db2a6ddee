package httpcache

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eghojansu/stick/pkg/cache"
)

// Headers that belong to a single client and are never replayed.
var privateHeaders = []string{
	"Set-Cookie",
	"X-Cache",
	"X-Request-Id",
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Credentials",
	"Access-Control-Expose-Headers",
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for Created and freshness.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps response entries in a cache backend.
type Store struct {
	backend cache.Cache[Entry]
	now     func() time.Time
}

// NewStore wraps backend.
func NewStore(backend cache.Cache[Entry], opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the live entry stored under key.
// A stale entry is deleted and reported as a miss.
func (s *Store) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	e, err := s.backend.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	if !e.Fresh(s.now()) {
		return Entry{}, false, s.backend.Delete(ctx, key)
	}
	return e, true, nil
}

// Save stores a response under key for ttl; a ttl of zero keeps it until
// it is deleted or the store is cleared.
func (s *Store) Save(ctx context.Context, key string, status int, header http.Header, body []byte, ttl time.Duration) (Entry, error) {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	for _, name := range privateHeaders {
		h.Del(name)
	}

	e := Entry{
		Created: s.now(),
		Header:  h,
		Body:    append([]byte(nil), body...),
		Status:  status,
		TTL:     max(ttl, 0),
	}

	backendTTL := ttl
	if ttl <= 0 {
		backendTTL = -1
	}
	return e, s.backend.Set(ctx, key, e, backendTTL)
}

// Delete drops the entry stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Clear drops every entry.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Purge drops expired entries from backends that keep them until swept.
// Backends that expire entries natively report zero.
func (s *Store) Purge(ctx context.Context) (int, error) {
	if p, ok := s.backend.(cache.Purger); ok {
		return p.Purge(ctx)
	}
	return 0, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
