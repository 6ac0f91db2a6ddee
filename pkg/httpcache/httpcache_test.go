package httpcache_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/pkg/cache"
	"github.com/eghojansu/stick/pkg/httpcache"
)

var epoch = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// --- Key ---

func TestKey(t *testing.T) {
	t.Parallel()

	a := httpcache.Key("GET", "/posts?page=1")
	require.Equal(t, a, httpcache.Key("GET", "/posts?page=1"))
	require.NotEqual(t, a, httpcache.Key("HEAD", "/posts?page=1"))
	require.NotEqual(t, a, httpcache.Key("GET", "/posts?page=2"))
	require.Regexp(t, `^[0-9a-z]+\.url$`, a)
}

// --- Entry ---

func TestEntry(t *testing.T) {
	t.Parallel()

	e := httpcache.Entry{Created: epoch, TTL: 5 * time.Second}

	require.True(t, e.Fresh(epoch.Add(4*time.Second)))
	require.False(t, e.Fresh(epoch.Add(5*time.Second)))
	require.Equal(t, 3*time.Second, e.Remaining(epoch.Add(2*time.Second)))
	require.Zero(t, e.Remaining(epoch.Add(time.Minute)))
	require.Equal(t, epoch.Add(5*time.Second), e.Expires())

	forever := httpcache.Entry{Created: epoch}
	require.True(t, forever.Fresh(epoch.Add(1000*time.Hour)))
	require.True(t, forever.Expires().IsZero())
	require.Equal(t, httpcache.Forever, forever.Remaining(epoch))
}

// --- NotModified ---

func TestNotModified(t *testing.T) {
	t.Parallel()

	stamp := epoch.Format(http.TimeFormat)

	require.True(t, httpcache.NotModified(stamp, 10*time.Second, epoch.Add(9*time.Second)))
	require.False(t, httpcache.NotModified(stamp, 10*time.Second, epoch.Add(10*time.Second)))
	require.False(t, httpcache.NotModified("", 10*time.Second, epoch))
	require.False(t, httpcache.NotModified("yesterday", 10*time.Second, epoch))
}

// --- Headers ---

func TestHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	httpcache.NoCacheHeaders(h)
	require.Equal(t, "no-cache, no-store, must-revalidate", h.Get("Cache-Control"))
	require.Equal(t, "no-cache", h.Get("Pragma"))

	httpcache.CacheHeaders(h, 90*time.Second, epoch, epoch.Add(time.Minute))
	require.Equal(t, "max-age=90", h.Get("Cache-Control"))
	require.Empty(t, h.Get("Pragma"))
	require.Equal(t, epoch.Format(http.TimeFormat), h.Get("Last-Modified"))
	require.Equal(t, epoch.Add(150*time.Second).Format(http.TimeFormat), h.Get("Expires"))
}

// --- Store ---

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newStore := func(now *time.Time) (*httpcache.Store, *cache.Memory[httpcache.Entry]) {
		clock := func() time.Time { return *now }
		backend := cache.NewMemory[httpcache.Entry](cache.WithClock(clock), cache.WithCleanupInterval(0))
		t.Cleanup(func() { _ = backend.Close() })
		return httpcache.NewStore(backend, httpcache.WithClock(clock)), backend
	}

	t.Run("round trip strips private headers", func(t *testing.T) {
		t.Parallel()

		now := epoch
		store, _ := newStore(&now)

		header := http.Header{
			"Content-Type": {"text/plain"},
			"Set-Cookie":   {"sid=1"},
		}
		_, err := store.Save(ctx, "k", http.StatusOK, header, []byte("hello"), 5*time.Second)
		require.NoError(t, err)
		require.Equal(t, "sid=1", header.Get("Set-Cookie"), "caller header untouched")

		e, ok, err := store.Lookup(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, http.StatusOK, e.Status)
		require.Equal(t, []byte("hello"), e.Body)
		require.Equal(t, "text/plain", e.Header.Get("Content-Type"))
		require.Empty(t, e.Header.Get("Set-Cookie"))
		require.Equal(t, epoch, e.Created)
	})

	t.Run("stale entry is a miss and is dropped", func(t *testing.T) {
		t.Parallel()

		now := epoch
		store, backend := newStore(&now)

		// backend TTL is longer than the entry's own window
		require.NoError(t, backend.Set(ctx, "k", httpcache.Entry{Created: epoch, TTL: time.Second}, time.Hour))
		now = epoch.Add(2 * time.Second)

		_, ok, err := store.Lookup(ctx, "k")
		require.NoError(t, err)
		require.False(t, ok)
		require.Zero(t, backend.Len())
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		t.Parallel()

		now := epoch
		store, _ := newStore(&now)

		_, err := store.Save(ctx, "k", http.StatusOK, nil, []byte("x"), 0)
		require.NoError(t, err)
		now = epoch.Add(24 * 365 * time.Hour)

		_, ok, err := store.Lookup(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("purge and clear", func(t *testing.T) {
		t.Parallel()

		now := epoch
		store, backend := newStore(&now)

		_, err := store.Save(ctx, "old", http.StatusOK, nil, []byte("x"), time.Second)
		require.NoError(t, err)
		_, err = store.Save(ctx, "new", http.StatusOK, nil, []byte("x"), time.Hour)
		require.NoError(t, err)
		now = epoch.Add(time.Minute)

		n, err := store.Purge(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		require.NoError(t, store.Clear(ctx))
		require.Zero(t, backend.Len())
	})
}
