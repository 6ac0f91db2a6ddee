package internal_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/internal"
	"github.com/eghojansu/stick/pkg/cache"
	"github.com/eghojansu/stick/pkg/httpcache"
)

type manualClock struct {
	now time.Time
	mu  sync.Mutex
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func cachedApp(t *testing.T, clk *manualClock, calls *atomic.Int32) *internal.App {
	t.Helper()

	backend := cache.NewMemory[httpcache.Entry](cache.WithClock(clk.Now))
	app := internal.New(
		internal.WithClock(clk.Now),
		internal.WithCacheBackend(backend),
	)
	app.Route("GET /news 60", func(c internal.Context) (internal.Result, error) {
		calls.Add(1)
		c.SetHeader("X-Edition", "morning")
		return internal.Text("headlines"), nil
	})
	app.Route("POST /news", text("posted"))
	app.Route("GET /empty 60", func(internal.Context) (internal.Result, error) {
		calls.Add(1)
		return nil, nil
	})
	return app
}

// --- Page cache ---

func TestPageCache(t *testing.T) {
	t.Parallel()

	t.Run("second request is replayed", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		first := mock(t, app, "GET /news")
		require.Equal(t, "headlines", first.String())
		require.Empty(t, first.Header().Get("X-Cache"))
		require.Equal(t, "max-age=60", first.Header().Get("Cache-Control"))

		clk.Advance(20 * time.Second)

		second := mock(t, app, "GET /news")
		require.Equal(t, int32(1), calls.Load())
		require.Equal(t, http.StatusOK, second.Status())
		require.Equal(t, "headlines", second.String())
		require.Equal(t, "HIT", second.Header().Get("X-Cache"))
		require.Equal(t, "morning", second.Header().Get("X-Edition"))
		require.Equal(t, "max-age=40", second.Header().Get("Cache-Control"))
	})

	t.Run("expired entry runs the controller again", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		mock(t, app, "GET /news")
		clk.Advance(61 * time.Second)

		res := mock(t, app, "GET /news")
		require.Equal(t, int32(2), calls.Load())
		require.Empty(t, res.Header().Get("X-Cache"))
	})

	t.Run("client copy inside the window is not modified", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		first := mock(t, app, "GET /news")
		stamp := first.Header().Get("Last-Modified")
		require.NotEmpty(t, stamp)

		clk.Advance(30 * time.Second)

		res := mock(t, app, "GET /news", internal.WithMockHeader("If-Modified-Since", stamp))
		require.Equal(t, http.StatusNotModified, res.Status())
		require.Empty(t, res.Body())
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("stale client copy gets the stored response", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		old := clk.Now().Add(-2 * time.Minute).Format(http.TimeFormat)
		mock(t, app, "GET /news")

		res := mock(t, app, "GET /news", internal.WithMockHeader("If-Modified-Since", old))
		require.Equal(t, http.StatusOK, res.Status())
		require.Equal(t, "HIT", res.Header().Get("X-Cache"))
	})

	t.Run("uncacheable route is marked no-store", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		res := mock(t, app, "POST /news")
		require.Equal(t, "no-cache, no-store, must-revalidate", res.Header().Get("Cache-Control"))
		require.Equal(t, "no-cache", res.Header().Get("Pragma"))
	})

	t.Run("empty response is not stored", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		mock(t, app, "GET /empty")
		mock(t, app, "GET /empty")
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("query string is part of the key", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		mock(t, app, "GET /news?page=1")
		mock(t, app, "GET /news?page=2")
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("clear drops stored entries", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		mock(t, app, "GET /news")
		require.NoError(t, app.ClearCache(context.Background()))
		mock(t, app, "GET /news")
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("purge drops expired entries", func(t *testing.T) {
		t.Parallel()

		clk := newManualClock()
		var calls atomic.Int32
		app := cachedApp(t, clk, &calls)

		mock(t, app, "GET /news")
		clk.Advance(2 * time.Minute)

		n, err := app.PurgeCache(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("cache setting selects the memory backend", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		app := internal.New(internal.WithCache("true"))
		app.Route("GET / 60", func(internal.Context) (internal.Result, error) {
			calls.Add(1)
			return internal.Text("home"), nil
		})

		mock(t, app, "GET /")
		res := mock(t, app, "GET /")
		require.Equal(t, "HIT", res.Header().Get("X-Cache"))
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("disabled cache still sends freshness headers", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		app := internal.New()
		app.Route("GET / 60", func(internal.Context) (internal.Result, error) {
			calls.Add(1)
			return internal.Text("home"), nil
		})

		mock(t, app, "GET /")
		res := mock(t, app, "GET /")
		require.Equal(t, "max-age=60", res.Header().Get("Cache-Control"))
		require.Equal(t, int32(2), calls.Load())

		_, err := app.PurgeCache(context.Background())
		require.ErrorIs(t, err, internal.ErrCacheDisabled)
		require.ErrorIs(t, app.ClearCache(context.Background()), internal.ErrCacheDisabled)
	})
}
