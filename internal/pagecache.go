package internal

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/spf13/cast"

	"github.com/eghojansu/stick/pkg/cache"
	"github.com/eghojansu/stick/pkg/httpcache"
)

// ErrCacheDisabled is returned by cache maintenance when CACHE is unset.
var ErrCacheDisabled = errors.New("stick: page cache disabled")

// pageStore opens the page cache on first use. It returns nil when the
// CACHE setting disables caching.
func (a *App) pageStore(ctx context.Context) *httpcache.Store {
	a.cache.once.Do(func() {
		backend := a.cache.backend
		if backend == nil {
			backend = a.openCache(ctx)
		}
		if backend != nil {
			a.cache.backend = backend
			a.cache.store = httpcache.NewStore(backend, httpcache.WithClock(a.clock))
		}
	})
	return a.cache.store
}

// openCache interprets CACHE: empty or false disables the cache, true
// selects the in-process backend, anything else is a DSN.
func (a *App) openCache(ctx context.Context) cache.Cache[httpcache.Entry] {
	dsn := a.hive.Get("CACHE", "")
	if b, ok := dsn.(bool); ok {
		if !b {
			return nil
		}
		dsn = cache.EngineMemory
	}
	s := cast.ToString(dsn)
	switch s {
	case "", "false", "0":
		return nil
	case "true", "1":
		s = cache.EngineMemory
	}

	backend, parsed, err := cache.Open[httpcache.Entry](ctx, s,
		cache.WithLogger(a.logger),
		cache.WithNamespace(a.hive.String("PACKAGE")),
		cache.WithOpenClock(a.clock),
	)
	if err != nil {
		a.logger.WarnContext(ctx, "page cache disabled",
			slog.String("dsn", s),
			slog.String("error", err.Error()),
		)
		return nil
	}
	a.logger.DebugContext(ctx, "page cache opened", slog.String("dsn", parsed.String()))
	return backend
}

// replay answers from the page cache. It reports true when the response
// is complete: either 304 for a client copy still inside the window or
// the stored response with freshness headers for the remaining TTL.
// Headers already set for this request win over stored ones.
func (a *App) replay(c *requestContext, key string, ttl time.Duration) (bool, error) {
	now := a.now()
	store := a.pageStore(c)
	if store == nil {
		httpcache.CacheHeaders(c.response.Header(), ttl, now, now)
		return false, nil
	}

	entry, ok, err := store.Lookup(c, key)
	if err != nil {
		a.logger.WarnContext(c, "page cache lookup failed", slog.String("error", err.Error()))
	}
	if !ok {
		a.metrics.pageCacheResult("miss")
		httpcache.CacheHeaders(c.response.Header(), ttl, now, now)
		return false, nil
	}

	if httpcache.NotModified(c.Header("If-Modified-Since"), ttl, now) {
		a.metrics.pageCacheResult("not_modified")
		c.response.replace(http.StatusNotModified, c.response.Header(), nil)
		return true, nil
	}

	a.metrics.pageCacheResult("hit")
	header := entry.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	maps.Copy(header, c.response.Header())
	c.response.replace(entry.Status, header, entry.Body)
	httpcache.CacheHeaders(c.response.Header(), entry.Remaining(now), entry.Created, now)
	c.SetHeader("X-Cache", "HIT")
	c.hive.Set("RESPONSE", string(entry.Body))
	return true, nil
}

// save stores a successful response with a body under key.
func (a *App) save(c *requestContext, key string, ttl time.Duration) {
	status := c.response.Status()
	if status < 200 || status >= 300 || c.response.Size() == 0 {
		return
	}
	store := a.pageStore(c)
	if store == nil {
		return
	}
	if _, err := store.Save(c, key, status, c.response.Header(), c.response.Body(), ttl); err != nil {
		a.logger.WarnContext(c, "page cache write failed", slog.String("error", err.Error()))
		return
	}
	a.metrics.pageCacheResult("store")
}

// PurgeCache removes expired page-cache entries and reports how many
// were dropped.
func (a *App) PurgeCache(ctx context.Context) (int, error) {
	store := a.pageStore(ctx)
	if store == nil {
		return 0, ErrCacheDisabled
	}
	return store.Purge(ctx)
}

// ClearCache removes every page-cache entry.
func (a *App) ClearCache(ctx context.Context) error {
	store := a.pageStore(ctx)
	if store == nil {
		return ErrCacheDisabled
	}
	return store.Clear(ctx)
}

// purgeScheduled is the cron job registered by WithCachePurge.
func (a *App) purgeScheduled() {
	ctx := context.Background()
	n, err := a.PurgeCache(ctx)
	if err != nil {
		if !errors.Is(err, ErrCacheDisabled) {
			a.logger.WarnContext(ctx, "page cache purge failed", slog.String("error", err.Error()))
		}
		return
	}
	a.logger.DebugContext(ctx, "page cache purged", slog.Int("removed", n))
}

// closeCache releases the page cache backend on shutdown.
func (a *App) closeCache(context.Context) error {
	if a.cache.store == nil {
		return nil
	}
	return a.cache.store.Close()
}
