package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eghojansu/stick/pkg/cache"
	"github.com/eghojansu/stick/pkg/cookie"
	"github.com/eghojansu/stick/pkg/dnsbl"
	"github.com/eghojansu/stick/pkg/httpcache"
	"github.com/eghojansu/stick/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware wraps every controller. Middleware is applied in the
// order provided, the first one outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithListener registers fn for the named event.
//
// Example:
//
//	stick.WithListener(stick.EventBeforeRoute, func(c stick.Context) (any, error) {
//	    if c.Get("SESSION.user", nil) == nil {
//	        return nil, c.Reroute("login", false)
//	    }
//	    return nil, nil
//	})
func WithListener(name string, fn Listener) Option {
	return func(a *App) {
		if _, err := a.events.On(name, fn); err != nil {
			panic(err)
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	stick.New(
//	    stick.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithHealthChecks enables the liveness and readiness endpoints.
//
// Example:
//
//	stick.WithHealthChecks(
//	    stick.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the application logger with a component attribute.
// Default: no-op logger.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		l := logger.New(extractors...)
		if component != "" {
			l = l.With(slog.String("component", component))
		}
		a.logger = l
	}
}

// WithCustomLogger sets a pre-built logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions applies cookie options on top of the JAR settings.
//
// Example:
//
//	stick.WithCookieOptions(cookie.WithSecret(os.Getenv("COOKIE_SECRET")))
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieOpts = append(a.cookieOpts, opts...)
	}
}

// WithSetting seeds a framework or user setting. Top-level keys set here
// become reserved: removing them restores this value.
func WithSetting(path string, value any) Option {
	return func(a *App) {
		head, rest, nested := strings.Cut(path, ".")
		if !nested {
			a.settings[head] = value
			return
		}
		m, ok := a.settings[head].(map[string]any)
		if !ok {
			m = make(map[string]any)
			if d, ok := defaults()[head].(map[string]any); ok {
				for k, v := range d {
					m[k] = v
				}
			}
			a.settings[head] = m
		}
		setNested(m, rest, value)
	}
}

func setNested(m map[string]any, path string, value any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		m[head] = value
		return
	}
	child, ok := m[head].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[head] = child
	}
	setNested(child, rest, value)
}

// WithDebug sets the DEBUG verbosity. Above zero, error pages include
// messages of plain errors and the call trace.
func WithDebug(level int) Option {
	return WithSetting("DEBUG", level)
}

// WithCache sets the page cache DSN: "memory", "redis=host:port:db",
// "memcache=host:port,...", "folder=dir" or "" to disable caching.
func WithCache(dsn string) Option {
	return WithSetting("CACHE", dsn)
}

// WithCacheBackend uses backend for the page cache instead of the CACHE DSN.
func WithCacheBackend(backend cache.Cache[httpcache.Entry]) Option {
	return func(a *App) {
		a.cache.backend = backend
	}
}

// WithCachePurge schedules removal of expired page-cache entries using a
// cron spec such as "@every 10m". The schedule runs while App.Run serves.
func WithCachePurge(spec string) Option {
	return func(a *App) {
		a.purgeSpec = spec
	}
}

// WithCaseless makes route matching case-insensitive.
func WithCaseless(caseless bool) Option {
	return WithSetting("CASELESS", caseless)
}

// WithRawBody leaves the request body unread for controllers that stream it.
func WithRawBody(raw bool) Option {
	return WithSetting("RAW", raw)
}

// WithMaxBody limits the request payload read by the dispatcher.
// Larger bodies are rejected with 413.
func WithMaxBody(bytes int) Option {
	return WithSetting("MAXBODY", bytes)
}

// WithCORS configures cross-origin handling. origin is "*", one origin
// or a comma separated list.
func WithCORS(origin string, credentials bool, headers, expose string, ttl time.Duration) Option {
	return WithSetting("CORS", map[string]any{
		"origin":      origin,
		"credentials": credentials,
		"headers":     headers,
		"expose":      expose,
		"ttl":         int(ttl / time.Second),
	})
}

// WithLanguages sets the supported languages for Accept-Language
// negotiation and the fallback used when nothing matches.
func WithLanguages(fallback string, supported ...string) Option {
	return func(a *App) {
		WithSetting("FALLBACK", fallback)(a)
		WithSetting("LANGUAGE", fallback)(a)
		WithSetting("LANGUAGES", toAny(supported))(a)
	}
}

// WithLanguageSources replaces the chain that reads the client's language
// preference. The default reads the "lang" cookie, then Accept-Language.
//
// Example:
//
//	stick.WithLanguageSources(
//	    stick.FromQuery("lang"),
//	    stick.FromCookie("lang"),
//	    stick.FromHeader("Accept-Language"),
//	)
func WithLanguageSources(sources ...ExtractorSource) Option {
	return func(a *App) {
		a.languages = NewExtractor(sources...)
	}
}

// WithBlacklist denies requests from the given IPs or CIDR ranges.
func WithBlacklist(entries ...string) Option {
	return WithSetting("BLACKLIST", toAny(entries))
}

// WithExempt lets the given IPs or CIDR ranges bypass every deny check.
func WithExempt(entries ...string) Option {
	return WithSetting("EXEMPT", toAny(entries))
}

// WithDNSBL denies requests from addresses listed in any of the zones.
//
// Example:
//
//	stick.WithDNSBL("zen.spamhaus.org", "bl.spamcop.net")
func WithDNSBL(zones ...string) Option {
	return WithSetting("DNSBL", toAny(zones))
}

// WithResolver replaces the DNS resolver used for DNSBL queries.
func WithResolver(r dnsbl.Resolver) Option {
	return func(a *App) {
		a.resolver = r
	}
}

// WithClock overrides the time source used for caching and timing.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.clock = now
		}
	}
}

// WithMetrics exposes Prometheus metrics for dispatch and the page cache
// at path. Default path: "/metrics".
func WithMetrics(path string) Option {
	return func(a *App) {
		a.metrics = newMetrics(path)
	}
}
