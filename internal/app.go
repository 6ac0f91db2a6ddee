package internal

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"github.com/eghojansu/stick/pkg/cache"
	"github.com/eghojansu/stick/pkg/cookie"
	"github.com/eghojansu/stick/pkg/dnsbl"
	"github.com/eghojansu/stick/pkg/event"
	"github.com/eghojansu/stick/pkg/health"
	"github.com/eghojansu/stick/pkg/hive"
	"github.com/eghojansu/stick/pkg/httpcache"
	"github.com/eghojansu/stick/pkg/logger"
	"github.com/eghojansu/stick/pkg/route"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Dispatch events, in the order they fire.
const (
	EventBoot        = "boot"
	EventBeforeRoute = "route.before"
	EventAfterRoute  = "route.after"
	EventError       = "error"
	EventReroute     = "reroute"
	EventShutdown    = "shutdown"
)

// App owns the hive, the route table and the event bus, and dispatches
// every request through them.
//
// Routes, listeners and settings are registered during bootstrap. Once the
// App serves traffic those structures are only read; each request works
// on its own fork of the hive.
type App struct {
	router       chi.Router
	routes       *route.Table[HandlerFunc]
	named        map[string]HandlerFunc
	labels       map[string]string
	events       *event.Bus[Context]
	hive         *hive.Hive
	settings     map[string]any
	logger       *slog.Logger
	clock        func() time.Time
	resolver     dnsbl.Resolver
	healthConfig *healthConfig
	metrics      *metrics
	cron         *cron.Cron
	cache        pageCache
	cookieOpts   []cookie.Option
	middlewares  []Middleware
	handlers     []Handler
	staticRoutes []staticRoute
	purgeSpec    string
	languages    Extractor
	namedMu      sync.RWMutex
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// defaults returns the framework-reserved hive keys.
func defaults() map[string]any {
	return map[string]any{
		"DEBUG":     0,
		"CACHE":     "",
		"CASELESS":  false,
		"RAW":       false,
		"MAXBODY":   0,
		"PACKAGE":   "stick",
		"VERSION":   "",
		"TZ":        "UTC",
		"ENCODING":  "UTF-8",
		"LANGUAGE":  "en",
		"FALLBACK":  "en",
		"LANGUAGES": []any{},
		"DNSBL":     []any{},
		"EXEMPT":    []any{},
		"BLACKLIST": []any{},
		"CORS": map[string]any{
			"origin":      "",
			"credentials": false,
			"headers":     "",
			"expose":      "",
			"ttl":         0,
		},
		"JAR": map[string]any{
			"expire":   0,
			"path":     "/",
			"domain":   "",
			"secure":   false,
			"httponly": true,
			"samesite": "lax",
		},
		"ERROR":   nil,
		"REROUTE": nil,
	}
}

// New creates a new application with the given options.
//
// Example:
//
//	app := stick.New(
//	    stick.WithLogger(log),
//	    stick.WithDebug(1),
//	    stick.WithHandlers(handlers.NewBlog(repo)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:    chi.NewRouter(),
		routes:    route.NewTable[HandlerFunc](),
		named:     make(map[string]HandlerFunc),
		events:    event.NewBus[Context](),
		settings:  make(map[string]any),
		logger:    logger.NewNope(),
		clock:     time.Now,
		languages: defaultLanguageSources(),
	}

	for _, opt := range opts {
		opt(a)
	}

	d := defaults()
	maps.Copy(d, a.settings)
	a.hive = hive.New(d)

	if a.purgeSpec != "" {
		a.cron = cron.New()
		if _, err := a.cron.AddFunc(a.purgeSpec, a.purgeScheduled); err != nil {
			panic(fmt.Errorf("stick: invalid cache purge schedule %q: %w", a.purgeSpec, err))
		}
	}

	a.setupRoutes()
	return a
}

// ServeHTTP dispatches r through the outer mux.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// Hive returns the application store. Writes are meant for bootstrap.
func (a *App) Hive() *hive.Hive {
	return a.hive
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Get reads an application setting.
func (a *App) Get(path string, def any) any {
	return a.hive.Get(path, def)
}

// Set writes an application setting.
func (a *App) Set(path string, value any) {
	a.hive.Set(path, value)
}

// On registers fn for the named event. The returned function removes it.
func (a *App) On(name string, fn Listener) func() {
	off, err := a.events.On(name, fn)
	if err != nil {
		panic(err)
	}
	return off
}

// One registers fn for a single dispatch of the named event.
func (a *App) One(name string, fn Listener) func() {
	off, err := a.events.One(name, fn)
	if err != nil {
		panic(err)
	}
	return off
}

// Off removes every listener of the named event.
func (a *App) Off(name string) {
	a.events.Off(name)
}

// Run starts the HTTP server and blocks until shutdown.
// A configured cache purge schedule starts with the server and stops
// before the page cache is closed.
//
// Example:
//
//	app := stick.New(stick.WithHandlers(handlers.NewBlog()))
//	err := app.Run(":8080", stick.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	if a.cron != nil {
		startupHooks = append(startupHooks, func(context.Context) error {
			a.cron.Start()
			return nil
		})
		shutdownHooks = append(shutdownHooks, func(ctx context.Context) error {
			select {
			case <-a.cron.Stop().Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	shutdownHooks = append(shutdownHooks, a.closeCache)

	log := cfg.logger
	if log == nil {
		log = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		logger:          log,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes mounts the framework endpoints and the catch-all dispatcher.
func (a *App) setupRoutes() {
	a.router.Use(middleware.RealIP)

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks))
	}

	if a.metrics != nil {
		a.router.Handle(a.metrics.path, a.metrics.handler())
	}

	for _, h := range a.handlers {
		h.Routes(a)
	}

	a.router.HandleFunc("/*", a.serve)
}

// serve runs one request through the dispatcher and flushes the buffered
// response.
func (a *App) serve(w http.ResponseWriter, r *http.Request) {
	c := a.newContext(r, false, 0)
	a.dispatch(c)

	if err := c.response.flushTo(w, r.Method == http.MethodHead); err != nil {
		a.logger.DebugContext(c, "response write failed", slog.String("error", err.Error()))
	}
	a.finish(c)
}

// finish emits the shutdown event and records request metrics.
func (a *App) finish(c *requestContext) {
	if _, err := a.events.Dispatch(EventShutdown, c); err != nil {
		a.logger.ErrorContext(c, "shutdown listener failed", slog.String("error", err.Error()))
	}
	if a.metrics != nil {
		a.metrics.observe(c, a.now().Sub(c.started))
	}
}

func (a *App) now() time.Time {
	return a.clock()
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	stick.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// pageCache lazily opens the response store from the CACHE setting.
type pageCache struct {
	backend cache.Cache[httpcache.Entry]
	store   *httpcache.Store
	once    sync.Once
}
