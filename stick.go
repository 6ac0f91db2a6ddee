package stick

import (
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/eghojansu/stick/internal"
	"github.com/eghojansu/stick/pkg/cache"
	"github.com/eghojansu/stick/pkg/cookie"
	"github.com/eghojansu/stick/pkg/dnsbl"
	"github.com/eghojansu/stick/pkg/event"
	"github.com/eghojansu/stick/pkg/health"
	"github.com/eghojansu/stick/pkg/httpcache"
	"github.com/eghojansu/stick/pkg/logger"
)

// Type aliases - public API
type (
	// App owns the hive, the route table and the event bus, and
	// dispatches every request through them.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context is the request-scoped state passed to listeners, middleware
	// and controllers. It embeds context.Context.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the controller signature.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// Listener handles a dispatch event.
	Listener = internal.Listener

	// Resource is a REST controller with index, store, show, update and
	// delete methods.
	Resource = internal.Resource

	// Result shapes the response of a controller.
	Result = internal.Result

	// Response is the buffered response of one request.
	Response = internal.Response

	// RouteInfo describes one registered binding.
	RouteInfo = internal.RouteInfo

	// HTTPError carries a status code and a user-facing message.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// PanicError wraps a value recovered from a panicking controller.
	PanicError = internal.PanicError

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// MockOption configures a simulated request.
	MockOption = internal.MockOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Extractor tries request sources in order and returns the first match.
	Extractor = internal.Extractor

	// ExtractorSource reads one candidate value from the request.
	ExtractorSource = internal.ExtractorSource

	// Scalar is the set of types the typed accessors convert to.
	Scalar = internal.Scalar

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie jar.
	CookieOption = cookie.Option

	// PageCache is a backend for the response cache.
	PageCache = cache.Cache[httpcache.Entry]

	// Resolver answers the DNS queries of DNSBL checks.
	Resolver = dnsbl.Resolver
)

// Dispatch events, in the order they fire.
const (
	EventBoot        = internal.EventBoot
	EventBeforeRoute = internal.EventBeforeRoute
	EventAfterRoute  = internal.EventAfterRoute
	EventError       = internal.EventError
	EventReroute     = internal.EventReroute
	EventShutdown    = internal.EventShutdown
)

// Sentinel errors
var (
	// ErrStop is returned by a listener to end the current phase.
	ErrStop = event.ErrStop

	ErrEncodeResult   = internal.ErrEncodeResult
	ErrUnknownHandler = internal.ErrUnknownHandler
	ErrRerouteLoop    = internal.ErrRerouteLoop
	ErrMockSyntax     = internal.ErrMockSyntax
	ErrConfigSection  = internal.ErrConfigSection
	ErrCacheDisabled  = internal.ErrCacheDisabled
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	app := stick.New(
//	    stick.WithLogger("blog"),
//	    stick.WithCache("redis=localhost:6379"),
//	    stick.WithHandlers(handlers.NewBlog(repo)),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithMiddleware wraps every controller. The first middleware is the
// outermost.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithListener registers fn for the named event.
func WithListener(name string, fn Listener) Option {
	return internal.WithListener(name, fn)
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
//
// Example:
//
//	stick.New(
//	    stick.WithLogger("api", listeners.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithCookieOptions applies cookie options on top of the JAR settings.
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithMetrics exposes Prometheus metrics at path ("/metrics" when empty).
func WithMetrics(path string) Option {
	return internal.WithMetrics(path)
}

// WithClock overrides the time source used for caching and timing.
func WithClock(now func() time.Time) Option {
	return internal.WithClock(now)
}

// Settings

// WithSetting sets a bootstrap hive value. Dotted paths address nested
// keys. Values set here are restored when a request removes them.
//
// Example:
//
//	stick.WithSetting("JAR.secure", true)
func WithSetting(path string, value any) Option {
	return internal.WithSetting(path, value)
}

// WithDebug sets the DEBUG verbosity. Above zero, error responses include
// the error text and the stack trace.
func WithDebug(level int) Option {
	return internal.WithDebug(level)
}

// WithCache enables the page cache. dsn is "true" for the in-process
// cache, "redis=host:port[:db]", "memcache=host:port" or "folder=dir".
func WithCache(dsn string) Option {
	return internal.WithCache(dsn)
}

// WithCacheBackend uses backend as the page cache.
func WithCacheBackend(backend PageCache) Option {
	return internal.WithCacheBackend(backend)
}

// WithCachePurge sweeps expired page-cache entries on a cron schedule
// while the server runs.
//
// Example:
//
//	stick.WithCachePurge("@every 10m")
func WithCachePurge(spec string) Option {
	return internal.WithCachePurge(spec)
}

// WithCaseless makes route patterns match regardless of case.
func WithCaseless(caseless bool) Option {
	return internal.WithCaseless(caseless)
}

// WithRawBody leaves the request body unread for streaming controllers.
func WithRawBody(raw bool) Option {
	return internal.WithRawBody(raw)
}

// WithMaxBody limits the request body to bytes; larger bodies render 413.
func WithMaxBody(bytes int) Option {
	return internal.WithMaxBody(bytes)
}

// WithCORS configures cross-origin handling. origin is "*", one origin
// or a comma separated list.
func WithCORS(origin string, credentials bool, headers, expose string, ttl time.Duration) Option {
	return internal.WithCORS(origin, credentials, headers, expose, ttl)
}

// WithLanguages sets the supported languages and the fallback used when
// Accept-Language matches none of them.
func WithLanguages(fallback string, supported ...string) Option {
	return internal.WithLanguages(fallback, supported...)
}

// WithLanguageSources replaces the chain that reads the client's language
// preference. The default reads the "lang" cookie, then Accept-Language.
func WithLanguageSources(sources ...ExtractorSource) Option {
	return internal.WithLanguageSources(sources...)
}

// WithBlacklist denies requests from the given IPs or CIDR ranges.
func WithBlacklist(entries ...string) Option {
	return internal.WithBlacklist(entries...)
}

// WithExempt lets the given IPs or CIDR ranges bypass every deny check.
func WithExempt(entries ...string) Option {
	return internal.WithExempt(entries...)
}

// WithDNSBL denies requests from addresses listed in any of the zones.
func WithDNSBL(zones ...string) Option {
	return internal.WithDNSBL(zones...)
}

// WithResolver replaces the DNS resolver used for DNSBL queries.
func WithResolver(r Resolver) Option {
	return internal.WithResolver(r)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger. Defaults to the application logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the server accepts
// connections. If any hook fails, the server does not start.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	stick.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Mock options

// WithMockBody sets the raw request body of a mock request.
func WithMockBody(body []byte) MockOption {
	return internal.WithMockBody(body)
}

// WithMockForm sends values as the query of GET and HEAD requests and as a
// form body otherwise.
func WithMockForm(values url.Values) MockOption {
	return internal.WithMockForm(values)
}

// WithMockHeader sets a request header of a mock request.
func WithMockHeader(name, value string) MockOption {
	return internal.WithMockHeader(name, value)
}

// WithMockCookie adds a request cookie to a mock request.
func WithMockCookie(name, value string) MockOption {
	return internal.WithMockCookie(name, value)
}

// WithMockIP sets the client address of a mock request.
func WithMockIP(ip string) MockOption {
	return internal.WithMockIP(ip)
}

// Results

// Text writes s as the body.
func Text(s string) Result {
	return internal.Text(s)
}

// JSON serializes v as the response body.
func JSON(v any) Result {
	return internal.JSON(v)
}

// Map is JSON for a keyed payload.
func Map(m map[string]any) Result {
	return internal.Map(m)
}

// List is JSON for a sequence payload.
func List(items ...any) Result {
	return internal.List(items...)
}

// Deferred runs fn after the controller returns.
func Deferred(fn func(c Context) error) Result {
	return internal.Deferred(fn)
}

// Errors

// NewHTTPError creates an error rendered with the given status code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithError attaches the underlying cause to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// AsHTTPError extracts the HTTPError from an error chain.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Context helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or type assertion fails.
//
// Example:
//
//	type tenantKey struct{}
//
//	tenant := stick.ContextValue[string](c, tenantKey{})
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// HiveValue returns the request hive value at path converted to T.
func HiveValue[T Scalar](c Context, path string) T {
	return internal.HiveValue[T](c, path)
}

// Param returns a route parameter converted to T.
//
// Example:
//
//	id := stick.Param[int64](c, "id")
func Param[T Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a query parameter converted to T.
func Query[T Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a query parameter converted to T, or defaultValue
// when it is empty or cannot be converted.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// Extractors

// NewExtractor creates an Extractor that tries the given sources in order.
//
// Example:
//
//	token := stick.NewExtractor(
//	    stick.FromBearerToken(),
//	    stick.FromQuery("token"),
//	)
//	if v, ok := token.Extract(c); ok { ... }
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader returns a source that reads a request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery returns a source that reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// FromCookie returns a source that reads a cookie through the jar.
func FromCookie(name string) ExtractorSource {
	return internal.FromCookie(name)
}

// FromParam returns a source that reads a matched route parameter.
func FromParam(name string) ExtractorSource {
	return internal.FromParam(name)
}

// FromHive returns a source that reads a hive value as text.
func FromHive(path string) ExtractorSource {
	return internal.FromHive(path)
}

// FromBearerToken returns a source that reads a Bearer token from the
// Authorization header.
func FromBearerToken() ExtractorSource {
	return internal.FromBearerToken()
}

// Cookie options

// WithCookieSecret sets the secret for signing and encryption.
// Must be at least 32 bytes.
func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}
