package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/eghojansu/stick/pkg/cookie"
	"github.com/eghojansu/stick/pkg/hive"
	"github.com/eghojansu/stick/pkg/route"
)

// Context is the request-scoped state threaded through listeners,
// middleware and controllers. It implements context.Context by delegating
// to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the buffered response.
	Response() *Response

	// Hive returns the request's store, forked from the application store.
	Hive() *hive.Hive

	// Get returns the hive value at path, or def when it is absent.
	Get(path string, def any) any

	// Set assigns a hive value, creating intermediate maps.
	Set(path string, value any)

	// Has reports whether path resolves in the hive.
	Has(path string) bool

	// Remove deletes a user key or restores a framework key to its default.
	Remove(path string)

	// Verb returns the request method.
	Verb() string

	// Path returns the request path.
	Path() string

	// URI returns the path with its query string.
	URI() string

	// Mode returns the request mode: ajax, cli or sync.
	Mode() route.Mode

	// IP returns the client address.
	IP() string

	// Language returns the negotiated language tag.
	Language() string

	// Header returns a request header value.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Param returns a matched route parameter as text.
	Param(name string) string

	// Params returns every matched route parameter.
	Params() route.Params

	// Query returns a query string value.
	Query(name string) string

	// Body returns the raw request payload. It is empty in RAW mode.
	Body() []byte

	// Pattern returns the matched route pattern.
	Pattern() string

	// Alias returns the matched route alias.
	Alias() string

	// Status returns the response status code.
	Status() int

	// SetStatus sets the response status code.
	SetStatus(code int)

	// Cookie returns a request cookie value.
	Cookie(name string) (string, error)

	// SetCookie writes a cookie through the jar and records it in the hive
	// under COOKIE.<name>. A zero lifetime uses the jar default.
	SetCookie(name, value string, lifetime time.Duration)

	// DeleteCookie expires a cookie and removes it from the hive.
	DeleteCookie(name string)

	// Jar returns the cookie jar built from the JAR settings.
	Jar() *cookie.Jar

	// URL renders "alias(k=v,...)?query" or a path into a request URI.
	URL(target string) (string, error)

	// Reroute sends the client to target, which is a URL, a path or an
	// alias reference. In CLI mode the target is dispatched in-process.
	Reroute(target string, permanent bool) error

	// Error creates an HTTPError without writing a response.
	// Return it from a controller to render the error page.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// SetValue stores a value retrievable through Value.
	SetValue(key, value any)

	// Logger returns the application logger.
	Logger() *slog.Logger

	// LogDebug logs a debug message with optional attributes.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs an info message with optional attributes.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs a warning message with optional attributes.
	LogWarn(msg string, attrs ...any)

	// LogError logs an error message with optional attributes.
	LogError(msg string, attrs ...any)
}

// requestContext implements Context.
type requestContext struct {
	context.Context
	app      *App
	request  *http.Request
	response *Response
	hive     *hive.Hive
	jar      *cookie.Jar
	params   route.Params
	body     []byte
	started  time.Time
	pattern  string
	alias    string
	depth    int
	bodyRead bool
	failing  bool
}

// newContext forks the application hive and fills the request keys.
func (a *App) newContext(r *http.Request, cli bool, depth int) *requestContext {
	h := a.hive.Fork()
	c := &requestContext{
		Context:  r.Context(),
		app:      a,
		request:  r,
		response: newResponse(),
		hive:     h,
		started:  a.now(),
		depth:    depth,
	}

	host, port := splitHost(r.Host)
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}

	headers := make(map[string]any, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	query := make(map[string]any)
	for k, v := range r.URL.Query() {
		if len(v) == 1 {
			query[k] = v[0]
		} else {
			query[k] = toAny(v)
		}
	}
	cookies := make(map[string]any)
	for _, ck := range r.Cookies() {
		cookies[ck.Name] = ck.Value
	}

	ajax := strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")

	h.Set("VERB", r.Method)
	h.Set("PATH", r.URL.Path)
	h.Set("URI", r.URL.RequestURI())
	h.Set("QUERY", r.URL.RawQuery)
	h.Set("GET", query)
	h.Set("HEADERS", headers)
	h.Set("COOKIE", cookies)
	h.Set("SCHEME", scheme)
	h.Set("HOST", host)
	h.Set("PORT", port)
	h.Set("AGENT", r.UserAgent())
	h.Set("IP", clientIP(r))
	h.Set("AJAX", ajax && !cli)
	h.Set("CLI", cli)
	h.Set("TIME", c.started)

	jar, _ := h.Get("JAR", nil).(map[string]any)
	c.jar = cookie.FromMap(jar, a.cookieOpts...)

	pref, _ := a.languages.Extract(c)
	h.Set("LANGUAGE", a.negotiateLanguage(h, pref))
	return c
}

func (c *requestContext) Request() *http.Request { return c.request }
func (c *requestContext) Response() *Response    { return c.response }
func (c *requestContext) Hive() *hive.Hive       { return c.hive }

func (c *requestContext) Get(path string, def any) any { return c.hive.Get(path, def) }
func (c *requestContext) Set(path string, value any)   { c.hive.Set(path, value) }
func (c *requestContext) Has(path string) bool         { return c.hive.Has(path) }
func (c *requestContext) Remove(path string)           { c.hive.Remove(path) }

func (c *requestContext) Verb() string     { return c.hive.String("VERB") }
func (c *requestContext) Path() string     { return c.hive.String("PATH") }
func (c *requestContext) URI() string      { return c.hive.String("URI") }
func (c *requestContext) IP() string       { return c.hive.String("IP") }
func (c *requestContext) Language() string { return c.hive.String("LANGUAGE") }

func (c *requestContext) Mode() route.Mode {
	switch {
	case c.hive.Bool("AJAX"):
		return route.ModeAjax
	case c.hive.Bool("CLI"):
		return route.ModeCLI
	default:
		return route.ModeSync
	}
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Param(name string) string { return c.params.String(name) }
func (c *requestContext) Params() route.Params     { return c.params }
func (c *requestContext) Pattern() string          { return c.pattern }
func (c *requestContext) Alias() string            { return c.alias }

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Body() []byte {
	return c.body
}

// readBody loads the payload once, unless RAW leaves the stream to the
// controller.
func (c *requestContext) readBody() error {
	if c.bodyRead || c.hive.Bool("RAW") || c.request.Body == nil || c.request.Body == http.NoBody {
		return nil
	}
	c.bodyRead = true

	limit := int64(c.hive.Int("MAXBODY"))
	var src io.Reader = c.request.Body
	if limit > 0 {
		src = http.MaxBytesReader(nil, c.request.Body, limit)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewHTTPError(http.StatusRequestEntityTooLarge, "", WithError(err))
		}
		return ErrBadRequest("", WithError(err))
	}
	c.body = data
	c.hive.Set("BODY", string(data))
	return nil
}

func (c *requestContext) Status() int        { return c.response.Status() }
func (c *requestContext) SetStatus(code int) { c.response.WriteHeader(code) }

func (c *requestContext) Jar() *cookie.Jar { return c.jar }

func (c *requestContext) Cookie(name string) (string, error) {
	return c.jar.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, lifetime time.Duration) {
	c.jar.Set(c.response, name, value, lifetime)
	c.hive.Set("COOKIE."+name, value)
}

func (c *requestContext) DeleteCookie(name string) {
	c.jar.Delete(c.response, name)
	c.hive.Delete("COOKIE." + name)
}

func (c *requestContext) URL(target string) (string, error) {
	return c.app.resolveTarget(target)
}

func (c *requestContext) Reroute(target string, permanent bool) error {
	return c.app.reroute(c, target, permanent)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) SetValue(key, value any) {
	c.Context = context.WithValue(c.Context, key, value)
}

func (c *requestContext) Logger() *slog.Logger { return c.app.logger }

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c, msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c, msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c, msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c, msg, attrs...)
}

// bind records a matched route on the context and the hive.
func (c *requestContext) bind(pattern, alias string, params route.Params) {
	c.pattern, c.alias, c.params = pattern, alias, params
	if c.params == nil {
		c.params = route.Params{}
	}

	hp := make(map[string]any, len(c.params))
	for k, v := range c.params {
		hp[k] = v
	}
	c.hive.Set("PATTERN", pattern)
	c.hive.Set("ALIAS", alias)
	c.hive.Set("PARAMS", hp)
}

func splitHost(hostport string) (string, string) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, ""
	}
	return host, port
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
