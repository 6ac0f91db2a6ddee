package internal

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/eghojansu/stick/pkg/hive"
)

// corsPolicy is the CORS setting of one request.
type corsPolicy struct {
	origins     []string
	headers     string
	expose      string
	ttl         int
	credentials bool
}

func corsFrom(h *hive.Hive) corsPolicy {
	return corsPolicy{
		origins:     h.Strings("CORS.origin"),
		headers:     h.String("CORS.headers"),
		expose:      h.String("CORS.expose"),
		ttl:         h.Int("CORS.ttl"),
		credentials: h.Bool("CORS.credentials"),
	}
}

func (p corsPolicy) enabled() bool {
	return len(p.origins) > 0
}

func (p corsPolicy) wildcard() bool {
	return slices.Contains(p.origins, "*")
}

func (p corsPolicy) allows(origin string) bool {
	if p.wildcard() {
		return true
	}
	return slices.ContainsFunc(p.origins, func(o string) bool {
		return strings.EqualFold(o, origin)
	})
}

// applyCORS sets the allow-origin headers for a cross-origin request and
// reports whether the request is a pre-flight.
func (a *App) applyCORS(c *requestContext) bool {
	origin := c.Header("Origin")
	p := corsFrom(c.hive)
	if origin == "" || !p.enabled() {
		return false
	}

	if p.allows(origin) {
		h := c.response.Header()
		if p.wildcard() && !p.credentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		if p.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	}

	return c.Header("Access-Control-Request-Method") != ""
}

// preflightHeaders answers a pre-flight for the verbs in allow.
func (a *App) preflightHeaders(c *requestContext, allow string) {
	p := corsFrom(c.hive)
	h := c.response.Header()
	h.Set("Access-Control-Allow-Methods", http.MethodOptions+","+allow)
	if p.headers != "" {
		h.Set("Access-Control-Allow-Headers", p.headers)
	}
	if p.ttl > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(p.ttl))
	}
}

// exposeHeaders advertises the configured response headers to a
// cross-origin caller of a matched route.
func (a *App) exposeHeaders(c *requestContext) {
	if c.Header("Origin") == "" {
		return
	}
	p := corsFrom(c.hive)
	if p.enabled() && p.expose != "" {
		c.SetHeader("Access-Control-Expose-Headers", p.expose)
	}
}
