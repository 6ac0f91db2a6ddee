package internal

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/eghojansu/stick/pkg/httpcache"
	"github.com/eghojansu/stick/pkg/route"
)

// dispatch runs the request pipeline and converts any failure, panics
// included, into an error response.
func (a *App) dispatch(c *requestContext) {
	defer func() {
		if v := recover(); v != nil {
			a.fail(c, &PanicError{Value: v, Stack: debug.Stack()})
		}
	}()

	if err := a.run(c); err != nil {
		a.fail(c, err)
	}
}

// run walks the dispatch phases. Each phase may end the request early;
// the buffered response then stands as it is.
func (a *App) run(c *requestContext) error {
	if stop, err := a.emit(c, EventBoot); err != nil || stop {
		return err
	}

	if a.blacklisted(c) {
		return ErrForbidden("")
	}

	if a.routes.Len() == 0 {
		return ErrInternal("No routes specified")
	}

	preflight := a.applyCORS(c)
	res := a.routes.Lookup(route.Query{
		Path:      c.Path(),
		Verb:      c.Verb(),
		Mode:      c.Mode(),
		Caseless:  c.hive.Bool("CASELESS"),
		Preflight: preflight,
	})

	a.logger.DebugContext(c, "route lookup",
		slog.String("verb", c.Verb()),
		slog.String("path", c.Path()),
		slog.String("mode", string(c.Mode())),
		slog.String("pattern", res.Pattern),
	)

	switch res.Status {
	case route.NotFound:
		return ErrNotFound("")
	case route.BadRequest:
		return ErrBadRequest("")
	case route.MethodNotAllowed:
		c.bind(res.Pattern, "", res.Params)
		allow := strings.Join(res.Allowed, ",")
		c.SetHeader("Allow", allow)
		if c.Verb() != http.MethodOptions {
			return ErrMethodNotAllowed("")
		}
		if preflight {
			a.preflightHeaders(c, allow)
		}
		c.SetStatus(http.StatusOK)
		return nil
	}

	c.bind(res.Pattern, res.Alias, res.Params)
	a.exposeHeaders(c)

	ttl := time.Duration(res.TTL) * time.Second
	cacheable := ttl > 0 && (c.Verb() == http.MethodGet || c.Verb() == http.MethodHead)

	var key string
	if cacheable {
		key = httpcache.Key(c.Verb(), c.URI())
		if done, err := a.replay(c, key, ttl); err != nil || done {
			return err
		}
	} else {
		httpcache.NoCacheHeaders(c.response.Header())
	}

	if err := c.readBody(); err != nil {
		return err
	}

	if stop, err := a.emit(c, EventBeforeRoute); err != nil || stop {
		return err
	}

	result, err := a.chain(res.Handler)(c)
	if err != nil {
		return err
	}
	if result != nil {
		if err := result.apply(c); err != nil {
			return err
		}
	}
	c.hive.Set("RESPONSE", c.response.String())

	if stop, err := a.emit(c, EventAfterRoute); err != nil || stop {
		return err
	}

	if cacheable {
		a.save(c, key, ttl)
	}
	return nil
}

// chain wraps h with the global middleware, the first one outermost.
func (a *App) chain(h HandlerFunc) HandlerFunc {
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

// emit dispatches a named event and reports whether a listener stopped it.
func (a *App) emit(c *requestContext, name string) (bool, error) {
	out, err := a.events.Dispatch(name, c)
	if err != nil {
		return false, err
	}
	if out.Stopped {
		a.logger.DebugContext(c, "dispatch stopped by listener", slog.String("event", name))
	}
	return out.Stopped, nil
}
