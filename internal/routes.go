package internal

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/eghojansu/stick/pkg/route"
)

// RouteInfo describes one registered binding.
type RouteInfo struct {
	Verb    string
	Pattern string
	Mode    route.Mode
	Alias   string
	Handler string
	TTL     int
}

// Route registers h under spec:
//
//	VERB[|VERB...] [alias] [/pattern] [ajax|cli|sync] [ttl]
//
// A malformed spec or an unknown alias panics with a *route.ConfigError.
//
// Example:
//
//	app.Route("GET|HEAD blog_item /blog/@item:digit 60", showPost)
func (a *App) Route(spec string, h HandlerFunc) {
	if err := a.addRoute(spec, h, ""); err != nil {
		panic(err)
	}
}

// addRoute is Route with an error return and a label for listings.
func (a *App) addRoute(spec string, h HandlerFunc, label string) error {
	if h == nil {
		return fmt.Errorf("%w: nil handler for %q", ErrUnknownHandler, spec)
	}
	s, err := route.ParseSpec(spec)
	if err != nil {
		return err
	}
	return a.addSpec(s, h, label)
}

func (a *App) addSpec(s route.Spec, h HandlerFunc, label string) error {
	if err := a.routes.Add(s, h); err != nil {
		return err
	}
	pattern := s.Pattern
	if pattern == "" {
		pattern, _ = a.routes.Alias(s.Alias)
	}
	a.namedMu.Lock()
	defer a.namedMu.Unlock()
	if a.labels == nil {
		a.labels = make(map[string]string)
	}
	for _, v := range s.Verbs {
		a.labels[labelKey(pattern, s.Mode, v)] = label
	}
	return nil
}

func labelKey(pattern string, mode route.Mode, verb string) string {
	if mode == "" {
		mode = route.ModeAll
	}
	return string(mode) + " " + verb + " " + pattern
}

// Redirect registers a route that reroutes to target.
//
// Example:
//
//	app.Redirect("GET /old-blog", "blog", true)
func (a *App) Redirect(spec, target string, permanent bool) {
	if err := a.addRedirect(spec, target, permanent); err != nil {
		panic(err)
	}
}

func (a *App) addRedirect(spec, target string, permanent bool) error {
	h := func(c Context) (Result, error) {
		return nil, c.Reroute(target, permanent)
	}
	return a.addRoute(spec, h, "-> "+target)
}

// Handle registers a controller under name so that routes declared in
// configuration files can refer to it.
func (a *App) Handle(name string, h HandlerFunc) {
	if h == nil {
		panic(fmt.Errorf("%w: nil handler %q", ErrUnknownHandler, name))
	}
	a.namedMu.Lock()
	defer a.namedMu.Unlock()
	a.named[name] = h
}

// Named returns a controller that calls the handler registered under
// name. The lookup happens per request, so routes may be declared before
// their handlers. An unknown name renders 404.
func (a *App) Named(name string) HandlerFunc {
	return func(c Context) (Result, error) {
		a.namedMu.RLock()
		h, ok := a.named[name]
		a.namedMu.RUnlock()
		if !ok {
			return nil, ErrNotFound("", WithError(fmt.Errorf("%w: %q", ErrUnknownHandler, name)))
		}
		return h(c)
	}
}

// HandlerNames lists the registered handler names.
func (a *App) HandlerNames() []string {
	a.namedMu.RLock()
	defer a.namedMu.RUnlock()
	return slices.Sorted(maps.Keys(a.named))
}

// Controller binds several routes to methods of the handler group name.
// Each key is a route spec and each value a method; the route calls the
// handler registered as "name.method". Specs with a pattern register
// before alias-only specs so that aliases resolve.
//
// Example:
//
//	app.Resource("Blog", blog)
//	app.Controller("Blog", map[string]string{
//	    "GET blog /blog":            "index",
//	    "POST blog":                 "store",
//	    "GET blog_item /blog/@item": "show",
//	})
func (a *App) Controller(name string, routes map[string]string) {
	if err := a.addController(name, routes); err != nil {
		panic(err)
	}
}

func (a *App) addController(name string, routes map[string]string) error {
	specs := slices.SortedFunc(maps.Keys(routes), func(x, y string) int {
		px, py := strings.Contains(x, " /"), strings.Contains(y, " /")
		switch {
		case px && !py:
			return -1
		case !px && py:
			return 1
		}
		return strings.Compare(x, y)
	})
	for _, spec := range specs {
		target := name + "." + routes[spec]
		if err := a.addRoute(spec, a.Named(target), target); err != nil {
			return err
		}
	}
	return nil
}

// Resource registers the five REST methods of res as named handlers
// "name.index", "name.store", "name.show", "name.update" and
// "name.delete".
func (a *App) Resource(name string, res Resource) {
	a.Handle(name+".index", res.Index)
	a.Handle(name+".store", res.Store)
	a.Handle(name+".show", res.Show)
	a.Handle(name+".update", res.Update)
	a.Handle(name+".delete", res.Delete)
}

// Rest binds the named REST handlers of name to a collection and an item
// route. spec has the route grammar without verbs:
//
//	[alias] /pattern [ajax|cli|sync] [ttl]
//
// It registers:
//
//	GET          alias       /pattern        name.index
//	POST         alias       /pattern        name.store
//	GET          alias_item  /pattern/@item  name.show
//	PUT|PATCH    alias_item  /pattern/@item  name.update
//	DELETE       alias_item  /pattern/@item  name.delete
func (a *App) Rest(spec, name string) {
	if err := a.addRest(spec, name); err != nil {
		panic(err)
	}
}

func (a *App) addRest(spec, name string) error {
	s, err := route.ParseSpec(http.MethodGet + " " + spec)
	if err != nil {
		return err
	}
	if s.Pattern == "" {
		p, ok := a.routes.Alias(s.Alias)
		if !ok {
			return &route.ConfigError{Err: route.ErrUnknownAlias, Input: spec, Detail: s.Alias}
		}
		s.Pattern = p
	}

	item := strings.TrimSuffix(s.Pattern, "/") + "/@item"
	itemAlias := ""
	if s.Alias != "" {
		itemAlias = s.Alias + "_item"
	}

	bindings := []struct {
		alias, pattern, method string
		verbs                  []string
		ttl                    int
	}{
		{s.Alias, s.Pattern, "index", []string{http.MethodGet}, s.TTL},
		{s.Alias, s.Pattern, "store", []string{http.MethodPost}, 0},
		{itemAlias, item, "show", []string{http.MethodGet}, s.TTL},
		{itemAlias, item, "update", []string{http.MethodPut, http.MethodPatch}, 0},
		{itemAlias, item, "delete", []string{http.MethodDelete}, 0},
	}
	for _, b := range bindings {
		target := name + "." + b.method
		err := a.addSpec(route.Spec{
			Verbs:   b.verbs,
			Alias:   b.alias,
			Pattern: b.pattern,
			Mode:    s.Mode,
			TTL:     b.ttl,
		}, a.Named(target), target)
		if err != nil {
			return err
		}
	}
	return nil
}

// Routes lists every binding in registration order.
func (a *App) Routes() []RouteInfo {
	a.namedMu.RLock()
	defer a.namedMu.RUnlock()

	rows := a.routes.Routes()
	out := make([]RouteInfo, 0, len(rows))
	for _, r := range rows {
		label := a.labels[labelKey(r.Pattern, r.Mode, r.Verb)]
		if label == "" {
			label = "func"
		}
		out = append(out, RouteInfo{
			Verb:    r.Verb,
			Pattern: r.Pattern,
			Mode:    r.Mode,
			Alias:   r.Alias,
			Handler: label,
			TTL:     r.TTL,
		})
	}
	return out
}

// URL renders an alias reference such as "blog_item(item=1)?page=2".
func (a *App) URL(target string) (string, error) {
	return a.resolveTarget(target)
}
