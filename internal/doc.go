// Package internal provides the core types and implementation for the Stick framework.
//
// This package is internal and should not be used directly. Import "github.com/eghojansu/stick"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: owns the hive, the route table and the event bus; dispatches requests
//   - Context: request-scoped state handed to listeners, middleware and controllers
//   - Router: registration surface used by Handler.Routes
//   - HandlerFunc: controller signature returning a Result and an error
//   - Result: closed set of response shapes (Text, JSON, Map, List, Deferred)
//   - Response: buffered response flushed once dispatch completes
//   - HTTPError: error carrying the status code and the rendered trace
//
// # Dispatch
//
// Every request that reaches the catch-all route runs these phases in order.
// Each phase may end the request early:
//
//  1. boot event
//  2. deny check (EXEMPT, BLACKLIST, DNSBL)
//  3. empty route table guard (500)
//  4. route lookup (404, 405, OPTIONS 200, 400)
//  5. page cache replay for GET and HEAD routes with a TTL (304 or stored response)
//  6. body read, unless RAW is set
//  7. route.before event
//  8. controller and Result
//  9. route.after event
//  10. page cache write
//
// Errors and panics are converted once into an error response: JSON for AJAX,
// plain text for CLI and a minimal HTML page otherwise. A failure while that
// response is being produced is logged and the buffered output is sent.
//
// # Route Specs
//
//	VERB[|VERB...] [alias] [/pattern] [ajax|cli|sync] [ttl]
//
//	app.Route("GET|HEAD home /", home)
//	app.Route("GET blog_item /blog/@item:digit 60", showPost)
//	app.Route("POST blog_item ajax", updatePost)
//	app.Route("GET /files/@path*", serveFile)
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context:
//
//	func (h *Blog) show(c stick.Context) (stick.Result, error) {
//	    post, err := h.repo.Find(c, stick.Param[int64](c, "item"))
//	    if err != nil {
//	        return nil, c.Error(http.StatusNotFound, "No such post", stick.WithError(err))
//	    }
//	    return stick.JSON(post), nil
//	}
//
// # Hive
//
// Each request works on a fork of the application hive. Framework keys
// (VERB, PATH, URI, PARAMS, ERROR, ...) are filled in as dispatch proceeds.
// Removing a framework key restores its bootstrap value:
//
//	c.Set("LANGUAGE", "de")
//	c.Remove("LANGUAGE") // back to the negotiated default
//
// # Events
//
// Listeners receive the Context. Returning event.ErrStop ends the phase:
//
//	app.On(stick.EventBeforeRoute, func(c stick.Context) (any, error) {
//	    if c.Header("X-Maintenance") != "" {
//	        c.SetStatus(http.StatusServiceUnavailable)
//	        return nil, stick.ErrStop
//	    }
//	    return nil, nil
//	})
//
// # Mock Requests
//
// App.Mock dispatches a request line without a transport:
//
//	res, err := app.Mock(ctx, "GET blog_item(item=7) ajax")
//
// # Configuration Files
//
// App.Config loads INI or YAML files. Plain sections set hive values;
// [configs], [routes], [controllers], [rests] and [redirects] register
// includes, routes, controller maps, REST resources and redirects.
package internal
