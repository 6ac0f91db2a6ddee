// Package stick provides a small dispatch core for web and command-line
// applications in Go.
//
// Routes are declared with a compact spec string and every request flows
// through one state machine: boot listeners, route lookup, before-route
// listeners, the controller, after-route listeners, then shutdown
// listeners. Configuration lives in a hive, a tree of settings that
// controllers, listeners and config files share.
//
// # Quick Start
//
// Create a new application with stick.New(), declare routes, and call
// Run() to start the HTTP server:
//
//	app := stick.New(
//	    stick.WithLogger("blog"),
//	    stick.WithCache("true"),
//	    stick.WithHandlers(handlers.NewBlog(repo)),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// A route spec reads "VERB[|VERB] [alias] [/pattern] [ajax|cli|sync] [ttl]":
//
//	func (h *BlogHandler) Routes(r stick.Router) {
//	    r.Route("GET|HEAD blog /blog", h.index)
//	    r.Route("GET blog_post /blog/@slug 60", h.show)
//	    r.Route("POST blog", h.store)
//	    r.Route("GET /files/@path*", h.file)
//	    r.Route("GET /posts/@id:[0-9]+ ajax", h.json)
//	}
//
// Tokens starting with @ capture one path segment. A trailing * captures
// the rest of the path and a :regex suffix constrains the segment. The
// numeric ttl enables the page cache for GET and HEAD requests.
//
// # Results
//
// Controllers return a [Result] that shapes the response:
//
//	func (h *BlogHandler) show(c stick.Context) (stick.Result, error) {
//	    post, err := h.repo.Find(c, c.Param("slug"))
//	    if err != nil {
//	        return nil, stick.ErrNotFound("No such post")
//	    }
//	    return stick.JSON(post), nil
//	}
//
// Returning an error renders an error page once. Errors raised while that
// page renders are fatal for the request.
//
// # Events
//
// Listeners observe or take over dispatch phases. Returning [ErrStop]
// ends the phase:
//
//	app.On(stick.EventBeforeRoute, func(c stick.Context) (any, error) {
//	    if c.Header("X-Api-Key") == "" {
//	        c.SetStatus(401)
//	        return nil, stick.ErrStop
//	    }
//	    return nil, nil
//	})
//
// # Configuration
//
// INI and YAML files populate the hive and declare routes, redirects,
// controllers and REST resources by name:
//
//	[routes]
//	GET home / = Home.index
//
//	[redirects]
//	GET /start = home
//
// # Shutdown
//
// Run handles SIGINT/SIGTERM for graceful shutdown.
// Register cleanup functions with ShutdownHook:
//
//	app.Run(":8080",
//	    stick.ShutdownHook(func(ctx context.Context) error {
//	        return pool.Close()
//	    }),
//	)
package stick
