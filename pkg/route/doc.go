// Package route implements the route table and matcher.
//
// Routes are declared with a compact spec:
//
//	VERB[|VERB...] [alias] [/pattern] [ajax|cli|sync] [ttl]
//
// Fields after the verbs are recognized by shape: a pattern starts with
// "/", a mode is one of the three literals, a TTL is all digits and
// anything else is an alias. Without a pattern, the alias must already
// be registered and its pattern is reused.
//
//	t := route.NewTable[http.HandlerFunc]()
//	_ = t.Route("GET home /", home)
//	_ = t.Route("GET|HEAD blog_item /blog/@id:digit 60", showPost)
//	_ = t.Route("POST blog_item ajax", updatePost)
//	_ = t.Route("GET /files/@path*", serveFile)
//
// Placeholders:
//
//   - @name matches one path segment
//   - @name:class uses a shorthand class (digit, alpha, alnum, word,
//     lower, upper) or a raw expression; @name:(...) may contain "/"
//   - @name* captures the rest of the path as a list of segments
//
// Lookup walks patterns in registration order and stops at the first
// structural match. A match without a binding for the request verb is a
// method mismatch, not a miss:
//
//	res := t.Lookup(route.Query{Path: "/blog/7", Verb: "DELETE", Mode: route.ModeSync})
//	res.Status  // route.MethodNotAllowed
//	res.Allowed // [GET HEAD]
//
// Aliases render back into URLs:
//
//	t.Build("blog_item", map[string]any{"id": 7}) // "/blog/7"
package route
