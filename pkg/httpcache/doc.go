// Package httpcache stores whole HTTP responses for replay.
//
// A response is keyed by [Key] (a digest of the verb and request URI) and
// held as an [Entry] in any [cache.Cache] backend through a [Store]:
//
//	store := httpcache.NewStore(backend)
//	key := httpcache.Key(r.Method, r.URL.RequestURI())
//
//	if e, ok, _ := store.Lookup(ctx, key); ok {
//	    if httpcache.NotModified(r.Header.Get("If-Modified-Since"), e.TTL, time.Now()) {
//	        w.WriteHeader(http.StatusNotModified)
//	        return
//	    }
//	    httpcache.CacheHeaders(w.Header(), e.Remaining(time.Now()), e.Created, time.Now())
//	    ...
//	}
//
// Responses that must not be cached get [NoCacheHeaders].
package httpcache
