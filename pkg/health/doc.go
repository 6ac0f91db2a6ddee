// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] always answers OK. [ReadinessHandler] runs a set of
// named [Checks] concurrently and answers 503 when any of them fails:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "cache": app.CacheCheck(),
//	    "redis": redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Both handlers negotiate JSON through "?format=json" or an Accept header
// containing application/json, and plain text otherwise:
//
//	{"status":"unhealthy","checks":{"cache":{"status":"unhealthy","error":"...","elapsed":"1.2ms"}}}
//
// [Run] executes checks without HTTP, for command line probes.
package health
