// Package redis opens go-redis clients with pooling defaults, startup
// retries, a health check and a shutdown hook.
//
// Two entry points exist. Open takes a redis:// or rediss:// URL:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//	    redis.WithPoolSize(20),
//	)
//
// OpenAddr takes the address and database index separately, which is
// the shape of a page cache DSN such as "redis=localhost:6379:2":
//
//	client, err := redis.OpenAddr(ctx, "localhost:6379", 2,
//	    redis.WithRetry(1, 0),
//	)
//
// Both ping the server before returning. Failed attempts are retried
// with a linearly growing delay (see WithRetry) and the context bounds
// the whole sequence.
//
// Wire the client into the application lifecycle:
//
//	app := stick.New(
//	    stick.WithHealthChecks(
//	        stick.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	    ),
//	)
//	err = app.Run(":8080", stick.ShutdownHook(redis.Shutdown(client)))
package redis
