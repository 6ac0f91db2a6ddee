package redis

import (
	"context"
	"io"
)

// Shutdown returns a hook that closes the Redis client.
//
// Example:
//
//	err := app.Run(":8080", stick.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
