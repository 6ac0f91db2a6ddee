package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/eghojansu/stick/pkg/health"
)

// ErrHealthcheckFailed is returned by the readiness check when Redis does
// not answer a PING.
var ErrHealthcheckFailed = errors.New("redis: healthcheck failed")

// Healthcheck returns a readiness check that pings client. A nil client
// always fails, so an instance whose Redis page cache never connected is
// reported as not ready.
//
// Example:
//
//	stick.WithHealthChecks(
//	    stick.WithReadinessCheck("cache", redis.Healthcheck(client)),
//	)
func Healthcheck(client redis.UniversalClient) health.CheckFunc {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
