package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/pkg/cache"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// --- Redis ---

func TestRedis(t *testing.T) {
	t.Parallel()

	t.Run("contract", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		c := cache.NewRedis[string](client, nil)

		contract(t, c, mr.FastForward)
	})

	t.Run("prefix scopes keys and clear", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		ctx := context.Background()

		require.NoError(t, mr.Set("other", "keep"))

		c := cache.NewRedis[string](client, nil, cache.WithPrefix("page"))
		require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
		require.True(t, mr.Exists("page:a"))

		require.NoError(t, c.Clear(ctx))
		require.False(t, mr.Exists("page:a"))
		require.True(t, mr.Exists("other"))
	})

	t.Run("default ttl applies on zero", func(t *testing.T) {
		t.Parallel()

		mr, client := newMiniredis(t)
		c := cache.NewRedis[string](client, nil, cache.WithRedisDefaultTTL(time.Minute))

		require.NoError(t, c.Set(context.Background(), "k", "v", 0))
		require.Equal(t, time.Minute, mr.TTL("k"))
	})

	t.Run("owned client is closed", func(t *testing.T) {
		t.Parallel()

		_, client := newMiniredis(t)
		c := cache.NewRedis[string](client, nil, cache.WithOwnedClient())

		require.NoError(t, c.Close())
		require.Error(t, client.Ping(context.Background()).Err())
	})
}
