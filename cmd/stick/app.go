package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/eghojansu/stick"
	"github.com/eghojansu/stick/listeners"
	"github.com/eghojansu/stick/pkg/cache"
	"github.com/eghojansu/stick/pkg/config"
	"github.com/eghojansu/stick/pkg/logger"
	"github.com/eghojansu/stick/pkg/redis"
)

var envKeys = strings.NewReplacer("-", "_", ".", "_")

// newLogger builds the process logger. Records also go to Sentry when a
// DSN is configured.
func newLogger(v *viper.Viper) *slog.Logger {
	local := logger.Config{
		Output: os.Stderr,
		Format: logger.Format(v.GetString("log-format")),
		Level:  logger.LevelForDebug(v.GetInt("debug")),
	}

	dsn := v.GetString("sentry-dsn")
	if dsn == "" {
		dsn = os.Getenv("SENTRY_DSN")
	}

	return logger.NewWithSentry(logger.SentryConfig{
		DSN:         dsn,
		Environment: v.GetString("env"),
		Release:     Version,
		Local:       local,
	}, listeners.RequestIDExtractor())
}

// newApp assembles the application from flags, environment and the
// optional config file.
func newApp(v *viper.Viper, log *slog.Logger, extra ...stick.Option) (*stick.App, error) {
	opts := []stick.Option{
		stick.WithCustomLogger(log),
		stick.WithDebug(v.GetInt("debug")),
		stick.WithListener(stick.EventBoot, listeners.RequestID()),
		stick.WithListener(stick.EventShutdown, listeners.AccessLog(
			listeners.WithAccessLogger(log),
			listeners.WithAccessLogSkip("/favicon.ico"),
		)),
	}
	if dsn := v.GetString("cache"); dsn != "" {
		opts = append(opts, stick.WithCache(dsn))
	}
	opts = append(opts, extra...)

	app := stick.New(opts...)
	registerDemo(app)

	if path := v.GetString("config"); path != "" {
		return app, app.Config(path)
	}
	return app, app.Apply(demoRoutes)
}

// demoRoutes are served when no config file is given.
var demoRoutes = []config.Directive{
	{Section: "routes", Key: "GET|HEAD home /", Value: "Home.index"},
	{Section: "routes", Key: "GET hello /hello/@name", Value: "Home.hello"},
	{Section: "routes", Key: "GET /clock ajax", Value: "Home.clock"},
	{Section: "routes", Key: "POST /echo", Value: "Home.echo"},
}

// registerDemo installs the handlers a config file can refer to by name.
func registerDemo(app *stick.App) {
	app.Handle("Home.index", func(c stick.Context) (stick.Result, error) {
		name := stick.HiveValue[string](c, "PACKAGE")
		if name == "" {
			name = "stick"
		}
		return stick.Text("Welcome to " + name), nil
	})
	app.Handle("Home.hello", func(c stick.Context) (stick.Result, error) {
		return stick.Text("Hello, " + c.Param("name")), nil
	})
	app.Handle("Home.clock", func(c stick.Context) (stick.Result, error) {
		return stick.Map(map[string]any{"now": time.Now().UTC().Format(time.RFC3339)}), nil
	})
	app.Handle("Home.echo", func(c stick.Context) (stick.Result, error) {
		return stick.Text(string(c.Body())), nil
	})
}

// redisAddr extracts address and database from a "redis=host:port[:db]"
// cache DSN. ok is false for any other engine.
func redisAddr(dsn string) (addr string, db int, ok bool) {
	d := cache.ParseDSN(dsn)
	if d.Engine != cache.EngineRedis {
		return "", 0, false
	}

	parts := strings.Split(d.Connection, ":")
	host, port := "localhost", "6379"
	if len(parts) > 0 && parts[0] != "" {
		host = parts[0]
	}
	if len(parts) > 1 && parts[1] != "" {
		port = parts[1]
	}
	if len(parts) > 2 {
		db, _ = strconv.Atoi(parts[2])
	}
	return host + ":" + port, db, true
}

// openCacheClient connects to the Redis page cache so readiness can report
// on it. It returns nil when the cache is not Redis.
func openCacheClient(ctx context.Context, dsn string) (goredis.UniversalClient, error) {
	addr, db, ok := redisAddr(dsn)
	if !ok {
		return nil, nil
	}

	client, err := redis.OpenAddr(ctx, addr, db, redis.WithRetry(3, time.Second))
	if err != nil {
		return nil, fmt.Errorf("cache client: %w", err)
	}
	return client, nil
}
