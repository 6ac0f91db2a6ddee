package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/eghojansu/stick/pkg/redis"
)

// Engine names recognized in a DSN.
const (
	EngineMemory   = "memory"
	EngineRedis    = "redis"
	EngineMemcache = "memcache"
	EngineFile     = "folder"
)

// DSN is a parsed "<engine>[=<connection>]" string.
type DSN struct {
	Engine     string
	Connection string
}

// ParseDSN normalizes a DSN. In-process engine aliases map to memory,
// memcached maps to memcache, and an empty or "fallback" DSN maps to
// the filesystem.
func ParseDSN(s string) DSN {
	engine, conn, _ := strings.Cut(strings.TrimSpace(s), "=")
	engine = strings.ToLower(strings.TrimSpace(engine))

	switch engine {
	case "apc", "apcu", "memory", "wincache", "xcache":
		engine = EngineMemory
	case "memcached":
		engine = EngineMemcache
	case "", "fallback", "file", "folder":
		engine = EngineFile
	}
	return DSN{Engine: engine, Connection: strings.TrimSpace(conn)}
}

func (d DSN) String() string {
	if d.Connection == "" {
		return d.Engine
	}
	return d.Engine + "=" + d.Connection
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	logger     *slog.Logger
	now        func() time.Time
	dir        string
	prefix     string
	defaultTTL time.Duration
	dial       time.Duration
}

// WithFallbackDir sets the directory of the filesystem backend.
// Default: "<tmp>/stick-cache".
func WithFallbackDir(dir string) OpenOption {
	return func(o *openOptions) {
		if dir != "" {
			o.dir = dir
		}
	}
}

// WithLogger sets the logger used to report backend fallbacks.
func WithLogger(l *slog.Logger) OpenOption {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNamespace prefixes keys on shared external backends.
func WithNamespace(ns string) OpenOption {
	return func(o *openOptions) {
		o.prefix = ns
	}
}

// WithOpenClock overrides the time source of in-process and file backends.
func WithOpenClock(now func() time.Time) OpenOption {
	return func(o *openOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDialTimeout bounds how long external backends may take to answer
// the initial ping. Default: 2 seconds.
func WithDialTimeout(d time.Duration) OpenOption {
	return func(o *openOptions) {
		if d > 0 {
			o.dial = d
		}
	}
}

// Open selects and connects a backend from dsn:
//
//	apc | apcu | memory          in-process LRU cache
//	redis=host:port[:db]         Redis
//	memcache[d]=host:port,...    Memcached
//	"" | fallback | folder=dir   one file per key
//
// When an external backend cannot be reached, Open logs a warning and
// falls back to the filesystem backend. An error is returned only when
// the DSN is unknown or the filesystem backend itself fails.
func Open[V any](ctx context.Context, dsn string, opts ...OpenOption) (Cache[V], DSN, error) {
	o := &openOptions{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		dir:        filepath.Join(os.TempDir(), "stick-cache"),
		defaultTTL: time.Hour,
		dial:       2 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	d := ParseDSN(dsn)

	var (
		c   Cache[V]
		err error
	)
	switch d.Engine {
	case EngineMemory:
		return NewMemory[V](WithClock(o.now), WithDefaultTTL(o.defaultTTL)), d, nil
	case EngineRedis:
		c, err = openRedis[V](ctx, d.Connection, o)
	case EngineMemcache:
		c, err = openMemcache[V](d.Connection, o)
	case EngineFile:
		if d.Connection != "" {
			o.dir = d.Connection
		}
		c, err = NewFile[V](o.dir, nil, WithFileClock(o.now), WithFileDefaultTTL(o.defaultTTL))
		return c, d, err
	default:
		return nil, d, fmt.Errorf("%w: unknown engine %q", ErrInvalidDSN, d.Engine)
	}

	if err == nil {
		return c, d, nil
	}

	o.logger.WarnContext(ctx, "cache backend unavailable, using filesystem",
		slog.String("dsn", d.String()),
		slog.String("dir", o.dir),
		slog.String("error", err.Error()),
	)

	fallback := DSN{Engine: EngineFile, Connection: o.dir}
	c, err = NewFile[V](o.dir, nil, WithFileClock(o.now), WithFileDefaultTTL(o.defaultTTL))
	return c, fallback, err
}

// openRedis parses "host:port[:db]".
func openRedis[V any](ctx context.Context, conn string, o *openOptions) (Cache[V], error) {
	parts := strings.Split(conn, ":")
	host, port, db := "localhost", "6379", 0
	if len(parts) > 0 && parts[0] != "" {
		host = parts[0]
	}
	if len(parts) > 1 && parts[1] != "" {
		port = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("%w: redis database %q", ErrInvalidDSN, parts[2])
		}
		db = n
	}

	ctx, cancel := context.WithTimeout(ctx, o.dial)
	defer cancel()

	client, err := redis.OpenAddr(ctx, host+":"+port, db,
		redis.WithRetry(1, 0),
		redis.WithDialTimeout(o.dial),
	)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	return NewRedis[V](client, nil,
		WithPrefix(o.prefix),
		WithRedisDefaultTTL(o.defaultTTL),
		WithOwnedClient(),
	), nil
}

// openMemcache parses a comma separated server list.
func openMemcache[V any](conn string, o *openOptions) (Cache[V], error) {
	var servers []string
	for s := range strings.SplitSeq(conn, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}

	client := memcache.New(servers...)
	client.Timeout = o.dial
	if err := client.Ping(); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	return NewMemcache[V](client, nil,
		WithMemcachePrefix(o.prefix),
		WithMemcacheDefaultTTL(o.defaultTTL),
	), nil
}
