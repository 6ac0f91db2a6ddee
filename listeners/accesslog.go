package listeners

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/eghojansu/stick/internal"
)

// AccessLogConfig configures the access log listener.
type AccessLogConfig struct {
	Logger *slog.Logger // Defaults to the application logger
	Skip   []string     // Paths that are never logged
	Level  slog.Level   // Level for 1xx-3xx responses
}

// AccessLogOption configures AccessLogConfig.
type AccessLogOption func(*AccessLogConfig)

// WithAccessLogger writes entries to l instead of the application logger.
func WithAccessLogger(l *slog.Logger) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Logger = l
	}
}

// WithAccessLogLevel sets the level of successful requests.
func WithAccessLogLevel(level slog.Level) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Level = level
	}
}

// WithAccessLogSkip excludes exact paths, such as health checks, from the log.
func WithAccessLogSkip(paths ...string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Skip = append(cfg.Skip, paths...)
	}
}

// AccessLog returns a shutdown listener that writes one entry per request.
// Client errors are logged at warn and server errors at error level.
//
//	app := stick.New(
//	    stick.WithListener(stick.EventShutdown, listeners.AccessLog()),
//	)
func AccessLog(opts ...AccessLogOption) internal.Listener {
	cfg := &AccessLogConfig{Level: slog.LevelInfo}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c internal.Context) (any, error) {
		if slices.Contains(cfg.Skip, c.Path()) {
			return nil, nil
		}

		log := cfg.Logger
		if log == nil {
			log = c.Logger()
		}

		status := c.Status()
		level := cfg.Level
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("verb", c.Verb()),
			slog.String("uri", c.URI()),
			slog.Int("status", status),
			slog.Int("size", c.Response().Size()),
			slog.String("mode", string(c.Mode())),
			slog.String("ip", c.IP()),
		}
		if started, ok := c.Get("TIME", nil).(time.Time); ok {
			attrs = append(attrs, slog.Duration("duration", time.Since(started)))
		}
		if pattern := c.Pattern(); pattern != "" {
			attrs = append(attrs, slog.String("pattern", pattern))
		}
		if c.Response().Header().Get("X-Cache") == "HIT" {
			attrs = append(attrs, slog.Bool("cached", true))
		}

		// The request context may already be cancelled by the client.
		log.LogAttrs(context.WithoutCancel(c), level, "request", attrs...)
		return nil, nil
	}
}
