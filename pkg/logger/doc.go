// Package logger builds slog loggers with context extraction and optional
// Sentry reporting.
//
// A ContextExtractor pulls one attribute out of the record's context on
// every call, so request-scoped values such as the request ID land in each
// line without threading them through call sites:
//
//	log := logger.New(listeners.RequestIDExtractor())
//	log.InfoContext(ctx, "dispatched", slog.Int("status", 200))
//	// {"level":"INFO","msg":"dispatched","status":200,"request_id":"..."}
//
// NewWithConfig selects writer, format and level:
//
//	log := logger.NewWithConfig(logger.Config{
//		Format: logger.FormatText,
//		Level:  logger.LevelForDebug(app.Hive().Int("DEBUG")),
//	})
//
// NewWithSentry fans records out to the local handler and Sentry. An empty
// DSN falls back to local logging only:
//
//	log := logger.NewWithSentry(logger.SentryConfig{
//		DSN:      os.Getenv("SENTRY_DSN"),
//		MinLevel: slog.LevelWarn,
//	})
//
// NewNope discards everything and is the App default.
package logger
