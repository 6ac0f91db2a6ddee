package logger

import (
	"io"
	"log/slog"
)

// NewNope creates a logger that discards everything. It is the default
// when an App is built without WithLogger.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewBuffer creates a text logger at debug level writing to w, for tests.
func NewBuffer(w io.Writer) *slog.Logger {
	return NewWithConfig(Config{Output: w, Format: FormatText, Level: slog.LevelDebug})
}
