package listeners

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eghojansu/stick/internal"
	"github.com/eghojansu/stick/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID listener.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name
	Headers        []string      // Headers to check for existing ID (in order)
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// NewRequestID returns a time-ordered UUID (version 7).
func NewRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RequestID returns a boot listener that assigns an ID to every request.
// An ID sent by the client is kept; otherwise one is generated. The ID is
// stored in the context and in the REQUEST_ID hive key, and echoed in a
// response header. Running on boot, it also tags error responses.
func RequestID(opts ...RequestIDOption) internal.Listener {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      NewRequestID,
		ResponseHeader: "X-Request-ID",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// First match wins to preserve upstream tracing IDs
	sources := make([]internal.ExtractorSource, len(cfg.Headers))
	for i, header := range cfg.Headers {
		sources[i] = internal.FromHeader(header)
	}
	incoming := internal.NewExtractor(sources...)

	return func(c internal.Context) (any, error) {
		reqID, ok := incoming.Extract(c)
		if !ok {
			reqID = cfg.Generator()
		}

		c.SetValue(requestIDKey{}, reqID)
		c.Set("REQUEST_ID", reqID)
		if cfg.ResponseHeader != "" {
			c.SetHeader(cfg.ResponseHeader, reqID)
		}
		return reqID, nil
	}
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor returns a ContextExtractor for use with WithLogger.
// Automatically adds "request_id" to all log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
