package internal

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
)

// Sentinel errors for dispatch.
var (
	// ErrEncodeResult is returned when a JSON result cannot be serialized.
	ErrEncodeResult = errors.New("stick: failed to encode result")

	// ErrUnknownHandler is returned when a route names a handler that was
	// never registered.
	ErrUnknownHandler = errors.New("stick: unknown handler")

	// ErrRerouteLoop is returned when in-process reroutes nest too deeply.
	ErrRerouteLoop = errors.New("stick: reroute loop")

	// ErrMockSyntax is returned when a mock request line cannot be parsed.
	ErrMockSyntax = errors.New("stick: malformed mock request")

	// ErrConfigSection is returned for a malformed command section entry.
	ErrConfigSection = errors.New("stick: malformed config entry")
)

// codedMessage matches the "http:<code> <message>" convention that lets any
// error choose its response status.
var codedMessage = regexp.MustCompile(`^http:([1-5][0-9]{2})(?:\s+(.*))?$`)

// HTTPError represents an HTTP error with all data needed for rendering.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Prior is the error record that was current when this error was raised.
	Prior map[string]any

	// Message is the user-facing error message.
	Message string

	// Trace is the rendered call stack.
	Trace string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("HTTP %d (%s)", e.Code, e.StatusText())
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func WithTrace(trace string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Trace = trace
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// AsHTTPError extracts the HTTPError from an error chain.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// ParseHTTPError converts any error into an HTTPError. Errors already in
// the chain are returned as is; a message of the form "http:<code> text"
// becomes that status; everything else is a 500 whose message stays
// hidden outside debug mode.
func ParseHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	if httpErr := AsHTTPError(err); httpErr != nil {
		return httpErr
	}
	if m := codedMessage.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return NewHTTPError(code, m[2], WithError(err))
	}
	return NewHTTPError(http.StatusInternalServerError, "", WithError(err))
}

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
