package route

import (
	"errors"
	"fmt"
)

// Sentinel errors for route configuration.
var (
	// ErrMalformedSpec is returned when a route spec does not follow the grammar.
	ErrMalformedSpec = errors.New("route: malformed spec")

	// ErrMalformedPattern is returned when a path pattern cannot be compiled.
	ErrMalformedPattern = errors.New("route: malformed pattern")

	// ErrUnknownAlias is returned when a spec or URL build names an unregistered alias.
	ErrUnknownAlias = errors.New("route: unknown alias")

	// ErrMissingParam is returned when a URL build lacks a placeholder value.
	ErrMissingParam = errors.New("route: missing parameter")
)

// ConfigError describes a route registration or URL build failure.
// Configuration errors are not recoverable; they surface during startup.
type ConfigError struct {
	Err    error
	Input  string
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Input)
	}
	return fmt.Sprintf("%v: %s in %q", e.Err, e.Detail, e.Input)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(err error, input, detail string) *ConfigError {
	return &ConfigError{Err: err, Input: input, Detail: detail}
}
