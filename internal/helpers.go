package internal

import "github.com/spf13/cast"

// Scalar is the set of types the typed accessors convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the context value stored under key, or the zero
// value of T.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Value(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// HiveValue returns the hive value at path converted to T. Missing or
// unconvertible values yield the zero value.
func HiveValue[T Scalar](c Context, path string) T {
	v, _ := convert[T](c.Get(path, nil))
	return v
}

// Param returns a route parameter converted to T.
//
// Example:
//
//	id := stick.Param[int64](c, "id")
func Param[T Scalar](c Context, name string) T {
	v, _ := convert[T](c.Param(name))
	return v
}

// Query returns a query parameter converted to T.
func Query[T Scalar](c Context, name string) T {
	v, _ := convert[T](c.Query(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convert[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convert casts raw to T, reporting whether the conversion succeeded.
func convert[T Scalar](raw any) (T, bool) {
	var (
		zero T
		out  any
		err  error
	)
	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(raw)
	case int:
		out, err = cast.ToIntE(raw)
	case int64:
		out, err = cast.ToInt64E(raw)
	case float64:
		out, err = cast.ToFloat64E(raw)
	case bool:
		out, err = cast.ToBoolE(raw)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	v, ok := out.(T)
	return v, ok
}
