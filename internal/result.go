package internal

import (
	"encoding/json"
	"errors"
)

// Result is what a controller hands back for response shaping.
// The set of variants is closed: Text, JSON, Map, List and Deferred.
type Result interface {
	apply(c Context) error
}

type textResult string

func (r textResult) apply(c Context) error {
	res := c.Response()
	if res.Header().Get("Content-Type") == "" {
		res.Header().Set("Content-Type", "text/html; charset="+c.Hive().String("ENCODING"))
	}
	_, err := res.WriteString(string(r))
	return err
}

type jsonResult struct{ v any }

func (r jsonResult) apply(c Context) error {
	data, err := json.Marshal(r.v)
	if err != nil {
		return errors.Join(ErrEncodeResult, err)
	}
	res := c.Response()
	res.Header().Set("Content-Type", "application/json")
	_, err = res.Write(data)
	return err
}

type deferredResult func(c Context) error

func (r deferredResult) apply(c Context) error {
	return r(c)
}

// Text writes s verbatim as the response body.
func Text(s string) Result {
	return textResult(s)
}

// JSON serializes v as the response body with Content-Type application/json.
func JSON(v any) Result {
	return jsonResult{v: v}
}

// Map is JSON for a keyed payload.
func Map(m map[string]any) Result {
	if m == nil {
		m = map[string]any{}
	}
	return jsonResult{v: m}
}

// List is JSON for a sequence payload.
func List(items ...any) Result {
	if items == nil {
		items = []any{}
	}
	return jsonResult{v: items}
}

// Deferred runs fn with the context after the controller returns, so
// response shaping can be composed outside the controller.
func Deferred(fn func(c Context) error) Result {
	return deferredResult(fn)
}
