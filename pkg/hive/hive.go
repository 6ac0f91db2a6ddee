package hive

import (
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// Hive is a nested key-value store addressed by dotted paths.
//
// Top-level keys passed to New are framework-reserved: Remove on them
// restores the value captured at construction instead of deleting it.
// A Hive is not safe for concurrent writers; each request works on its
// own Fork.
type Hive struct {
	data     map[string]any
	defaults map[string]any
}

// New creates a store seeded with defaults. Every top-level key of
// defaults becomes reserved.
func New(defaults map[string]any) *Hive {
	d := make(map[string]any, len(defaults))
	for k, v := range defaults {
		d[k] = normalize(v)
	}
	return &Hive{
		data:     cloneMap(d),
		defaults: d,
	}
}

// Fork returns an independent deep copy sharing the same reserved defaults.
func (h *Hive) Fork() *Hive {
	return &Hive{
		data:     cloneMap(h.data),
		defaults: h.defaults,
	}
}

// Ref resolves path into a handle. With create set, missing intermediate
// containers are created on the way to the leaf.
func (h *Hive) Ref(path string, create bool) *Ref {
	return resolve(h.data, path, create)
}

// Has reports whether every segment of path resolves without creating anything.
func (h *Hive) Has(path string) bool {
	return h.Ref(path, false).Found()
}

// Get returns the value at path, or def when any segment is absent.
func (h *Hive) Get(path string, def any) any {
	ref := h.Ref(path, false)
	if !ref.Found() {
		return def
	}
	return ref.Get()
}

// Set assigns value at path, creating intermediate maps as needed.
func (h *Hive) Set(path string, value any) {
	h.Ref(path, true).Set(value)
}

// Remove restores reserved keys to their initial value and deletes user keys.
func (h *Hive) Remove(path string) {
	if h.IsReserved(path) {
		h.ResetToDefault(path)
		return
	}
	h.Delete(path)
}

// IsReserved reports whether path has an initial value captured at construction.
func (h *Hive) IsReserved(path string) bool {
	return resolve(h.defaults, path, false).Found()
}

// ResetToDefault restores the initial value of a reserved path.
// It returns false when path is not reserved.
func (h *Hive) ResetToDefault(path string) bool {
	ref := resolve(h.defaults, path, false)
	if !ref.Found() {
		return false
	}
	h.Set(path, cloneValue(ref.Get()))
	return true
}

// Delete removes the leaf at path regardless of reservation.
func (h *Hive) Delete(path string) {
	h.Ref(path, false).Delete()
}

// Merge sets every entry of values below prefix.
func (h *Hive) Merge(prefix string, values map[string]any) {
	for k, v := range values {
		if prefix != "" {
			k = prefix + "." + k
		}
		h.Set(k, v)
	}
}

// Keys returns the sorted top-level keys.
func (h *Hive) Keys() []string {
	return slices.Sorted(maps.Keys(h.data))
}

// All returns a deep copy of the whole store.
func (h *Hive) All() map[string]any {
	return cloneMap(h.data)
}

func (h *Hive) String(path string) string {
	return cast.ToString(h.Get(path, ""))
}

func (h *Hive) Int(path string) int {
	return cast.ToInt(h.Get(path, 0))
}

func (h *Hive) Bool(path string) bool {
	return cast.ToBool(h.Get(path, false))
}

// Strings reads a list value. A comma separated string is split.
func (h *Hive) Strings(path string) []string {
	v := h.Get(path, nil)
	if s, ok := v.(string); ok {
		if s == "" {
			return nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return cast.ToStringSlice(v)
}

// StringMap reads a mapping value with stringified leaves.
func (h *Hive) StringMap(path string) map[string]string {
	return cast.ToStringMapString(h.Get(path, nil))
}

// Value returns the value at path converted to T.
// The second result is false when the path is absent or of another type.
func Value[T any](h *Hive, path string) (T, bool) {
	var zero T
	ref := h.Ref(path, false)
	if !ref.Found() {
		return zero, false
	}
	v, ok := ref.Get().(T)
	return v, ok
}

// normalize converts typed maps and slices into the two container shapes
// the walker understands.
func normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int, int64, float64, []byte:
		return v
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return m
	case reflect.Slice, reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = normalize(rv.Index(i).Interface())
		}
		return s
	}
	return v
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
