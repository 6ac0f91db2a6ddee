package hive

import (
	"slices"
	"strconv"
	"strings"
)

// Ref is a resolved handle into the store.
// It keeps the container that holds the leaf, so a caller can read and
// later write through the same handle without walking the path again.
type Ref struct {
	get   func() any
	set   func(any)
	del   func()
	path  string
	found bool
}

// Found reports whether the leaf existed when the handle was resolved.
func (r *Ref) Found() bool {
	return r.found
}

// Path returns the dotted path the handle was resolved from.
func (r *Ref) Path() string {
	return r.path
}

// Get returns the leaf value, or nil when the leaf is absent.
func (r *Ref) Get() any {
	if r.get == nil {
		return nil
	}
	return r.get()
}

// Set assigns the leaf. It does nothing on a read-only handle whose
// path could not be resolved.
func (r *Ref) Set(v any) {
	if r.set == nil {
		return
	}
	r.set(normalize(v))
	r.found = true
}

// Delete removes the leaf from its container.
func (r *Ref) Delete() {
	if r.del == nil || !r.found {
		return
	}
	r.del()
	r.found = false
}

// resolve walks path from root. With create set, missing or non-container
// nodes on the way are replaced by empty maps; without it, the walk stops
// at the first absent segment and no structure is fabricated.
func resolve(root map[string]any, path string, create bool) *Ref {
	ref := &Ref{path: path}
	if path == "" {
		return ref
	}

	segments := strings.Split(path, ".")
	var node any = root
	assign := func(any) {}

	for i, seg := range segments {
		last := i == len(segments)-1

		switch cur := node.(type) {
		case map[string]any:
			m := cur
			if last {
				_, ref.found = m[seg]
				ref.get = func() any { return m[seg] }
				ref.set = func(v any) { m[seg] = v }
				ref.del = func() { delete(m, seg) }
				return ref
			}

			child, ok := m[seg]
			if !ok || !isContainer(child) {
				if !create {
					return ref
				}
				child = map[string]any{}
				m[seg] = child
			}
			assign = func(v any) { m[seg] = v }
			node = child

		case []any:
			idx, err := strconv.Atoi(seg)
			inRange := err == nil && idx >= 0 && idx < len(cur)

			if !inRange {
				if !create {
					return ref
				}
				if err != nil || idx < 0 {
					m := listToMap(cur)
					assign(m)
					// Re-run this segment against the converted map.
					return resolveFrom(ref, m, segments[i:], create)
				}
				grown := make([]any, idx+1)
				copy(grown, cur)
				assign(grown)
				cur = grown
			}

			s := cur
			if last {
				parent := assign
				ref.found = inRange
				ref.get = func() any { return s[idx] }
				ref.set = func(v any) { s[idx] = v }
				ref.del = func() { parent(withoutIndex(s, idx)) }
				return ref
			}

			child := s[idx]
			if !isContainer(child) {
				if !create {
					return ref
				}
				child = map[string]any{}
				s[idx] = child
			}
			assign = func(v any) { s[idx] = v }
			node = child

		default:
			return ref
		}
	}

	return ref
}

// resolveFrom continues a walk from an intermediate map.
func resolveFrom(ref *Ref, m map[string]any, rest []string, create bool) *Ref {
	sub := resolve(m, strings.Join(rest, "."), create)
	sub.path = ref.path
	return sub
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// withoutIndex drops element idx. Dropping the last element keeps a
// list; any other position turns the list into a map so the remaining
// elements keep their indexes.
func withoutIndex(s []any, idx int) any {
	if idx == len(s)-1 {
		return slices.Clone(s[:idx])
	}
	m := listToMap(s)
	delete(m, strconv.Itoa(idx))
	return m
}

func listToMap(s []any) map[string]any {
	m := make(map[string]any, len(s))
	for i, v := range s {
		m[strconv.Itoa(i)] = v
	}
	return m
}
