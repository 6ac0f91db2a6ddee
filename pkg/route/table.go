package route

import (
	"maps"
	"net/http"
	"slices"
)

// Binding is what a (pattern, mode, verb) triple resolves to.
type Binding[H any] struct {
	Handler H
	Alias   string
	TTL     int
}

// Route is one flattened row of the table, used for listing.
type Route[H any] struct {
	Binding[H]
	Pattern string
	Mode    Mode
	Verb    string
}

// Status is the outcome of a lookup.
type Status int

const (
	// NotFound means no pattern matched the path.
	NotFound Status = iota
	// Matched means a binding was found for the verb and mode.
	Matched
	// MethodNotAllowed means a pattern matched but the verb is not bound,
	// or the request is a CORS pre-flight.
	MethodNotAllowed
	// BadRequest means a pattern matched but has no binding for the mode.
	BadRequest
)

// Query describes the request being routed.
type Query struct {
	Path      string
	Verb      string
	Mode      Mode
	Caseless  bool
	Preflight bool
}

// Result is the lookup outcome. Allowed lists the verbs bound for the
// request mode when Status is MethodNotAllowed.
type Result[H any] struct {
	Binding[H]
	Params  Params
	Pattern string
	Allowed []string
	Status  Status
}

type entry[H any] struct {
	pattern *Pattern
	modes   map[Mode]map[string]Binding[H]
}

// Table maps compiled patterns to mode and verb indexed bindings.
// Patterns are kept in registration order; the first match wins.
// A Table is populated during bootstrap and read concurrently afterwards.
type Table[H any] struct {
	patterns map[string]*entry[H]
	aliases  map[string]string
	order    []*entry[H]
}

// NewTable creates an empty route table.
func NewTable[H any]() *Table[H] {
	return &Table[H]{
		patterns: make(map[string]*entry[H]),
		aliases:  make(map[string]string),
	}
}

// Route parses spec and registers h under it.
func (t *Table[H]) Route(spec string, h H) error {
	s, err := ParseSpec(spec)
	if err != nil {
		return err
	}
	return t.Add(s, h)
}

// Add registers h for every verb of s. Without an explicit pattern the
// alias must already be known and its pattern is reused.
func (t *Table[H]) Add(s Spec, h H) error {
	pattern := s.Pattern
	if pattern == "" {
		p, ok := t.aliases[s.Alias]
		if !ok {
			return configError(ErrUnknownAlias, s.String(), s.Alias)
		}
		pattern = p
	}

	e, ok := t.patterns[pattern]
	if !ok {
		compiled, err := Compile(pattern)
		if err != nil {
			return err
		}
		e = &entry[H]{pattern: compiled, modes: make(map[Mode]map[string]Binding[H])}
		t.patterns[pattern] = e
		t.order = append(t.order, e)
	}

	mode := s.Mode
	if mode == "" {
		mode = ModeAll
	}
	verbs, ok := e.modes[mode]
	if !ok {
		verbs = make(map[string]Binding[H])
		e.modes[mode] = verbs
	}

	b := Binding[H]{Handler: h, Alias: s.Alias, TTL: s.TTL}
	for _, v := range s.Verbs {
		verbs[v] = b
	}

	if s.Alias != "" {
		t.aliases[s.Alias] = pattern
	}

	return nil
}

// Len returns the number of registered patterns.
func (t *Table[H]) Len() int {
	return len(t.order)
}

// Alias returns the pattern registered for alias.
func (t *Table[H]) Alias(alias string) (string, bool) {
	p, ok := t.aliases[alias]
	return p, ok
}

// Build renders the URL path for alias with params substituted.
func (t *Table[H]) Build(alias string, params map[string]any) (string, error) {
	pattern, ok := t.aliases[alias]
	if !ok {
		return "", configError(ErrUnknownAlias, alias, "")
	}
	return t.patterns[pattern].pattern.Build(params)
}

// Lookup finds the binding for q. Patterns are tried in registration
// order; the first structural match decides the outcome.
func (t *Table[H]) Lookup(q Query) Result[H] {
	for _, e := range t.order {
		params, ok := e.pattern.Match(q.Path, q.Caseless)
		if !ok {
			continue
		}

		res := Result[H]{Pattern: e.pattern.Source(), Params: params}

		buckets := make([]map[string]Binding[H], 0, 2)
		if verbs := e.modes[q.Mode]; q.Mode != ModeAll && len(verbs) > 0 {
			buckets = append(buckets, verbs)
		}
		if verbs := e.modes[ModeAll]; len(verbs) > 0 {
			buckets = append(buckets, verbs)
		}
		if len(buckets) == 0 {
			res.Status = BadRequest
			return res
		}

		if !q.Preflight {
			for _, verbs := range buckets {
				if b, ok := lookupVerb(verbs, q.Verb); ok {
					res.Binding = b
					res.Status = Matched
					return res
				}
			}
		}

		allowed := make(map[string]struct{})
		for _, verbs := range buckets {
			for v := range verbs {
				allowed[v] = struct{}{}
			}
		}
		res.Status = MethodNotAllowed
		res.Allowed = slices.Sorted(maps.Keys(allowed))
		return res
	}

	return Result[H]{Status: NotFound}
}

// lookupVerb finds the binding for verb. HEAD falls back to GET.
func lookupVerb[H any](verbs map[string]Binding[H], verb string) (Binding[H], bool) {
	b, ok := verbs[verb]
	if !ok && verb == http.MethodHead {
		b, ok = verbs[http.MethodGet]
	}
	return b, ok
}

// Routes lists every binding in registration order.
func (t *Table[H]) Routes() []Route[H] {
	var out []Route[H]
	for _, e := range t.order {
		for _, mode := range []Mode{ModeAll, ModeSync, ModeAjax, ModeCLI} {
			verbs := e.modes[mode]
			for _, v := range slices.Sorted(maps.Keys(verbs)) {
				out = append(out, Route[H]{
					Binding: verbs[v],
					Pattern: e.pattern.Source(),
					Mode:    mode,
					Verb:    v,
				})
			}
		}
	}
	return out
}
