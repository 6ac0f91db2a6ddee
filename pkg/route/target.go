package route

import (
	"strconv"
	"strings"
)

// Target is a parsed "alias(k=v,...)" or path reference, optionally
// followed by a query string.
type Target struct {
	Params map[string]any
	Name   string
	Query  string
	Path   bool
}

// ParseTarget splits a reference such as "blog_item(item=1)?page=2" or
// "/blog/1?page=2". A reference starting with "/" is a path; anything else
// names an alias.
func ParseTarget(s string) (Target, error) {
	var t Target
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s, t.Query = s[:i], s[i+1:]
	}

	if strings.HasPrefix(s, "/") {
		t.Name, t.Path = s, true
		return t, nil
	}

	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return Target{}, configError(ErrMalformedSpec, s, "unclosed argument list")
		}
		t.Params = ParseArgs(s[i+1 : len(s)-1])
		s = s[:i]
	}

	if !isAlias(s) {
		return Target{}, configError(ErrMalformedSpec, s, "invalid alias")
	}
	t.Name = s
	return t, nil
}

// ParseArgs parses "k=v,k2=v2". A bare value without "=" is stored under
// its own position index.
func ParseArgs(s string) map[string]any {
	out := make(map[string]any)
	if strings.TrimSpace(s) == "" {
		return out
	}
	for i, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			out[strconv.Itoa(i)] = strings.TrimSpace(pair)
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// Resolve renders t into a request URI using the alias table.
func Resolve[H any](t *Table[H], target Target) (string, error) {
	path := target.Name
	if !target.Path {
		built, err := t.Build(target.Name, target.Params)
		if err != nil {
			return "", err
		}
		path = built
	}
	if target.Query != "" {
		path += "?" + target.Query
	}
	return path, nil
}
