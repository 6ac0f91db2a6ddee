package route

import (
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// Shorthand placeholder classes accepted after "@name:".
var classes = map[string]string{
	"digit": `[0-9]+`,
	"alpha": `[A-Za-z]+`,
	"alnum": `[A-Za-z0-9]+`,
	"word":  `\w+`,
	"lower": `[a-z]+`,
	"upper": `[A-Z]+`,
}

const defaultClass = `[^/]+`

// Params holds the named captures of a match. Values are strings, except
// the catch-all capture which is a []string of path segments.
type Params map[string]any

// String returns a single-segment parameter, or "" when absent.
// A catch-all parameter is joined back with "/".
func (p Params) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "/")
	}
	return ""
}

// Strings returns a catch-all parameter. A single-segment parameter is
// returned as a one-element slice.
func (p Params) Strings(name string) []string {
	switch v := p[name].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}

type segment struct {
	literal  string
	name     string
	class    string
	catchAll bool
}

// Pattern is a compiled path template with @name, @name:class and
// @name* placeholders.
type Pattern struct {
	source   string
	expr     string
	catchAll string
	params   []string
	segments []segment

	once     sync.Once
	re       *regexp.Regexp
	foldOnce sync.Once
	fold     *regexp.Regexp
}

// Compile parses a path template. The compiled regular expressions are
// built lazily, once per case policy.
func Compile(src string) (*Pattern, error) {
	p := &Pattern{source: src}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); {
		if src[i] != '@' {
			lit.WriteByte(src[i])
			i++
			continue
		}

		j := i + 1
		for j < len(src) && isNameByte(src[j], j == i+1) {
			j++
		}
		if j == i+1 {
			return nil, configError(ErrMalformedPattern, src, "placeholder without name")
		}

		seg := segment{name: src[i+1 : j], class: defaultClass}
		if slices.Contains(p.params, seg.name) {
			return nil, configError(ErrMalformedPattern, src, "duplicate placeholder @"+seg.name)
		}

		switch {
		case j < len(src) && src[j] == '*':
			j++
			if j != len(src) {
				return nil, configError(ErrMalformedPattern, src, "catch-all must be last")
			}
			seg.catchAll = true
			seg.class = `.*`
			p.catchAll = seg.name

		case j < len(src) && src[j] == ':':
			class, next, err := readClass(src, j+1)
			if err != nil {
				return nil, err
			}
			seg.class = class
			j = next
		}

		flush()
		p.segments = append(p.segments, seg)
		p.params = append(p.params, seg.name)
		i = j
	}
	flush()

	var expr strings.Builder
	expr.WriteByte('^')
	for _, s := range p.segments {
		if s.name == "" {
			expr.WriteString(regexp.QuoteMeta(s.literal))
			continue
		}
		expr.WriteString("(?P<" + s.name + ">" + s.class + ")")
	}
	expr.WriteByte('$')
	p.expr = expr.String()

	if _, err := regexp.Compile(p.expr); err != nil {
		return nil, configError(ErrMalformedPattern, src, err.Error())
	}

	return p, nil
}

// readClass reads the placeholder class starting at i: either a
// parenthesized expression (which may contain '/') or a token running
// to the next '/'.
func readClass(src string, i int) (string, int, error) {
	if i < len(src) && src[i] == '(' {
		depth := 0
		for j := i; j < len(src); j++ {
			switch src[j] {
			case '\\':
				j++
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return "(?:" + src[i+1:j] + ")", j + 1, nil
				}
			}
		}
		return "", 0, configError(ErrMalformedPattern, src, "unbalanced parenthesis")
	}

	j := i
	for j < len(src) && src[j] != '/' {
		j++
	}
	token := src[i:j]
	if token == "" {
		return "", 0, configError(ErrMalformedPattern, src, "empty placeholder class")
	}
	if class, ok := classes[token]; ok {
		return class, j, nil
	}
	return "(?:" + token + ")", j, nil
}

func isNameByte(b byte, first bool) bool {
	switch {
	case b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z'):
		return true
	case !first && b >= '0' && b <= '9':
		return true
	}
	return false
}

// Source returns the template the pattern was compiled from.
func (p *Pattern) Source() string {
	return p.source
}

// Params returns the declared placeholder names in order.
func (p *Pattern) Params() []string {
	return slices.Clone(p.params)
}

// CatchAll returns the catch-all placeholder name, or "".
func (p *Pattern) CatchAll() string {
	return p.catchAll
}

// Match matches path against the pattern. Only named captures are
// returned; the catch-all capture is split on "/".
func (p *Pattern) Match(path string, caseless bool) (Params, bool) {
	if len(p.params) == 0 {
		if caseless {
			return Params{}, strings.EqualFold(p.source, path)
		}
		return Params{}, p.source == path
	}

	m := p.regexp(caseless).FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	params := make(Params, len(p.params))
	for i, name := range p.regexp(caseless).SubexpNames() {
		if name == "" {
			continue
		}
		if name == p.catchAll {
			if m[i] == "" {
				params[name] = []string{}
			} else {
				params[name] = strings.Split(m[i], "/")
			}
			continue
		}
		params[name] = m[i]
	}
	return params, true
}

func (p *Pattern) regexp(caseless bool) *regexp.Regexp {
	if caseless {
		p.foldOnce.Do(func() { p.fold = regexp.MustCompile("(?i)" + p.expr) })
		return p.fold
	}
	p.once.Do(func() { p.re = regexp.MustCompile(p.expr) })
	return p.re
}

// Build substitutes params into the template. Every placeholder must have
// a value; catch-all values may be a list of segments.
func (p *Pattern) Build(params map[string]any) (string, error) {
	var b strings.Builder
	for _, s := range p.segments {
		if s.name == "" {
			b.WriteString(s.literal)
			continue
		}

		v, ok := params[s.name]
		if !ok || v == nil {
			return "", configError(ErrMissingParam, p.source, "@"+s.name)
		}

		if s.catchAll {
			parts, err := cast.ToStringSliceE(v)
			if err != nil || isScalar(v) {
				parts = strings.Split(cast.ToString(v), "/")
			}
			for i, part := range parts {
				if i > 0 {
					b.WriteByte('/')
				}
				b.WriteString(url.PathEscape(part))
			}
			continue
		}

		str, err := cast.ToStringE(v)
		if err != nil {
			return "", configError(ErrMissingParam, p.source, "@"+s.name+" is not a scalar")
		}
		b.WriteString(url.PathEscape(str))
	}
	return b.String(), nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case []string, []any:
		return false
	}
	return true
}
