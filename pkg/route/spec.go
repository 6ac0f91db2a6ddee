package route

import (
	"slices"
	"strconv"
	"strings"
)

// Mode is the request classification used as a second routing dimension.
type Mode string

const (
	ModeAll  Mode = "all"
	ModeSync Mode = "sync"
	ModeAjax Mode = "ajax"
	ModeCLI  Mode = "cli"
)

// ParseMode converts a mode literal. The second result is false for
// anything other than ajax, cli or sync.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(s)) {
	case ModeSync:
		return ModeSync, true
	case ModeAjax:
		return ModeAjax, true
	case ModeCLI:
		return ModeCLI, true
	}
	return "", false
}

// Spec is a parsed route declaration:
//
//	VERB[|VERB...] [alias] [/pattern] [ajax|cli|sync] [ttl]
type Spec struct {
	Alias   string
	Pattern string
	Mode    Mode
	Verbs   []string
	TTL     int
}

// ParseSpec parses a route declaration. Fields after the verbs are
// recognized by shape, so their order does not matter.
func ParseSpec(s string) (Spec, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Spec{}, configError(ErrMalformedSpec, s, "empty spec")
	}

	spec := Spec{Mode: ModeAll}
	for v := range strings.SplitSeq(fields[0], "|") {
		if !isVerb(v) {
			return Spec{}, configError(ErrMalformedSpec, s, "invalid verb "+strconv.Quote(v))
		}
		v = strings.ToUpper(v)
		if !slices.Contains(spec.Verbs, v) {
			spec.Verbs = append(spec.Verbs, v)
		}
	}

	var seenMode, seenTTL bool
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "/"):
			if spec.Pattern != "" {
				return Spec{}, configError(ErrMalformedSpec, s, "duplicate pattern")
			}
			spec.Pattern = f

		case isDigits(f):
			if seenTTL {
				return Spec{}, configError(ErrMalformedSpec, s, "duplicate ttl")
			}
			ttl, err := strconv.Atoi(f)
			if err != nil {
				return Spec{}, configError(ErrMalformedSpec, s, "ttl out of range")
			}
			spec.TTL, seenTTL = ttl, true

		default:
			if m, ok := ParseMode(f); ok {
				if seenMode {
					return Spec{}, configError(ErrMalformedSpec, s, "duplicate mode")
				}
				spec.Mode, seenMode = m, true
				continue
			}
			if !isAlias(f) {
				return Spec{}, configError(ErrMalformedSpec, s, "unexpected token "+strconv.Quote(f))
			}
			if spec.Alias != "" {
				return Spec{}, configError(ErrMalformedSpec, s, "duplicate alias")
			}
			spec.Alias = f
		}
	}

	if spec.Pattern == "" && spec.Alias == "" {
		return Spec{}, configError(ErrMalformedSpec, s, "pattern or alias required")
	}

	return spec, nil
}

// String renders the spec back into its declaration form.
func (s Spec) String() string {
	parts := []string{strings.Join(s.Verbs, "|")}
	if s.Alias != "" {
		parts = append(parts, s.Alias)
	}
	if s.Pattern != "" {
		parts = append(parts, s.Pattern)
	}
	if s.Mode != "" && s.Mode != ModeAll {
		parts = append(parts, string(s.Mode))
	}
	if s.TTL > 0 {
		parts = append(parts, strconv.Itoa(s.TTL))
	}
	return strings.Join(parts, " ")
}

func isVerb(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// isAlias accepts identifiers made of letters, digits, '_', '.' and '-'
// that start with a letter or underscore.
func isAlias(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '.' || r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return s != ""
}
