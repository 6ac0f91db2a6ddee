package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var (
	// ErrParse is returned when a config source cannot be parsed.
	ErrParse = errors.New("config: parse failed")

	// ErrRead is returned when a config file cannot be read.
	ErrRead = errors.New("config: read failed")
)

var (
	intLiteral   = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	floatLiteral = regexp.MustCompile(`^-?[0-9]*\.[0-9]+$`)
)

// Directive is one key = value line.
type Directive struct {
	Value   any
	Section string
	Key     string
	Raw     string
}

// Load parses the file at path, choosing the grammar by extension:
// .yaml and .yml are YAML, everything else is INI.
func Load(path string) ([]Directive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseINI(data)
	}
}

// Coerce converts a raw scalar into a typed value:
//
//	"quoted" or 'quoted'   string without the quotes
//	a, b, c                []any of coerced items
//	true / false           bool
//	null                   nil
//	42, -1.5               int64, float64
//
// Anything else stays a string.
func Coerce(raw string) any {
	s := strings.TrimSpace(raw)
	if unq, ok := unquote(s); ok {
		return unq
	}

	if parts := splitList(s); len(parts) > 1 {
		list := make([]any, len(parts))
		for i, p := range parts {
			list[i] = Coerce(p)
		}
		return list
	}

	switch strings.ToLower(s) {
	case "true", "false":
		return cast.ToBool(s)
	case "null":
		return nil
	}

	if intLiteral.MatchString(s) {
		if n, err := cast.ToInt64E(s); err == nil {
			return n
		}
	}
	if floatLiteral.MatchString(s) {
		if f, err := cast.ToFloat64E(s); err == nil {
			return f
		}
	}
	return s
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return s, false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s, false
	}
	inner := s[1 : len(s)-1]
	if strings.IndexByte(inner, q) >= 0 {
		// "a", "b" is a list of quoted items, not one quoted string
		return s, false
	}
	return inner, true
}

// splitList splits on commas outside quotes.
func splitList(s string) []string {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func parseError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParse}, args...)...)
}
