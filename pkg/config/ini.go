package config

import (
	"errors"

	"gopkg.in/ini.v1"
)

// ParseINI parses INI source. Keys are split on "=" only, so route specs
// like "GET /user/@id:digit" survive intact. Lines are kept in file order;
// a key repeated within a section yields one directive per occurrence.
func ParseINI(data []byte) ([]Directive, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:            true,
		IgnoreInlineComment:     true,
		KeyValueDelimiters:      "=",
		PreserveSurroundedQuote: true,
	}, data)
	if err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	var out []Directive
	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection {
			name = ""
		}
		for _, key := range sec.Keys() {
			for _, raw := range key.ValueWithShadows() {
				out = append(out, Directive{
					Section: name,
					Key:     key.Name(),
					Raw:     raw,
					Value:   Coerce(raw),
				})
			}
		}
	}
	return out, nil
}
