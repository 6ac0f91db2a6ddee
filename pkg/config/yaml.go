package config

import (
	"errors"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses YAML source whose document is a mapping. A mapping
// value opens a section; scalar and sequence values are top-level keys.
// Nested mappings inside a section are kept as map values.
func ParseYAML(data []byte) ([]Directive, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, parseError("unexpected yaml root")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, parseError("yaml root must be a mapping, got line %d", root.Line)
	}

	var out []Directive
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind == yaml.MappingNode {
			for j := 0; j+1 < len(val.Content); j += 2 {
				d, err := yamlDirective(key.Value, val.Content[j], val.Content[j+1])
				if err != nil {
					return nil, err
				}
				out = append(out, d)
			}
			continue
		}

		d, err := yamlDirective("", key, val)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func yamlDirective(section string, key, val *yaml.Node) (Directive, error) {
	d := Directive{Section: section, Key: key.Value}
	if val.Kind == yaml.ScalarNode {
		d.Raw = val.Value
	}
	if err := val.Decode(&d.Value); err != nil {
		return d, errors.Join(ErrParse, err)
	}
	return d, nil
}
