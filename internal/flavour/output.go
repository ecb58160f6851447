package flavour

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output is the configuration for writing the combined ledger of one account.
type Output struct {
	Dialect Dialect `yaml:"dialect"`
	// Header controls whether a column header row is written. Default true.
	Header *bool  `yaml:"header"`
	Locale string `yaml:"locale"`
	// Fields are the output columns, in file order.
	Fields OutputFields `yaml:"fields"`
}

// WriteHeader reports whether the header row should be written.
func (o *Output) WriteHeader() bool {
	return o.Header == nil || *o.Header
}

// OutputField describes how one output column is filled. Each Value entry is
// tried in order until one resolves: "$key" references a transaction field,
// an entry containing "{" is a format template over transaction fields, and
// anything else is taken literally. Map optionally translates the resolved
// value.
type OutputField struct {
	Name  string
	Value []string
	Map   map[string]string
}

// OutputFields preserves the column order of the YAML mapping, which a plain
// Go map would lose.
type OutputFields []OutputField

func (fs *OutputFields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fields must be a mapping, got %v", node.Kind)
	}
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		field := OutputField{Name: keyNode.Value}
		switch valNode.Kind {
		case yaml.ScalarNode:
			if valNode.Tag != "!!null" {
				return fmt.Errorf("field %q: expected null or mapping", field.Name)
			}
			// Shortcut: a null field maps to itself and stays empty when
			// the transaction doesn't carry it.
			field.Value = []string{"$" + field.Name, ""}
		case yaml.MappingNode:
			var spec struct {
				Value StringList        `yaml:"value"`
				Map   map[string]string `yaml:"map"`
			}
			if err := valNode.Decode(&spec); err != nil {
				return fmt.Errorf("field %q: %w", field.Name, err)
			}
			field.Value = []string(spec.Value)
			field.Map = spec.Map
			// A single value gets an empty fallback so a missing field
			// produces an empty column instead of an error.
			if len(field.Value) == 1 {
				field.Value = append(field.Value, "")
			}
		default:
			return fmt.Errorf("field %q: unexpected node kind %v", field.Name, valNode.Kind)
		}
		*fs = append(*fs, field)
	}
	return nil
}

// LoadOutput reads the output flavour for a file extension.
func LoadOutput(dir, extension, name string) (*Output, error) {
	path := Path(dir, "out", strings.ToLower(extension), name+".yml")
	out := &Output{}
	if err := readYAML(path, out); err != nil {
		return nil, err
	}
	if len(out.Fields) == 0 {
		return nil, fmt.Errorf("flavour file %s: no output fields", path)
	}
	return out, nil
}
