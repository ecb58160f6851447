// Package flavour loads the YAML configuration files describing one
// bank's or tool's statement layout. Input flavours live under
// in/<extension>/<name>.yml, output flavours under out/<extension>/<name>.yml
// and rename flavours under ren/<name>.yml, all relative to a config
// directory.
package flavour

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// fullMatch compiles a pattern so it must match the whole line; flavour
// patterns are written with that assumption and carry no anchors.
func fullMatch(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + pattern + `)\z`)
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("flavour file %s: %w", path, err)
	}
	return nil
}

// Path resolves a flavour file below the config directory.
func Path(dir string, parts ...string) string {
	return filepath.Join(append([]string{dir}, parts...)...)
}

// StringList accepts either a single YAML scalar or a sequence of scalars.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var ss []string
	if err := node.Decode(&ss); err != nil {
		return err
	}
	*l = StringList(ss)
	return nil
}

// Dialect describes CSV reading/writing options. In a flavour file it is
// either a preset name ("excel", "excel-tab", "unix") or a mapping with
// explicit options.
type Dialect struct {
	Delimiter string `yaml:"delimiter"`
	CRLF      bool   `yaml:"crlf"`
}

func (d *Dialect) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		switch name {
		case "excel":
			*d = Dialect{Delimiter: ",", CRLF: true}
		case "excel-tab":
			*d = Dialect{Delimiter: "\t", CRLF: true}
		case "unix":
			*d = Dialect{Delimiter: ","}
		default:
			return fmt.Errorf("unknown dialect %q", name)
		}
		return nil
	}
	type plain Dialect
	return node.Decode((*plain)(d))
}

// Comma returns the delimiter rune, defaulting to a comma.
func (d Dialect) Comma() rune {
	if d.Delimiter == "" {
		return ','
	}
	return []rune(d.Delimiter)[0]
}
