package flavour

import (
	"fmt"
	"regexp"
)

// Rename is the configuration for renaming downloaded statement files.
type Rename struct {
	Renames []RenameRule `yaml:"renames"`
}

// RenameRule rewrites file names matching From into the To template. Named
// groups of From fill {name} placeholders in To.
type RenameRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`

	re *regexp.Regexp
}

// Regexp returns the compiled full-match From pattern.
func (r *RenameRule) Regexp() *regexp.Regexp { return r.re }

// LoadRename reads and compiles a rename flavour.
func LoadRename(dir, name string) (*Rename, error) {
	path := Path(dir, "ren", name+".yml")
	ren := &Rename{}
	if err := readYAML(path, ren); err != nil {
		return nil, err
	}
	for i := range ren.Renames {
		rule := &ren.Renames[i]
		re, err := fullMatch(rule.From)
		if err != nil {
			return nil, fmt.Errorf("flavour file %s: rename %d: pattern %q: %w", path, i+1, rule.From, err)
		}
		rule.re = re
	}
	return ren, nil
}
