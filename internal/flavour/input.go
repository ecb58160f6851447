package flavour

import (
	"fmt"
	"regexp"
	"strings"
)

// Input is the configuration for reading one statement file layout.
type Input struct {
	// Identifier names the parsed field holding the account's unique ID.
	Identifier string `yaml:"identifier"`
	// Encoding of the statement files, e.g. "utf-8" or "windows-1252".
	Encoding string `yaml:"encoding"`
	// Locale used to parse amounts and dates, e.g. "de_DE".
	Locale string `yaml:"locale"`
	// Currency overrides the locale's default currency when set.
	Currency string `yaml:"currency"`
	// PaymentTypes maps bank-specific payment type codes to canonical ones.
	PaymentTypes map[string]string `yaml:"payment_types"`
	// Lines are matched against the file content in order.
	Lines []Line `yaml:"lines"`
}

// Line is one rule of an input flavour. Type "match" matches a single line
// with a regular expression whose named groups become statement fields.
// Type "csv" consumes a header line plus data lines, each row becoming a
// transaction.
type Line struct {
	Type    string `yaml:"type"`
	Pattern string `yaml:"pattern"`
	// Skip drops the matched content instead of keeping its fields.
	Skip bool `yaml:"skip"`

	Dialect Dialect     `yaml:"dialect"`
	Map     []FieldRule `yaml:"map"`
	Ignore  *Ignore     `yaml:"ignore"`
	// Reverse flips the parsed transactions; some banks list newest first.
	Reverse bool `yaml:"reverse"`

	re *regexp.Regexp
}

// Regexp returns the compiled full-match pattern of a "match" line.
func (l *Line) Regexp() *regexp.Regexp { return l.re }

// Ignore drops CSV rows whose Key column equals Value.
type Ignore struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// FieldRule extracts fields from one CSV column. The first matching pattern
// wins; its named groups are merged into the transaction. Then rules apply
// only after a match, Else rules only when nothing matched.
type FieldRule struct {
	Key     string      `yaml:"key"`
	Pattern StringList  `yaml:"pattern"`
	Then    []FieldRule `yaml:"then"`
	Else    []FieldRule `yaml:"else"`

	res []*regexp.Regexp
}

// Regexps returns the compiled full-match patterns of the rule.
func (r *FieldRule) Regexps() []*regexp.Regexp { return r.res }

// LoadInput reads and compiles the input flavour for a file extension.
func LoadInput(dir, extension, name string) (*Input, error) {
	path := Path(dir, "in", strings.ToLower(extension), name+".yml")
	in := &Input{}
	if err := readYAML(path, in); err != nil {
		return nil, err
	}
	if in.Identifier == "" {
		return nil, fmt.Errorf("flavour file %s: missing identifier", path)
	}
	if in.Encoding == "" {
		in.Encoding = "utf-8"
	}
	for i := range in.Lines {
		if err := in.Lines[i].compile(); err != nil {
			return nil, fmt.Errorf("flavour file %s: line %d: %w", path, i+1, err)
		}
	}
	return in, nil
}

func (l *Line) compile() error {
	switch l.Type {
	case "match":
		re, err := fullMatch(l.Pattern)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", l.Pattern, err)
		}
		l.re = re
	case "csv":
		if err := compileRules(l.Map); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown line type %q", l.Type)
	}
	return nil
}

func compileRules(rules []FieldRule) error {
	for i := range rules {
		r := &rules[i]
		for _, pat := range r.Pattern {
			re, err := fullMatch(pat)
			if err != nil {
				return fmt.Errorf("pattern %q for key %q: %w", pat, r.Key, err)
			}
			r.res = append(r.res, re)
		}
		if err := compileRules(r.Then); err != nil {
			return err
		}
		if err := compileRules(r.Else); err != nil {
			return err
		}
	}
	return nil
}
