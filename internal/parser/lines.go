package parser

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Lines hands out the non-empty lines of a statement file one at a time and
// can step back over a line that a rule looked at but didn't consume.
type Lines struct {
	lines []string
	// idx is the index of the last line handed out.
	idx int
}

// NewLines wraps pre-split content, trimming every line.
func NewLines(raw []string) *Lines {
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return &Lines{lines: lines, idx: -1}
}

// ReadLines reads a whole statement file in the given encoding.
func ReadLines(path, encodingName string) (*Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decode(data, encodingName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewLines(strings.Split(text, "\n")), nil
}

// Next returns the next non-empty line, or false at the end of the file.
func (l *Lines) Next() (string, bool) {
	l.idx++
	for l.idx < len(l.lines) && l.lines[l.idx] == "" {
		l.idx++
	}
	if l.idx < len(l.lines) {
		return l.lines[l.idx], true
	}
	l.idx = len(l.lines)
	return "", false
}

// StepBack puts the last handed-out line back so the next rule sees it again.
func (l *Lines) StepBack() {
	l.idx--
}

var charmaps = map[string]encoding.Encoding{
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

func decode(data []byte, encodingName string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(encodingName))
	switch name {
	case "", "utf-8", "utf8", "ascii":
		return string(data), nil
	}
	enc, ok := charmaps[name]
	if !ok {
		return "", fmt.Errorf("unsupported encoding %q", encodingName)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s content: %w", encodingName, err)
	}
	return string(decoded), nil
}
