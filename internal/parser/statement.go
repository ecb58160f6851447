// Package parser turns raw statement files into account statements by
// matching the flavour's line rules against the file content. Plain text and
// CSV exports are read directly in the flavour's encoding; PDF statements go
// through text extraction first and then the same line rules.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ledgerloom/statement-combiner/internal/extractor"
	"github.com/ledgerloom/statement-combiner/internal/flavour"
	"github.com/ledgerloom/statement-combiner/internal/models"
)

// ParseFile reads one statement file. The result usually holds a single
// statement, but files of banks that export several accounts at once yield
// one statement per account, in file order.
func ParseFile(path string, fl *flavour.Input, log zerolog.Logger) ([]*models.Statement, error) {
	log.Info().Str("file", filepath.Base(path)).Msg("reading input file")

	lines, err := fileLines(path, fl)
	if err != nil {
		return nil, err
	}

	var statements []*models.Statement
	current := newStatement(path, fl)

	// Every line rule is optional: a rule that doesn't match leaves the
	// content for the next one.
	for i := range fl.Lines {
		rule := &fl.Lines[i]
		switch rule.Type {
		case "match":
			fields := parseMatch(lines, rule)
			if len(fields) == 0 {
				continue
			}
			// A new value for the identifier field means the file switched
			// to another account's section.
			if next, ok := fields[fl.Identifier].(string); ok {
				if cur := current.Fields.Str(fl.Identifier); cur != "" && cur != next {
					statements = append(statements, sealStatement(current, fl))
					current = newStatement(path, fl)
				}
			}
			current.Fields.Merge(fields)
		case "csv":
			txs := parseCSV(lines, rule, log)
			current.Transactions = append(current.Transactions, txs...)
		}
	}

	return append(statements, sealStatement(current, fl)), nil
}

func fileLines(path string, fl *flavour.Input) (*Lines, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, err := extractor.ExtractText(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		var raw []string
		for _, page := range pages {
			raw = append(raw, strings.Split(page, "\n")...)
		}
		return NewLines(raw), nil
	}
	return ReadLines(path, fl.Encoding)
}

func newStatement(path string, fl *flavour.Input) *models.Statement {
	return &models.Statement{File: path, Flavour: fl, Fields: models.Fields{}}
}

func sealStatement(st *models.Statement, fl *flavour.Input) *models.Statement {
	st.AccountUID = st.Fields.Str(fl.Identifier)
	if st.AccountUID == "" {
		st.AccountUID = models.NoAccountUID
	}
	return st
}

// parseMatch matches a single rule against the next non-empty line. The
// pattern's named groups become statement fields. A line that doesn't match
// is put back for the next rule.
func parseMatch(lines *Lines, rule *flavour.Line) models.Fields {
	line, ok := lines.Next()
	if !ok {
		return nil
	}
	m := rule.Regexp().FindStringSubmatch(line)
	if m == nil {
		lines.StepBack()
		return nil
	}
	if rule.Skip {
		return nil
	}
	return groupFields(rule.Regexp(), m)
}

// parseCSV consumes a header line plus the following data lines. A line that
// doesn't yield the header's column count ends the table and is put back.
func parseCSV(lines *Lines, rule *flavour.Line, log zerolog.Logger) []models.Fields {
	headerLine, ok := lines.Next()
	if !ok {
		return nil
	}
	header, err := readRecord(headerLine, rule.Dialect)
	if err != nil || len(header) == 0 {
		lines.StepBack()
		return nil
	}

	var transactions []models.Fields
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		record, err := readRecord(line, rule.Dialect)
		if err != nil || len(record) != len(header) {
			lines.StepBack()
			break
		}

		row := make(models.Fields, len(header))
		for i, name := range header {
			row[name] = record[i]
		}
		if rule.Ignore != nil && row.Str(rule.Ignore.Key) == rule.Ignore.Value {
			log.Warn().Str("line", line).Msg("ignoring transaction")
			continue
		}
		if len(rule.Map) > 0 {
			row.Merge(mapFields(row, rule.Map))
		}
		transactions = append(transactions, row)
	}

	if rule.Skip {
		return nil
	}
	if rule.Reverse {
		for i, j := 0, len(transactions)-1; i < j; i, j = i+1, j-1 {
			transactions[i], transactions[j] = transactions[j], transactions[i]
		}
	}
	return transactions
}

func readRecord(line string, dialect flavour.Dialect) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = dialect.Comma()
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	return record, err
}

// mapFields applies the rule list to a parsed row. Per rule the first
// matching pattern wins and contributes its named groups; Then rules run
// after a match, Else rules when nothing matched.
func mapFields(row models.Fields, rules []flavour.FieldRule) models.Fields {
	parsed := models.Fields{}
	for i := range rules {
		rule := &rules[i]
		value := row.Str(rule.Key)

		var matched *regexp.Regexp
		var groups []string
		for _, re := range rule.Regexps() {
			if m := re.FindStringSubmatch(value); m != nil {
				matched, groups = re, m
				break
			}
		}

		if matched != nil {
			parsed.Merge(groupFields(matched, groups))
			if len(rule.Then) > 0 {
				parsed.Merge(mapFields(row, rule.Then))
			}
		} else if len(rule.Else) > 0 {
			parsed.Merge(mapFields(row, rule.Else))
		}
	}
	return parsed
}

func groupFields(re *regexp.Regexp, match []string) models.Fields {
	fields := models.Fields{}
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" && match[i] != "" {
			fields[name] = match[i]
		}
	}
	return fields
}
