// Package writer serializes a combined account ledger into a CSV file laid
// out by an output flavour.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ledgerloom/statement-combiner/internal/flavour"
	"github.com/ledgerloom/statement-combiner/internal/models"
)

// WriteLedger writes the ledger to outPath, replacing a "{}" placeholder in
// the path with the account UID. It returns the effective path, or "" when
// the ledger was empty and nothing was written.
func WriteLedger(outPath string, l models.Ledger, fl *flavour.Output, log zerolog.Logger) (string, error) {
	if len(l) == 0 {
		log.Warn().Msg("no transactions to write to output file")
		return "", nil
	}

	if strings.Contains(outPath, "{}") {
		// All transactions carry the same account UID, take the first.
		first := l[l.UIDs()[0]]
		outPath = strings.ReplaceAll(outPath, "{}", first.Str(models.KeyAccountUID))
	}

	log.Info().Int("transactions", len(l)).Str("file", outPath).Msg("writing output file")

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create output file %q: %w", outPath, err)
	}
	defer f.Close()

	if err := Write(f, l, fl); err != nil {
		return "", fmt.Errorf("write %q: %w", outPath, err)
	}
	return outPath, nil
}

// Write serializes the ledger in ascending UID order to the given writer.
func Write(out io.Writer, l models.Ledger, fl *flavour.Output) error {
	w := csv.NewWriter(out)
	w.Comma = fl.Dialect.Comma()
	w.UseCRLF = fl.Dialect.CRLF

	if fl.WriteHeader() {
		names := make([]string, len(fl.Fields))
		for i, field := range fl.Fields {
			names[i] = field.Name
		}
		if err := w.Write(names); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, uid := range l.UIDs() {
		tx := l[uid]
		row := make([]string, len(fl.Fields))
		for i, field := range fl.Fields {
			value, err := fieldValue(field, tx)
			if err != nil {
				return fmt.Errorf("transaction %d: %w", uid, err)
			}
			row[i] = value
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write transaction %d: %w", uid, err)
		}
	}

	w.Flush()
	return w.Error()
}

// fieldValue resolves one output column for one transaction. The field's
// value entries are tried in order: "$key" references a transaction field, a
// template containing "{" is formatted over the transaction, anything else
// is a literal. The first entry that resolves wins and is then passed
// through the field's value map, if any.
func fieldValue(field flavour.OutputField, tx models.Fields) (string, error) {
	var value string
	var lastErr error
	resolved := false

	for _, entry := range field.Value {
		var err error
		switch {
		case strings.Contains(entry, "{"):
			value, err = formatTemplate(entry, tx)
		case strings.HasPrefix(entry, "$"):
			v, ok := tx[entry[1:]]
			if !ok {
				err = fmt.Errorf("no field %q", entry[1:])
			} else {
				value = render(v)
			}
		default:
			value = entry
		}
		if err == nil {
			resolved = true
			break
		}
		lastErr = err
	}

	if !resolved {
		return "", fmt.Errorf("nothing matched a value for output field %q: %w", field.Name, lastErr)
	}

	if field.Map != nil {
		mapped, ok := field.Map[value]
		if !ok {
			return "", fmt.Errorf("value %q of output field %q has no map entry", value, field.Name)
		}
		value = mapped
	}
	return value, nil
}

var templateKey = regexp.MustCompile(`\{(\w+)\}`)

// formatTemplate substitutes {key} placeholders with transaction fields.
// A missing field makes the whole template fail so the next value entry of
// the output field gets its turn.
func formatTemplate(template string, tx models.Fields) (string, error) {
	var missing string
	result := templateKey.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := tx[key]
		if !ok {
			missing = key
			return m
		}
		return render(v)
	})
	if missing != "" {
		return "", fmt.Errorf("no field %q", missing)
	}
	return result, nil
}

// render formats a normalized value canonically: plain decimal strings for
// amounts, ISO dates, base-10 integers.
func render(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case time.Time:
		return val.Format("2006-01-02")
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
