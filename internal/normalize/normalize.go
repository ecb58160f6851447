// Package normalize converts the raw field strings coming out of statement
// parsing into canonical typed values: decimal amounts, dates, ISO currency
// codes and mapped payment types. The field key's suffix decides the type.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerloom/statement-combiner/internal/flavour"
)

// ParseDecimal parses an amount written for the given locale, e.g.
// "1.234,56" for de_DE or "1,234.56" for en_US.
func ParseDecimal(s, locale string) (decimal.Decimal, error) {
	info, ok := lookupLocale(locale)
	if !ok {
		// Unknown locale: accept plain machine formatting only.
		info = localeInfo{decimal: '.', group: ','}
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case info.group, ' ', ' ', ' ':
			// grouping separator
		case info.decimal:
			b.WriteRune('.')
		default:
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %q (locale %s): %w", s, locale, err)
	}
	return d, nil
}

// ParseDate parses a date written for the given locale. ISO dates are
// accepted everywhere.
func ParseDate(s, locale string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var layouts []string
	if info, ok := lookupLocale(locale); ok {
		layouts = info.layouts
	}
	for _, layout := range append(layouts, isoLayouts...) {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q doesn't match any layout of locale %s", s, locale)
}

// Value normalizes one field according to its key suffix. Values that are
// already typed pass through untouched, which makes cleaning idempotent.
func Value(key string, value any, fl *flavour.Input) (any, error) {
	s, isString := value.(string)
	if !isString {
		return value, nil
	}
	switch {
	case strings.HasSuffix(key, "_amount"):
		return ParseDecimal(s, fl.Locale)
	case strings.HasSuffix(key, "_quantity"):
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("quantity %q: %w", s, err)
		}
		return n, nil
	case strings.HasSuffix(key, "_currency"):
		return CurrencyCode(s), nil
	case strings.HasSuffix(key, "_date"):
		return ParseDate(s, fl.Locale)
	case strings.HasSuffix(key, "_payment_type") && fl.PaymentTypes != nil:
		if mapped, ok := fl.PaymentTypes[s]; ok {
			return mapped, nil
		}
		return s, nil
	}
	return s, nil
}
