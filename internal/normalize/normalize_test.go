package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerloom/statement-combiner/internal/flavour"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input  string
		locale string
		want   string
	}{
		{"1,234.56", "en_US", "1234.56"},
		{"1.234,56", "de_DE", "1234.56"},
		{"-1.234,56", "de_DE", "-1234.56"},
		{"1 234,56", "fr_FR", "1234.56"},
		{"1'234.56", "de_CH", "1234.56"},
		{"0,10", "de_DE", "0.1"},
		{"42", "en_US", "42"},
		{"  -3.50 ", "en_US", "-3.5"},
		// Unknown locale falls back to machine formatting.
		{"1234.56", "xx_XX", "1234.56"},
		// Bare language code resolves through the language default.
		{"1.234,56", "de", "1234.56"},
	}

	for _, tt := range tests {
		got, err := ParseDecimal(tt.input, tt.locale)
		if err != nil {
			t.Errorf("ParseDecimal(%q, %q): unexpected error: %v", tt.input, tt.locale, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDecimal(%q, %q): got %s, want %s", tt.input, tt.locale, got, tt.want)
		}
	}
}

func TestParseDecimal_Invalid(t *testing.T) {
	if _, err := ParseDecimal("not a number", "en_US"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		locale string
		want   string
	}{
		{"05.01.2024", "de_DE", "2024-01-05"},
		{"05/01/2024", "en_GB", "2024-01-05"},
		{"01/05/2024", "en_US", "2024-01-05"},
		{"5 Jan 2024", "en_GB", "2024-01-05"},
		{"05-01-2024", "nl_NL", "2024-01-05"},
		// ISO dates are accepted regardless of locale.
		{"2024-01-05", "de_DE", "2024-01-05"},
		{"2024-01-05", "xx_XX", "2024-01-05"},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input, tt.locale)
		if err != nil {
			t.Errorf("ParseDate(%q, %q): unexpected error: %v", tt.input, tt.locale, err)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%q, %q): got %s, want %s", tt.input, tt.locale, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := ParseDate("yesterday", "en_US"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestLocaleCurrency(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"de_DE", "EUR"},
		{"de-DE", "EUR"},
		{"en_GB", "GBP"},
		{"fr", "EUR"},
		{"xx_XX", ""},
	}
	for _, tt := range tests {
		if got := LocaleCurrency(tt.locale); got != tt.want {
			t.Errorf("LocaleCurrency(%q): got %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestCurrencyCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"€", "EUR"},
		{"£", "GBP"},
		{" $ ", "USD"},
		{"EUR", "EUR"},
		// Ambiguous symbols pass through rather than being guessed.
		{"kr", "kr"},
	}
	for _, tt := range tests {
		if got := CurrencyCode(tt.input); got != tt.want {
			t.Errorf("CurrencyCode(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValue_SuffixDispatch(t *testing.T) {
	fl := &flavour.Input{
		Locale:       "de_DE",
		PaymentTypes: map[string]string{"Lastschrift": "direct_debit"},
	}

	got, err := Value("transaction_amount", "1.234,56", fl)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	if d, ok := got.(decimal.Decimal); !ok || d.String() != "1234.56" {
		t.Errorf("amount: got %v (%T), want 1234.56", got, got)
	}

	got, err = Value("transaction_date", "05.01.2024", fl)
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	if d, ok := got.(time.Time); !ok || d.Format("2006-01-02") != "2024-01-05" {
		t.Errorf("date: got %v (%T), want 2024-01-05", got, got)
	}

	got, err = Value("transaction_currency", "€", fl)
	if err != nil {
		t.Fatalf("currency: %v", err)
	}
	if got != "EUR" {
		t.Errorf("currency: got %v, want EUR", got)
	}

	got, err = Value("some_quantity", " 3 ", fl)
	if err != nil {
		t.Fatalf("quantity: %v", err)
	}
	if got != 3 {
		t.Errorf("quantity: got %v, want 3", got)
	}

	got, err = Value("transaction_payment_type", "Lastschrift", fl)
	if err != nil {
		t.Fatalf("payment type: %v", err)
	}
	if got != "direct_debit" {
		t.Errorf("payment type: got %v, want direct_debit", got)
	}

	// Unmapped payment types stay as-is.
	got, _ = Value("transaction_payment_type", "Dauerauftrag", fl)
	if got != "Dauerauftrag" {
		t.Errorf("unmapped payment type: got %v, want Dauerauftrag", got)
	}

	// Keys without a typed suffix stay strings.
	got, _ = Value("transaction_details", "REWE SAGT DANKE", fl)
	if got != "REWE SAGT DANKE" {
		t.Errorf("details: got %v, want unchanged string", got)
	}
}

func TestValue_AlreadyTypedPassesThrough(t *testing.T) {
	fl := &flavour.Input{Locale: "de_DE"}
	amount := decimal.RequireFromString("12.34")

	got, err := Value("transaction_amount", amount, fl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d, ok := got.(decimal.Decimal); !ok || !d.Equal(amount) {
		t.Errorf("got %v, want the decimal back unchanged", got)
	}
}
