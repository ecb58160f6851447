package normalize

import "strings"

// localeInfo carries everything needed to parse numbers and dates written
// for one locale, plus the locale's default currency. A static table avoids
// the process-wide setlocale state juggling that resolving a currency
// normally requires.
type localeInfo struct {
	decimal  rune
	group    rune
	currency string
	layouts  []string
}

// isoLayouts are accepted for every locale.
var isoLayouts = []string{"2006-01-02"}

var locales = map[string]localeInfo{
	"en_US": {'.', ',', "USD", []string{"01/02/2006", "1/2/2006", "01/02/06", "Jan 2, 2006"}},
	"en_GB": {'.', ',', "GBP", []string{"02/01/2006", "2/1/2006", "02/01/06", "2 Jan 2006", "02 Jan 2006"}},
	"en_IE": {'.', ',', "EUR", []string{"02/01/2006", "2/1/2006", "02/01/06"}},
	"de_DE": {',', '.', "EUR", []string{"02.01.2006", "2.1.2006", "02.01.06"}},
	"de_AT": {',', '.', "EUR", []string{"02.01.2006", "2.1.2006", "02.01.06"}},
	"de_CH": {'.', '\'', "CHF", []string{"02.01.2006", "2.1.2006", "02.01.06"}},
	"fr_FR": {',', ' ', "EUR", []string{"02/01/2006", "2/1/2006", "02/01/06"}},
	"fr_CH": {'.', '\'', "CHF", []string{"02.01.2006", "2.1.2006"}},
	"it_IT": {',', '.', "EUR", []string{"02/01/2006", "2/1/2006", "02/01/06"}},
	"es_ES": {',', '.', "EUR", []string{"02/01/2006", "2/1/2006", "02/01/06"}},
	"nl_NL": {',', '.', "EUR", []string{"02-01-2006", "2-1-2006", "02-01-06"}},
	"pt_PT": {',', '.', "EUR", []string{"02/01/2006", "2/1/2006"}},
	"pl_PL": {',', ' ', "PLN", []string{"02.01.2006", "2.1.2006"}},
}

// language fallbacks for flavours that only give a bare language code
var languageDefaults = map[string]string{
	"en": "en_US",
	"de": "de_DE",
	"fr": "fr_FR",
	"it": "it_IT",
	"es": "es_ES",
	"nl": "nl_NL",
	"pt": "pt_PT",
	"pl": "pl_PL",
}

// lookupLocale resolves a locale identifier like "de_DE", "de-DE" or "de".
func lookupLocale(locale string) (localeInfo, bool) {
	id := strings.ReplaceAll(locale, "-", "_")
	if info, ok := locales[id]; ok {
		return info, true
	}
	lang := strings.SplitN(id, "_", 2)[0]
	if full, ok := languageDefaults[strings.ToLower(lang)]; ok {
		return locales[full], true
	}
	return localeInfo{}, false
}

// LocaleCurrency returns the 3-letter currency code of the locale, or ""
// when the locale is unknown.
func LocaleCurrency(locale string) string {
	info, ok := lookupLocale(locale)
	if !ok {
		return ""
	}
	return info.currency
}

// currencySymbols maps common currency symbols to their ISO 4217 codes.
// Symbols shared by several currencies (like the Nordic "kr") are left out
// on purpose: guessing wrong is worse than passing the symbol through.
var currencySymbols = map[string]string{
	"€":   "EUR",
	"£":   "GBP",
	"$":   "USD",
	"US$": "USD",
	"¥":   "JPY",
	"CN¥": "CNY",
	"Fr.": "CHF",
	"zł":  "PLN",
	"Kč":  "CZK",
	"₹":   "INR",
	"₩":   "KRW",
	"₺":   "TRY",
	"R$":  "BRL",
	"₽":   "RUB",
}

// CurrencyCode translates a currency symbol to its ISO code. Values that are
// not known symbols (typically already codes) pass through unchanged.
func CurrencyCode(value string) string {
	if code, ok := currencySymbols[strings.TrimSpace(value)]; ok {
		return code
	}
	return value
}
