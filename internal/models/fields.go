package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical field keys shared between parser, cleaner, ledger and writer.
// The key suffix decides how a raw value is normalized: _amount fields become
// decimals, _date fields become dates, _currency fields become ISO 4217
// codes, _quantity fields become integers.
const (
	KeyDate            = "transaction_date"
	KeyBookingDate     = "transaction_booking_date"
	KeyValueDate       = "transaction_value_date"
	KeyAmount          = "transaction_amount"
	KeyCurrency        = "transaction_currency"
	KeyBalanceAmount   = "transaction_balance_amount"
	KeyBalanceCurrency = "transaction_balance_currency"
	KeyCounterpart     = "transaction_counterpart_name"
	KeyOriginator      = "transaction_originator_name"
	KeyReceiver        = "transaction_receiver_name"
	KeyPresenter       = "transaction_presenter_name"
	KeyAccountUID      = "transaction_account_uid"
	KeyUID             = "transaction_uid"
	KeyPaymentType     = "transaction_payment_type"
	KeyDetails         = "transaction_details"

	KeyAccountCurrency   = "account_currency"
	KeyAccountOldBalance = "account_old_balance_amount"
	KeyAccountNewBalance = "account_new_balance_amount"
)

// RequiredFields are the keys every cleaned transaction must carry.
var RequiredFields = []string{
	KeyDate,
	KeyAccountUID,
	KeyCounterpart,
	KeyAmount,
	KeyCurrency,
	KeyBalanceAmount,
	KeyBalanceCurrency,
}

// Fields is one record of a statement: either the statement-level metadata or
// a single transaction. Raw parsing produces string values; normalization
// replaces them with typed ones (decimal.Decimal, time.Time, int).
type Fields map[string]any

// Has reports whether the key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Str returns the value under key as a string, or "" if absent or not a string.
func (f Fields) Str(key string) string {
	s, _ := f[key].(string)
	return s
}

// Amount returns the decimal value under key.
func (f Fields) Amount(key string) (decimal.Decimal, bool) {
	d, ok := f[key].(decimal.Decimal)
	return d, ok
}

// Date returns the date value under key.
func (f Fields) Date(key string) (time.Time, bool) {
	t, ok := f[key].(time.Time)
	return t, ok
}

// UID returns the transaction UID, or 0 if not assigned yet.
func (f Fields) UID() int64 {
	uid, _ := f[KeyUID].(int64)
	return uid
}

// Merge copies all entries of other into f, overwriting existing keys.
// Last write wins; this is the intended policy for field completion while a
// statement is being assembled from consecutive line matches.
func (f Fields) Merge(other Fields) {
	for k, v := range other {
		f[k] = v
	}
}

// Clone returns a shallow copy of f. Values are immutable after
// normalization, so a shallow copy is enough to protect callers from
// later mutation.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
