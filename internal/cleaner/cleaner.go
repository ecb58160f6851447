// Package cleaner completes parsed account statements: it normalizes every
// field to its canonical type, fills missing transaction fields from fixed
// fallback rules, and reconstructs missing running balances from the
// statement's balance anchors.
package cleaner

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ledgerloom/statement-combiner/internal/models"
	"github.com/ledgerloom/statement-combiner/internal/normalize"
)

// MissingFieldError reports a transaction that is missing a required field
// after cleaning. It aborts processing of the enclosing statement.
type MissingFieldError struct {
	File  string
	Index int // 1-based transaction position in the file
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("transaction %d of %s is missing required field %s", e.Index, e.File, e.Field)
}

// Clean normalizes and completes one statement in place. It is idempotent:
// fields that are already set are never overwritten. A statement without
// transactions is left untouched apart from a warning; the caller drops it.
func Clean(st *models.Statement, log zerolog.Logger) error {
	file := filepath.Base(st.File)
	fl := st.Flavour

	if len(st.Transactions) == 0 {
		log.Warn().Str("file", file).Str("account", st.AccountUID).
			Msg("statement file contains no transactions")
		return nil
	}
	log.Info().Str("file", file).Str("account", st.AccountUID).
		Int("transactions", len(st.Transactions)).
		Msg("cleaning statement file")

	// Default currency, in decreasing order of priority: the statement's own
	// account currency, the flavour's currency, the default currency of the
	// flavour's locale.
	rawCurrency := st.Fields.Str(models.KeyAccountCurrency)
	if rawCurrency == "" {
		rawCurrency = fl.Currency
	}
	if rawCurrency == "" {
		rawCurrency = normalize.LocaleCurrency(fl.Locale)
	}
	defaultCurrency := normalize.CurrencyCode(rawCurrency)

	for key, val := range st.Fields {
		v, err := normalize.Value(key, val, fl)
		if err != nil {
			return fmt.Errorf("statement field %s of %s: %w", key, file, err)
		}
		st.Fields[key] = v
	}

	for i, tx := range st.Transactions {
		for key, val := range tx {
			v, err := normalize.Value(key, val, fl)
			if err != nil {
				return fmt.Errorf("transaction %d of %s, field %s: %w", i+1, file, key, err)
			}
			tx[key] = v
		}
		tx[models.KeyAccountUID] = st.AccountUID

		fillCounterpart(tx)

		if !tx.Has(models.KeyCurrency) {
			tx[models.KeyCurrency] = defaultCurrency
		}
		if !tx.Has(models.KeyBalanceCurrency) {
			tx[models.KeyBalanceCurrency] = defaultCurrency
		}

		// Not all banks distinguish booking and value dates. The booking
		// date wins when both exist: value dates can lie in the past and
		// would make the sequence jump.
		if !tx.Has(models.KeyDate) {
			switch {
			case tx.Has(models.KeyBookingDate):
				tx[models.KeyDate] = tx[models.KeyBookingDate]
			case tx.Has(models.KeyValueDate):
				tx[models.KeyDate] = tx[models.KeyValueDate]
			default:
				return &MissingFieldError{File: file, Index: i + 1, Field: models.KeyDate}
			}
		}
	}

	if err := fillBalances(st, file); err != nil {
		return err
	}

	for i, tx := range st.Transactions {
		for _, field := range models.RequiredFields {
			if !tx.Has(field) {
				return &MissingFieldError{File: file, Index: i + 1, Field: field}
			}
		}
	}

	return nil
}

// fillCounterpart derives the counterpart name for banks that only document
// originator, receiver or presenter. With both originator and receiver
// present, a positive amount is incoming funds so the originator is the
// counterpart; a negative amount is outgoing so the receiver is.
func fillCounterpart(tx models.Fields) {
	if tx.Has(models.KeyCounterpart) {
		return
	}
	switch {
	case tx.Has(models.KeyOriginator) && tx.Has(models.KeyReceiver):
		if amount, ok := tx.Amount(models.KeyAmount); ok && amount.IsPositive() {
			tx[models.KeyCounterpart] = tx[models.KeyOriginator]
		} else {
			tx[models.KeyCounterpart] = tx[models.KeyReceiver]
		}
	case tx.Has(models.KeyPresenter):
		tx[models.KeyCounterpart] = tx[models.KeyPresenter]
	case tx.Has(models.KeyReceiver):
		tx[models.KeyCounterpart] = tx[models.KeyReceiver]
	case tx.Has(models.KeyOriginator):
		tx[models.KeyCounterpart] = tx[models.KeyOriginator]
	}
}

// fillBalances reconstructs missing running balances from a balance anchor.
// At most one branch runs: forward from the closing balance when the last
// transaction has no balance, else backward from the opening balance when
// the first one has none. Balances that are already present stay untouched.
func fillBalances(st *models.Statement, file string) error {
	txs := st.Transactions
	first, last := txs[0], txs[len(txs)-1]

	switch {
	case !last.Has(models.KeyBalanceAmount) && st.Fields.Has(models.KeyAccountNewBalance):
		// The closing balance anchor is the balance after the last
		// transaction; walk back towards the first one.
		anchor, _ := st.Fields.Amount(models.KeyAccountNewBalance)
		last[models.KeyBalanceAmount] = anchor
		next := last
		for i := len(txs) - 2; i >= 0; i-- {
			tx := txs[i]
			if !tx.Has(models.KeyBalanceAmount) {
				nextBalance, _ := next.Amount(models.KeyBalanceAmount)
				nextAmount, ok := next.Amount(models.KeyAmount)
				if !ok {
					return &MissingFieldError{File: file, Index: i + 2, Field: models.KeyAmount}
				}
				tx[models.KeyBalanceAmount] = nextBalance.Sub(nextAmount)
			}
			next = tx
		}

	case !first.Has(models.KeyBalanceAmount) && st.Fields.Has(models.KeyAccountOldBalance):
		// The opening balance anchor is the balance before the first
		// transaction; walk forward towards the last one.
		anchor, _ := st.Fields.Amount(models.KeyAccountOldBalance)
		firstAmount, ok := first.Amount(models.KeyAmount)
		if !ok {
			return &MissingFieldError{File: file, Index: 1, Field: models.KeyAmount}
		}
		first[models.KeyBalanceAmount] = anchor.Add(firstAmount)
		prev := first
		for i := 1; i < len(txs); i++ {
			tx := txs[i]
			if !tx.Has(models.KeyBalanceAmount) {
				prevBalance, _ := prev.Amount(models.KeyBalanceAmount)
				amount, ok := tx.Amount(models.KeyAmount)
				if !ok {
					return &MissingFieldError{File: file, Index: i + 1, Field: models.KeyAmount}
				}
				tx[models.KeyBalanceAmount] = prevBalance.Add(amount)
			}
			prev = tx
		}
	}

	return nil
}
