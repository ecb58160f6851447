package ledger

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ledgerloom/statement-combiner/internal/models"
)

// PlugGaps scans a merged ledger in UID order and inserts a synthetic
// balancing transaction wherever the running balance doesn't chain from one
// transaction to the next. The input ledger is not modified.
//
// The walk starts from a balance of zero, so an account whose history begins
// with a nonzero balance always gets exactly one synthetic entry in front of
// its first transaction. That is expected, not an error: the entry carries
// the balance the earliest statement file never covered.
func PlugGaps(l models.Ledger, log zerolog.Logger) models.Ledger {
	out := l.Clone()

	oldBalance := decimal.Zero
	var oldUID int64

	for _, uid := range l.UIDs() {
		tx := l[uid]
		amount, okAmount := tx.Amount(models.KeyAmount)
		balance, okBalance := tx.Amount(models.KeyBalanceAmount)
		if !okAmount || !okBalance {
			log.Warn().Int64("uid", uid).Msg("transaction without amount or balance, cannot check for gaps")
			oldUID = uid
			continue
		}

		gap := balance.Sub(oldBalance.Add(amount))
		if !gap.IsZero() {
			// One below the start of this transaction's day block, so the
			// entry sorts before everything that happened on that day.
			gapUID := uid - uid%dayScale - 1
			log.Warn().
				Int64("uid", gapUID).
				Str("amount", gap.String()).
				Int64("before", oldUID).
				Int64("after", uid).
				Msg("adding gap plugging transaction")
			out[gapUID] = models.Fields{
				models.KeyAccountUID:      tx[models.KeyAccountUID],
				models.KeyUID:             gapUID,
				models.KeyAmount:          gap,
				models.KeyCurrency:        tx[models.KeyCurrency],
				models.KeyBalanceAmount:   oldBalance.Add(gap),
				models.KeyBalanceCurrency: tx[models.KeyBalanceCurrency],
				models.KeyPaymentType:     "plug_gap",
				models.KeyCounterpart:     "plug_gap",
				models.KeyDetails:         fmt.Sprintf("PLUG GAP between %d and %d", oldUID, uid),
			}
		}

		oldUID = uid
		oldBalance = balance
	}

	return out
}
