package ledger

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ledgerloom/statement-combiner/internal/models"
)

func mergedLedger(t *testing.T, txs ...models.Fields) models.Ledger {
	t.Helper()
	l, err := Merge([]*models.Statement{statement("test.csv", txs...)}, zerolog.Nop())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	return l
}

func TestPlugGaps_InsertsBalancingTransaction(t *testing.T) {
	// 100 + 30 != 150: the missing 20 happened between the two statements.
	l := mergedLedger(t,
		tx(date(2024, time.January, 5), "100", "100"),
		tx(date(2024, time.February, 1), "30", "150"),
	)

	plugged := PlugGaps(l, zerolog.Nop())
	if len(plugged) != 3 {
		t.Fatalf("transactions: got %d, want 3", len(plugged))
	}

	// The synthetic entry sits one below the second day's block.
	gapUID := int64(2024020100010 - 10 - 1)
	gap, ok := plugged[gapUID]
	if !ok {
		t.Fatalf("no synthetic transaction at uid %d, got uids %v", gapUID, plugged.UIDs())
	}

	if amount, _ := gap.Amount(models.KeyAmount); !amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("gap amount: got %s, want 20", amount)
	}
	if balance, _ := gap.Amount(models.KeyBalanceAmount); !balance.Equal(decimal.NewFromInt(120)) {
		t.Errorf("gap balance: got %s, want 120", balance)
	}
	if gap.Str(models.KeyPaymentType) != "plug_gap" {
		t.Errorf("gap payment type: got %q, want %q", gap.Str(models.KeyPaymentType), "plug_gap")
	}

	// With the gap filled the balances chain again.
	if rechecked := PlugGaps(plugged, zerolog.Nop()); len(rechecked) != len(plugged) {
		t.Errorf("second pass added %d transactions", len(rechecked)-len(plugged))
	}
}

func TestPlugGaps_NoGapNoChange(t *testing.T) {
	l := mergedLedger(t,
		tx(date(2024, time.January, 5), "100", "100"),
		tx(date(2024, time.January, 5), "-20", "80"),
		tx(date(2024, time.February, 1), "30", "110"),
	)

	plugged := PlugGaps(l, zerolog.Nop())
	if len(plugged) != len(l) {
		t.Errorf("transactions: got %d, want %d", len(plugged), len(l))
	}
}

func TestPlugGaps_NonzeroOpeningBalance(t *testing.T) {
	// History starts at 500: one synthetic entry carries the uncovered
	// opening balance.
	l := mergedLedger(t,
		tx(date(2024, time.January, 5), "-20", "480"),
	)

	plugged := PlugGaps(l, zerolog.Nop())
	if len(plugged) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(plugged))
	}
	gapUID := plugged.UIDs()[0]
	if amount, _ := plugged[gapUID].Amount(models.KeyAmount); !amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("gap amount: got %s, want 500", amount)
	}
}

func TestPlugGaps_DoesNotModifyInput(t *testing.T) {
	l := mergedLedger(t,
		tx(date(2024, time.January, 5), "100", "100"),
		tx(date(2024, time.February, 1), "30", "150"),
	)

	PlugGaps(l, zerolog.Nop())
	if len(l) != 2 {
		t.Errorf("input ledger changed: got %d transactions, want 2", len(l))
	}
}
