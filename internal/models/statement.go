package models

import (
	"sort"

	"github.com/ledgerloom/statement-combiner/internal/flavour"
)

// NoAccountUID identifies statements whose file carries no account identifier.
const NoAccountUID = "NOIDENTIFIER"

// Statement is one account's slice of a single input file: the statement
// header fields plus the transactions in the order the bank listed them.
// A file usually yields exactly one statement, but some banks put several
// accounts into one export.
type Statement struct {
	// File is the path of the source file, kept for log and error messages.
	File string
	// AccountUID is the value of the flavour's identifier field, or
	// NoAccountUID when the file doesn't name the account.
	AccountUID string
	// Flavour is the input configuration the file was parsed with.
	Flavour *flavour.Input
	// Fields holds the statement-level metadata (account_* keys).
	Fields Fields
	// Transactions in source-file order. The flavour's reverse option is
	// already applied, so the slice is in intended output order.
	Transactions []Fields
}

// Ledger is the merged transaction history of one account across all input
// files, keyed by transaction UID. Ascending UID order is ascending
// chronological order with stable intra-day positions.
type Ledger map[int64]Fields

// UIDs returns the ledger keys in ascending order.
func (l Ledger) UIDs() []int64 {
	uids := make([]int64, 0, len(l))
	for uid := range l {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids
}

// Clone returns a copy of the ledger with cloned records.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for uid, tx := range l {
		out[uid] = tx.Clone()
	}
	return out
}
