// Package ledger merges the cleaned transactions of one account into a
// single chronologically ordered ledger keyed by transaction UID, and can
// plug balance gaps between merged statement files with synthetic entries.
package ledger

import "time"

// DailyTransactionsCap bounds the number of transactions one account can
// have on a single day.
const DailyTransactionsCap = 10000

// dayScale is the size of one day's UID block. Each transaction sits at a
// multiple of 10 inside its block, leaving the nine offsets below it free
// for synthetic entries that must sort immediately before the day.
const dayScale = DailyTransactionsCap * 10

// UIDAssigner hands out transaction UIDs encoding the date and the
// transaction's stable position within its day. A fresh assigner must be
// used per input file so every file's intra-day counters start at one; the
// encoded absolute date still keeps UIDs unique and ordered across files.
//
// The caller must feed dates in the file's intended output order: the
// assigner only remembers the directly preceding date, so an out-of-order
// sequence restarts the intra-day index and produces wrong UIDs.
type UIDAssigner struct {
	day   int64
	index int64
}

// Next returns the UID for the next transaction dated date.
func (a *UIDAssigner) Next(date time.Time) int64 {
	day := int64(date.Year())*10000 + int64(date.Month())*100 + int64(date.Day())
	if day == a.day {
		a.index++
	} else {
		a.day = day
		a.index = 1
	}
	return day*dayScale + a.index*10
}
