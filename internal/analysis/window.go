// Package analysis holds the transaction windowing, grouping and ranking
// logic behind the finance report. Functions never modify the slice they
// are given.
package analysis

import (
	"strings"
	"time"

	"finreport/internal/core"
)

// InWindow returns a new slice with the transactions that fall in w,
// preserving order.
func InWindow(txs []core.Transaction, w core.DateWindow) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if w.Contains(tx.OperatedAt) {
			out = append(out, tx)
		}
	}
	return out
}

// ReferenceDate resolves an optional dd.mm.yyyy reference date; an empty
// string selects the calendar date of now.
func ReferenceDate(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return core.DateOf(now), nil
	}
	return core.ParseDate(s)
}
