package analysis

import (
	"context"
	"log/slog"
	"time"

	"finreport/internal/core"
	applog "finreport/internal/log"
)

// SpendingByCategory returns the expenses of the given category over the 90
// days ending at ref. Category matching is exact and case-sensitive.
func SpendingByCategory(ctx context.Context, txs []core.Transaction, category string, ref time.Time) []core.Transaction {
	w := core.TrailingWindow(ref, core.CategoryWindowDays)

	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if tx.Category != category || !tx.IsExpense() || !w.Contains(tx.OperatedAt) {
			continue
		}
		out = append(out, tx)
	}

	slog.InfoContext(ctx, "Category spending filtered",
		applog.NewFields().
			WithComponent(applog.ComponentAnalysis).
			WithOperation(applog.OpFilter).
			WithCategory(category).
			WithCount(len(out)).
			WithWindow(w.Start, w.End).
			ToSlice()...)

	return out
}
