package analysis

import (
	"sort"

	"finreport/internal/core"
)

// TopTransactions returns up to n windowed transactions with the largest
// signed amount, descending. Equal amounts keep their input order.
func TopTransactions(txs []core.Transaction, w core.DateWindow, n int) []core.TopTransaction {
	ranked := InWindow(txs, w)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Cents > ranked[j].Amount.Cents
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]core.TopTransaction, 0, len(ranked))
	for _, tx := range ranked {
		out = append(out, core.TopTransaction{
			Date:        tx.OperatedAt.Format(core.DateLayout),
			Amount:      tx.Amount,
			Category:    tx.Category,
			Description: tx.Description,
		})
	}
	return out
}
