package analysis

import (
	"context"
	"log/slog"
	"strings"

	"finreport/internal/core"
	applog "finreport/internal/log"
)

// Search returns transactions whose category or description contains query.
// Matching is a case-sensitive substring test.
func Search(ctx context.Context, txs []core.Transaction, query string) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if strings.Contains(tx.Category, query) || strings.Contains(tx.Description, query) {
			out = append(out, tx)
		}
	}

	slog.InfoContext(ctx, "Transactions searched",
		applog.NewFields().
			WithComponent(applog.ComponentAnalysis).
			WithOperation(applog.OpSearch).
			WithQuery(query).
			WithCount(len(out)).
			ToSlice()...)
	return out
}
