package analysis

import (
	"context"
	"log/slog"

	"finreport/internal/core"
)

const cashbackPerUnits = 100

// AggregateCards groups the windowed transactions by card in order of first
// appearance. Totals sum absolute amounts, income included; cashback is one
// unit per full 100 spent.
func AggregateCards(ctx context.Context, txs []core.Transaction, w core.DateWindow) ([]core.CardSummary, error) {
	totals := map[string]core.Money{}
	order := make([]string, 0)

	for i, tx := range txs {
		if !w.Contains(tx.OperatedAt) {
			continue
		}
		if tx.CardID == "" {
			return nil, &core.SchemaError{Field: "card_id", Row: i + 1}
		}
		if _, seen := totals[tx.CardID]; !seen {
			order = append(order, tx.CardID)
		}
		totals[tx.CardID] = totals[tx.CardID].Add(tx.Amount.Abs())
	}

	out := make([]core.CardSummary, 0, len(order))
	for _, card := range order {
		total := totals[card]
		out = append(out, core.CardSummary{
			LastDigits: lastDigits(card),
			TotalSpent: total,
			Cashback:   total.FloorUnits(cashbackPerUnits),
		})
	}

	slog.DebugContext(ctx, "Cards aggregated", "cards", len(out), "window_start", w.Start, "window_end", w.End)
	return out, nil
}

// lastDigits keeps the final four characters of the card id.
func lastDigits(card string) string {
	r := []rune(card)
	if len(r) <= 4 {
		return card
	}
	return string(r[len(r)-4:])
}
