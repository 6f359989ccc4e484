// Package quotes defines the currency and stock quote lookup used by the
// report. Implementations fail a whole call when any symbol fails.
package quotes

import (
	"context"

	"finreport/internal/core"
)

type Provider interface {
	CurrencyRates(ctx context.Context, symbols []string) ([]core.CurrencyRate, error)
	StockPrices(ctx context.Context, symbols []string) ([]core.StockPrice, error)
}
