// Package report assembles the finance summary payload from the operations
// table and the quote provider.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finreport/internal/analysis"
	"finreport/internal/core"
	applog "finreport/internal/log"
	"finreport/internal/quotes"
	"finreport/internal/sheets"
)

// Symbols lists the quotes requested for a report.
type Symbols struct {
	Currencies []string `json:"user_currencies"`
	Stocks     []string `json:"user_stocks"`
}

type Assembler struct {
	source sheets.TransactionSource
	quotes quotes.Provider
	clock  Clock
}

func NewAssembler(source sheets.TransactionSource, provider quotes.Provider, clock Clock) *Assembler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Assembler{source: source, quotes: provider, clock: clock}
}

// Build produces the report for the 20-day window ending at the calendar
// date of ref. Any failure aborts the whole report.
func (a *Assembler) Build(ctx context.Context, ref time.Time, symbols Symbols) (core.Report, error) {
	greeting := analysis.Greeting(a.clock.Now())

	txs, err := a.source.Transactions(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("load transactions: %w", err)
	}

	window := core.TrailingWindow(ref, core.ReportWindowDays)
	cards, err := analysis.AggregateCards(ctx, txs, window)
	if err != nil {
		return core.Report{}, fmt.Errorf("aggregate cards: %w", err)
	}
	top := analysis.TopTransactions(txs, window, core.TopTransactionsN)

	rates, err := a.quotes.CurrencyRates(ctx, symbols.Currencies)
	if err != nil {
		return core.Report{}, fmt.Errorf("currency rates: %w", err)
	}
	prices, err := a.quotes.StockPrices(ctx, symbols.Stocks)
	if err != nil {
		return core.Report{}, fmt.Errorf("stock prices: %w", err)
	}

	slog.InfoContext(ctx, "Report assembled",
		applog.NewFields().
			WithComponent(applog.ComponentReport).
			WithOperation(applog.OpBuild).
			WithWindow(window.Start, window.End).
			WithCount(len(cards)).
			ToSlice()...)

	return core.Report{
		Greeting:        greeting,
		Cards:           cards,
		TopTransactions: top,
		CurrencyRates:   rates,
		StockPrices:     prices,
	}.Normalize(), nil
}
