package core

import (
	"encoding/json"
	"time"
)

const (
	// TimestampLayout is the operation timestamp format of the bank export.
	TimestampLayout = "02.01.2006 15:04:05"
	// DateLayout is used for reference dates and rendered transaction dates.
	DateLayout = "02.01.2006"
	// ReportTimeLayout is the reference timestamp accepted by the report entry points.
	ReportTimeLayout = "2006-01-02 15:04:05"

	CategoryWindowDays = 90
	ReportWindowDays   = 20
	TopTransactionsN   = 5
)

type (
	// Transaction is one row of the bank export. Amount is negative for
	// expenses and non-negative for income or refunds.
	Transaction struct {
		OperatedAt  time.Time `json:"-"`
		CardID      string    `json:"card_id"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
	}

	CardSummary struct {
		LastDigits string `json:"last_digits"`
		TotalSpent Money  `json:"total_spent"`
		Cashback   Money  `json:"cashback"`
	}

	TopTransaction struct {
		Date        string `json:"date"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}

	CurrencyRate struct {
		Currency string  `json:"currency"`
		Rate     float64 `json:"rate"`
	}

	StockPrice struct {
		Stock string  `json:"stock"`
		Price float64 `json:"price"`
	}

	Report struct {
		Greeting        string           `json:"greeting"`
		Cards           []CardSummary    `json:"cards"`
		TopTransactions []TopTransaction `json:"top_transactions"`
		CurrencyRates   []CurrencyRate   `json:"currency_rates"`
		StockPrices     []StockPrice     `json:"stock_prices"`
	}
)

// IsExpense reports whether the transaction debits the account.
func (t Transaction) IsExpense() bool {
	return t.Amount.Cents < 0
}

// Timestamp renders OperatedAt in the export format.
func (t Transaction) Timestamp() string {
	return t.OperatedAt.Format(TimestampLayout)
}

// MarshalJSON adds the export-formatted operation timestamp as "date".
func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		Date string `json:"date"`
		plain
	}{Date: t.Timestamp(), plain: plain(t)})
}

// Normalize replaces nil slices with empty ones so the payload always
// encodes sequences as [] rather than null.
func (r Report) Normalize() Report {
	if r.Cards == nil {
		r.Cards = []CardSummary{}
	}
	if r.TopTransactions == nil {
		r.TopTransactions = []TopTransaction{}
	}
	if r.CurrencyRates == nil {
		r.CurrencyRates = []CurrencyRate{}
	}
	if r.StockPrices == nil {
		r.StockPrices = []StockPrice{}
	}
	return r
}
