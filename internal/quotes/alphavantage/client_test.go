package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finreport/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(Config{APIKey: "demo", BaseURL: srv.URL, TargetCurrency: "rub"}, srv.Client())
}

func TestCurrencyRates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "CURRENCY_EXCHANGE_RATE" || q.Get("to_currency") != "RUB" || q.Get("apikey") != "demo" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		rate := map[string]string{"USD": "91.5", "EUR": "99.25"}[q.Get("from_currency")]
		_, _ = w.Write([]byte(`{"Realtime Currency Exchange Rate":{"1. From_Currency Code":"` + q.Get("from_currency") + `","5. Exchange Rate":"` + rate + `"}}`))
	})

	got, err := c.CurrencyRates(context.Background(), []string{"USD", "EUR"})
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	want := []core.CurrencyRate{{Currency: "USD", Rate: 91.5}, {Currency: "EUR", Rate: 99.25}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCurrencyRatesUpstreamStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from_currency") == "XXX" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"Realtime Currency Exchange Rate":{"5. Exchange Rate":"1"}}`))
	})

	got, err := c.CurrencyRates(context.Background(), []string{"USD", "XXX"})
	var ue *core.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Symbol != "XXX" || ue.Status != http.StatusBadGateway {
		t.Fatalf("unexpected error details: %+v", ue)
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %+v", got)
	}
}

func TestCurrencyRatesAPIMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})
	_, err := c.CurrencyRates(context.Background(), []string{"USD"})
	var ue *core.UpstreamError
	if !errors.As(err, &ue) || ue.Message == "" {
		t.Fatalf("expected UpstreamError with message, got %v", err)
	}
}

func TestStockPricesLatestClose(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") != "TIME_SERIES_DAILY" {
			t.Errorf("unexpected function %s", r.URL.Query().Get("function"))
		}
		_, _ = w.Write([]byte(`{"Meta Data":{},"Time Series (Daily)":{
			"2024-08-06":{"4. close":"207.23"},
			"2024-08-08":{"4. close":"213.31"},
			"2024-08-07":{"4. close":"209.82"}}}`))
	})

	got, err := c.StockPrices(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if len(got) != 1 || got[0] != (core.StockPrice{Stock: "AAPL", Price: 213.31}) {
		t.Fatalf("unexpected prices: %+v", got)
	}
}

func TestStockPricesMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Time Series (Daily)":{}}`))
	})
	_, err := c.StockPrices(context.Background(), []string{"MSFT"})
	var ue *core.UpstreamError
	if !errors.As(err, &ue) || ue.Symbol != "MSFT" {
		t.Fatalf("expected UpstreamError for MSFT, got %v", err)
	}
}

func TestEmptySymbolsAndMissingKey(t *testing.T) {
	c := NewWithHTTPClient(Config{}, http.DefaultClient)
	rates, err := c.CurrencyRates(context.Background(), nil)
	if err != nil || len(rates) != 0 {
		t.Fatalf("empty symbols: %+v %v", rates, err)
	}
	_, err = c.StockPrices(context.Background(), []string{"AAPL"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
