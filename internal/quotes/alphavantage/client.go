package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finreport/internal/core"
	"finreport/internal/quotes"
)

const DefaultBaseURL = "https://www.alphavantage.co/query"

type Config struct {
	APIKey         string
	BaseURL        string
	TargetCurrency string
	Timeout        time.Duration
}

// Client resolves quotes through the Alpha Vantage query API, one request
// per symbol.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	target  string
}

var _ quotes.Provider = (*Client)(nil)

var ErrMissingAPIKey = errors.New("missing ALPHA_VANTAGE_API_KEY")

func New(cfg Config) *Client {
	return NewWithHTTPClient(cfg, newHTTPClient(cfg.Timeout))
}

func NewWithHTTPClient(cfg Config, hc *http.Client) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	target := strings.ToUpper(strings.TrimSpace(cfg.TargetCurrency))
	if target == "" {
		target = "RUB"
	}
	return &Client{http: hc, baseURL: base, apiKey: cfg.APIKey, target: target}
}

// newHTTPClient builds a pooled client; timeout 0 means no overall limit.
func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

type exchangeRateResponse struct {
	Rate map[string]string `json:"Realtime Currency Exchange Rate"`
	apiMessages
}

type dailySeriesResponse struct {
	Series map[string]map[string]string `json:"Time Series (Daily)"`
	apiMessages
}

// apiMessages are returned with status 200 when the request is rejected.
type apiMessages struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (m apiMessages) message() string {
	for _, s := range []string{m.ErrorMessage, m.Note, m.Information} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CurrencyRates returns the rate of each currency against the target
// currency, in symbol order.
func (c *Client) CurrencyRates(ctx context.Context, symbols []string) ([]core.CurrencyRate, error) {
	out := make([]core.CurrencyRate, 0, len(symbols))
	for _, sym := range symbols {
		var resp exchangeRateResponse
		err := c.get(ctx, sym, url.Values{
			"function":      {"CURRENCY_EXCHANGE_RATE"},
			"from_currency": {sym},
			"to_currency":   {c.target},
		}, &resp)
		if err != nil {
			return nil, err
		}
		if msg := resp.message(); msg != "" {
			return nil, &core.UpstreamError{Symbol: sym, Status: http.StatusOK, Message: msg}
		}
		rate, err := parseQuote(resp.Rate, "5. Exchange Rate")
		if err != nil {
			return nil, &core.UpstreamError{Symbol: sym, Status: http.StatusOK, Message: "malformed exchange rate payload", Err: err}
		}
		out = append(out, core.CurrencyRate{Currency: sym, Rate: rate})
	}
	return out, nil
}

// StockPrices returns the close of the most recent trading day for each
// ticker, in symbol order.
func (c *Client) StockPrices(ctx context.Context, symbols []string) ([]core.StockPrice, error) {
	out := make([]core.StockPrice, 0, len(symbols))
	for _, sym := range symbols {
		var resp dailySeriesResponse
		err := c.get(ctx, sym, url.Values{
			"function": {"TIME_SERIES_DAILY"},
			"symbol":   {sym},
		}, &resp)
		if err != nil {
			return nil, err
		}
		if msg := resp.message(); msg != "" {
			return nil, &core.UpstreamError{Symbol: sym, Status: http.StatusOK, Message: msg}
		}
		latest := ""
		for day := range resp.Series {
			if day > latest {
				latest = day
			}
		}
		price, err := parseQuote(resp.Series[latest], "4. close")
		if err != nil {
			return nil, &core.UpstreamError{Symbol: sym, Status: http.StatusOK, Message: "malformed time series payload", Err: err}
		}
		out = append(out, core.StockPrice{Stock: sym, Price: price})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, symbol string, params url.Values, into any) error {
	if c.apiKey == "" {
		return &core.UpstreamError{Symbol: symbol, Err: ErrMissingAPIKey}
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return &core.UpstreamError{Symbol: symbol, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &core.UpstreamError{Symbol: symbol, Err: err}
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "Quote fetched",
		"component", "quotes",
		"function", params.Get("function"),
		"symbol", symbol,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return &core.UpstreamError{Symbol: symbol, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return &core.UpstreamError{Symbol: symbol, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

func parseQuote(fields map[string]string, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("field %q not found", key)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return v, nil
}
