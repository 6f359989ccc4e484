package http

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"finreport/internal/core"
	"finreport/internal/report"
)

func TestParseReportTime(t *testing.T) {
	now := time.Date(2024, 8, 8, 12, 0, 0, 0, time.UTC)

	got, err := parseReportTime(url.Values{}, now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("empty at = %v, %v; want now", got, err)
	}

	got, err = parseReportTime(url.Values{"at": {"2024-01-02 03:04:05"}}, now)
	if err != nil {
		t.Fatalf("parseReportTime: %v", err)
	}
	if want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	_, err = parseReportTime(url.Values{"at": {"yesterday"}}, now)
	var pe *core.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseSymbols(t *testing.T) {
	defaults := report.Symbols{Currencies: []string{"USD"}, Stocks: []string{"AAPL"}}

	tests := []struct {
		name  string
		query url.Values
		want  report.Symbols
	}{
		{"defaults", url.Values{}, defaults},
		{"override currencies", url.Values{"currencies": {"eur, gbp,,EUR"}}, report.Symbols{Currencies: []string{"EUR", "GBP"}, Stocks: []string{"AAPL"}}},
		{"empty stocks", url.Values{"stocks": {""}}, report.Symbols{Currencies: []string{"USD"}, Stocks: []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSymbols(tt.query, defaults); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseSymbols() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", defaultListLimit, false},
		{"5", 5, false},
		{"100000", maxListLimit, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLimit(url.Values{"limit": {tt.in}})
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLimit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("parseLimit(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
