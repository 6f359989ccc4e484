package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"finreport/internal/config"
	"finreport/internal/core"
	"finreport/internal/report"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// parseReportTime reads the optional "at" parameter; empty means now.
func parseReportTime(q url.Values, now time.Time) (time.Time, error) {
	at := strings.TrimSpace(q.Get("at"))
	if at == "" {
		return now, nil
	}
	return core.ParseReportTime(at)
}

// parseSymbols reads comma-separated "currencies" and "stocks" parameters.
// A parameter that is absent keeps the configured default; a present but
// empty one requests no quotes of that kind.
func parseSymbols(q url.Values, defaults report.Symbols) report.Symbols {
	out := defaults
	if _, ok := q["currencies"]; ok {
		out.Currencies = splitList(q.Get("currencies"))
	}
	if _, ok := q["stocks"]; ok {
		out.Stocks = splitList(q.Get("stocks"))
	}
	return out
}

func splitList(s string) []string {
	return config.NormalizeSymbols(strings.Split(s, ","))
}

// parseLimit reads the "limit" parameter, clamped to [1, maxListLimit].
func parseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &requestError{msg: "invalid limit " + strconv.Quote(v) + ": must be a positive integer"}
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}
