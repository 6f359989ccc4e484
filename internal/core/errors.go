package core

import (
	"fmt"
	"net/http"
)

// ParseError reports a date or numeric field that does not match its
// expected format.
type ParseError struct {
	Field  string
	Value  string
	Layout string
	Row    int // 1-based data row, 0 when not read from a table
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s %q", e.Field, e.Value)
	if e.Layout != "" {
		msg += fmt.Sprintf(" (want %s)", e.Layout)
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a required field missing from the table or a row.
type SchemaError struct {
	Field string
	Row   int // 0 when the column itself is missing
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema: missing %s at row %d", e.Field, e.Row)
	}
	return fmt.Sprintf("schema: missing column %s", e.Field)
}

// UpstreamError reports a failed quote lookup. Status is the upstream HTTP
// status, or 0 when no response was received.
type UpstreamError struct {
	Symbol  string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream: symbol %s", e.Symbol)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d %s", e.Status, http.StatusText(e.Status))
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }
