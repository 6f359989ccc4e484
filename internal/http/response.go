package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finreport/internal/core"
	applog "finreport/internal/log"
	"finreport/internal/storage"
)

type errorBody struct {
	Error string `json:"error"`
}

var (
	errNotFound          = errors.New("not found")
	errArchiveDisabled   = errors.New("report archive is not configured")
	errMissingCategory   = &requestError{msg: "missing required parameter: category"}
	errMissingSearchTerm = &requestError{msg: "missing required parameter: q"}
)

// requestError is a malformed request that is not a field parse failure.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		parseErr    *core.ParseError
		schemaErr   *core.SchemaError
		upstreamErr *core.UpstreamError
		reqErr      *requestError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.Is(err, errNotFound), errors.Is(err, errArchiveDisabled), errors.Is(err, storage.ErrReportNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err on the request logger and sends it as a JSON body.
// Internal errors are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := applog.FromContext(r.Context())
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err)
		msg = http.StatusText(status)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", applog.FieldError, err, "status", status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// writeJSON encodes v without HTML escaping so Cyrillic and symbols stay readable.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
