package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"finreport/internal/analysis"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReport builds the report for ?at= (default now) and returns the
// payload; the generated id is sent in the X-Report-Id header.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref, err := parseReportTime(q, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	gen, err := s.deps.Reports.Generate(r.Context(), ref, parseSymbols(q, s.deps.Symbols))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("X-Report-Id", gen.ID)
	writeJSON(w, http.StatusOK, gen.Report)
}

// handleSpending returns the category's expenses over the 90 days ending at
// ?date= (dd.mm.yyyy, default today).
func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if strings.TrimSpace(category) == "" {
		writeError(w, r, errMissingCategory)
		return
	}
	ref, err := analysis.ReferenceDate(q.Get("date"), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.deps.Source.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.SpendingByCategory(r.Context(), txs, category, ref))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, r, errMissingSearchTerm)
		return
	}

	txs, err := s.deps.Source.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Search(r.Context(), txs, query))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		writeError(w, r, errArchiveDisabled)
		return
	}
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	reports, err := s.deps.Archive.ListReports(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		writeError(w, r, errArchiveDisabled)
		return
	}

	rep, err := s.deps.Archive.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
