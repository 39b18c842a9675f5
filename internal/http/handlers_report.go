package http

import (
	"net/http"

	"budgetly/internal/core"
)

// handleMonthlyReport serves the same payload as the dashboard but always
// bypasses the cache, for report consumers that need fresh figures.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	var month core.MonthKey
	if raw := r.URL.Query().Get("month"); raw != "" {
		var err error
		if month, err = core.ParseMonthKey(raw); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid month, want YYYY-MM")
			return
		}
	}

	d, err := s.ledger.MonthDashboard(r.Context(), callerUID(r), month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDashboardResponse(d))
}

// handleExportReport pushes a monthly report to the configured spreadsheet.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		respondError(w, http.StatusServiceUnavailable, "report export is not configured")
		return
	}

	var req exportReportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var month core.MonthKey
	if req.Month != "" {
		var err error
		if month, err = core.ParseMonthKey(req.Month); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid month, want YYYY-MM")
			return
		}
	}

	uid := callerUID(r)
	d, err := s.ledger.MonthDashboard(r.Context(), uid, month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	destination, rows, err := s.exporter.ExportMonthlyReport(r.Context(), uid, d)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report export failed",
			"error", err, "uid", uid, "month", string(d.Month))
		respondError(w, http.StatusBadGateway, "export failed")
		return
	}

	respondJSON(w, http.StatusOK, exportReportResponse{
		Month:       string(d.Month),
		Destination: destination,
		Rows:        rows,
	})
}
