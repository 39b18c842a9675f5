package http

import (
	"net/http"

	"budgetly/internal/core"
)

func (s *Server) handleGetMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.ledger.Months(r.Context(), callerUID(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	resp := monthsResponse{Months: make([]string, 0, len(months))}
	for _, m := range months {
		resp.Months = append(resp.Months, string(m))
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleGetLedger returns the full ledger, or one month's slice when the
// month query parameter is present.
func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	uid := callerUID(r)

	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err := core.ParseMonthKey(raw)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid month, want YYYY-MM")
			return
		}
		slice, err := s.ledger.MonthSlice(r.Context(), uid, month)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, toMonthSliceResponse(month, slice))
		return
	}

	ledger, err := s.ledger.Ledger(r.Context(), uid)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toLedgerResponse(ledger))
}
