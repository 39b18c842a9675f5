package http

import (
	"net/http"

	"budgetly/internal/core"
)

// handleDashboard serves one month's entries plus derived metrics. An absent
// month parameter selects the current calendar month. Responses are cached
// per user and month until a mutation invalidates them.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	uid := callerUID(r)

	var month core.MonthKey
	if raw := r.URL.Query().Get("month"); raw != "" {
		var err error
		if month, err = core.ParseMonthKey(raw); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid month, want YYYY-MM")
			return
		}
	}

	key := s.dashCacheKey(uid, string(month))
	if cached, ok := s.dashCache.Get(key); ok {
		s.logger.DebugContext(r.Context(), "Dashboard cache hit",
			"uid", uid, "month", string(month))
		respondJSON(w, http.StatusOK, cached)
		return
	}

	d, err := s.ledger.MonthDashboard(r.Context(), uid, month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := toDashboardResponse(d)
	s.dashCache.Set(key, resp)
	respondJSON(w, http.StatusOK, resp)
}
