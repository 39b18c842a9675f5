package http

import (
	"net/http"

	"budgetly/internal/core"
)

func (s *Server) parseIncomeRequest(w http.ResponseWriter, r *http.Request) (core.IncomeEntry, bool) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return core.IncomeEntry{}, false
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return core.IncomeEntry{}, false
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return core.IncomeEntry{}, false
	}

	return core.IncomeEntry{
		Date:   date,
		Label:  req.Label,
		Source: req.Source,
		Amount: core.Money{Cents: cents},
	}, true
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.parseIncomeRequest(w, r)
	if !ok {
		return
	}

	uid := callerUID(r)
	ledger, err := s.ledger.AddIncome(r.Context(), uid, entry)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusCreated, toLedgerResponse(ledger))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.parseIncomeRequest(w, r)
	if !ok {
		return
	}
	entry.ID = r.PathValue("id")

	uid := callerUID(r)
	ledger, err := s.ledger.UpdateIncome(r.Context(), uid, entry)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusOK, toLedgerResponse(ledger))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.deleteEntry(w, r, core.KindIncome)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteEntry(w, r, core.KindExpense)
}

// deleteEntry removes an entry by ID, scoped to the route's kind so the
// income route cannot delete expenses or vice versa.
func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request, kind core.EntryKind) {
	uid := callerUID(r)
	ledger, err := s.ledger.DeleteEntry(r.Context(), uid, r.PathValue("id"), kind)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusOK, toLedgerResponse(ledger))
}
