package http

import (
	"net/http"

	"budgetly/internal/core"
)

func (s *Server) parseExpenseRequest(w http.ResponseWriter, r *http.Request) (core.ExpenseEntry, bool) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return core.ExpenseEntry{}, false
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return core.ExpenseEntry{}, false
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return core.ExpenseEntry{}, false
	}

	return core.ExpenseEntry{
		Date:     date,
		Label:    req.Label,
		Category: req.Category,
		Amount:   core.Money{Cents: cents},
		Type:     core.OneTime,
	}, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.parseExpenseRequest(w, r)
	if !ok {
		return
	}

	uid := callerUID(r)
	ledger, err := s.ledger.AddExpense(r.Context(), uid, entry)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusCreated, toLedgerResponse(ledger))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.parseExpenseRequest(w, r)
	if !ok {
		return
	}
	entry.ID = r.PathValue("id")

	uid := callerUID(r)
	ledger, err := s.ledger.UpdateExpense(r.Context(), uid, entry)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusOK, toLedgerResponse(ledger))
}
