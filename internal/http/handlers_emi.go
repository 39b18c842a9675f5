package http

import (
	"net/http"
	"time"

	"budgetly/internal/core"
)

// handleCreateEMIPurchase expands an installment purchase into monthly
// entries, persisted as one batch.
func (s *Server) handleCreateEMIPurchase(w http.ResponseWriter, r *http.Request) {
	var req emiPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.TotalAmount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid total amount")
		return
	}

	startMonth := core.MonthKey(req.StartMonth)
	if req.StartMonth == "" {
		now := time.Now().UTC()
		startMonth = core.NewDate(now.Year(), int(now.Month()), now.Day()).Key()
	} else if startMonth, err = core.ParseMonthKey(req.StartMonth); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid start month, want YYYY-MM")
		return
	}

	uid := callerUID(r)
	ledger, err := s.ledger.AddEMIPurchase(r.Context(), uid, req.ProductName, core.Money{Cents: cents}, req.DurationMonths, startMonth)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusCreated, toLedgerResponse(ledger))
}

func (s *Server) handleListEMIGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.ledger.EMIGroups(r.Context(), callerUID(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	now := time.Now().UTC()
	resp := emiGroupsResponse{Groups: make([]emiGroupResponse, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, toEMIGroupResponse(g, now))
	}
	respondJSON(w, http.StatusOK, resp)
}

// handlePayInstallment records a payment against the group's earliest unpaid
// installment.
func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	var req payInstallmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GroupID == "" {
		respondError(w, http.StatusUnprocessableEntity, "group_id is required")
		return
	}

	uid := callerUID(r)
	group, err := s.ledger.PayInstallment(r.Context(), uid, req.GroupID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusOK, toEMIGroupResponse(group, time.Now().UTC()))
}
