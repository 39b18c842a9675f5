package http

import (
	"net/http"

	"budgetly/internal/core"
)

// handleEvaluatePurchase runs the purchase rule engine and stores the verdict.
func (s *Server) handleEvaluatePurchase(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := core.ParseDecimalToCents(req.Price)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid price")
		return
	}
	in := core.PurchaseInput{
		ProductName:    req.ProductName,
		Price:          core.Money{Cents: price},
		DurationMonths: req.DurationMonths,
	}
	if req.MonthlyEMI != "" {
		emi, err := core.ParseDecimalToCents(req.MonthlyEMI)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid monthly emi")
			return
		}
		in.MonthlyEMI = core.Money{Cents: emi}
	}

	suggestion, err := s.advice.Evaluate(r.Context(), callerUID(r), in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSuggestionResponse(suggestion))
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.advice.Suggestions(r.Context(), callerUID(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := suggestionsResponse{Suggestions: make([]suggestionResponse, 0, len(suggestions))}
	for _, sg := range suggestions {
		resp.Suggestions = append(resp.Suggestions, toSuggestionResponse(sg))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	if err := s.advice.DeleteSuggestion(r.Context(), callerUID(r), r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
