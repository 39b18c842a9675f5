package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budgetly/internal/core"
	"budgetly/internal/services"
	"budgetly/internal/storage"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondDomainError maps domain and storage errors to HTTP statuses:
// not-found to 404, validation failures to 422, everything else to 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, core.ErrEntryNotFound),
		errors.Is(err, services.ErrGroupNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMonthKey),
		errors.Is(err, core.ErrEmptyLabel),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidDuration),
		errors.Is(err, core.ErrNoUnpaidInstallments):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
