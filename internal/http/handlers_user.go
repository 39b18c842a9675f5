package http

import (
	"errors"
	"io"
	"net/http"

	"budgetly/internal/core"
	"budgetly/internal/identity"
)

// handleSyncUser creates or refreshes the caller's user document from the
// identity claims, optionally overridden by the request body.
func (s *Server) handleSyncUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := identity.FromContext(r.Context())

	var req syncUserRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u := core.User{
		UID:       claims.UID,
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: claims.Avatar,
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.AvatarURL != "" {
		u.AvatarURL = req.AvatarURL
	}

	synced, err := s.ledger.SyncUser(r.Context(), u)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(synced))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.ledger.Profile(r.Context(), callerUID(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := parseOptionalAmount(req.Savings)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid savings amount")
		return
	}
	savings := core.Money{Cents: cents}

	uid := callerUID(r)
	u, err := s.ledger.UpdateProfile(r.Context(), uid, req.Name, req.Location, req.Occupation, savings)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	// Savings feed the health score, so cached dashboards are stale now.
	s.invalidateDashboards(r, uid)
	respondJSON(w, http.StatusOK, toUserResponse(u))
}
