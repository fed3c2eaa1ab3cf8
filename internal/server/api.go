package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"outreach/internal/authn"
	"outreach/pkg/types"
)

func (s *Service) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

func (s *Service) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

type pendingAdminView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone,omitempty"`
}

func (s *Service) handleListPendingAdmins(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	if !session.HasAdminCapability() {
		s.writeJSONError(w, http.StatusForbidden, "admin only")
		return
	}

	pending, err := s.approvals.PendingAdmins(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list pending admins")
		s.writeJSONError(w, http.StatusInternalServerError, "could not load pending admins")
		return
	}

	views := make([]pendingAdminView, 0, len(pending))
	for _, account := range pending {
		views = append(views, pendingAdminView{
			ID:       account.ID,
			Email:    account.Email,
			FullName: account.Metadata.FullName,
			Phone:    account.Metadata.Phone,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"admins":  views,
	})
}

type approveAdminRequest struct {
	UserID string `json:"userId"`
	Action string `json:"action"` // approve | reject
}

func (s *Service) handleApproveAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session := sessionFromContext(ctx)
	if !session.HasAdminCapability() {
		s.writeJSONError(w, http.StatusForbidden, "admin only")
		return
	}

	var input approveAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.UserID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "userId is required")
		return
	}

	var err error
	switch input.Action {
	case "approve":
		err = s.approvals.Approve(ctx, input.UserID)
	case "reject":
		err = s.approvals.Reject(ctx, input.UserID)
	default:
		s.writeJSONError(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}

	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "no pending admin with that id")
			return
		}
		s.logger.WithError(err).Error("failed to resolve admin approval")
		s.writeJSONError(w, http.StatusInternalServerError, "could not update the account")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type setSessionRequest struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// handleSetSession lets an API client that authenticated directly with the
// identity provider install its tokens as the browser session cookie. The
// token is verified before anything is set.
func (s *Service) handleSetSession(w http.ResponseWriter, r *http.Request) {
	var input setSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.IDToken == "" {
		s.writeJSONError(w, http.StatusBadRequest, "idToken is required")
		return
	}

	if _, err := s.verifier.VerifySession(r.Context(), input.IDToken); err != nil {
		s.writeJSONError(w, http.StatusUnauthorized, "token rejected")
		return
	}

	err := s.setSessionCookie(w, &authn.Tokens{
		IDToken:      input.IDToken,
		RefreshToken: input.RefreshToken,
		ExpiresIn:    input.ExpiresIn,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.writeJSONError(w, http.StatusInternalServerError, "could not set session")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Service) handleAPISignOut(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	if session != nil {
		if err := s.provider.SignOut(r.Context(), session.Email); err != nil {
			s.logger.WithError(err).Warn("provider sign out failed")
		}
	}

	s.clearSessionCookie(w)
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
