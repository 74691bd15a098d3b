package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/assetmanager/registry-service/internal/app"
	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
)

// sessionResponse is returned by register and login. The token is the opaque
// bearer credential; clients send it back in the Authorization header.
type sessionResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// RegisterHandler creates a new user and their first session.
func (h *RegistryHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, session, token, err := h.auth.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			h.writeError(w, http.StatusConflict, "User already exists")
		case errors.Is(err, app.ErrInvalidRegistration):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, "Failed to create user record")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token, ExpiresAt: session.ExpiresAt})
}

// LoginHandler verifies credentials and issues a fresh session.
func (h *RegistryHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, session, token, err := h.auth.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			h.writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, app.ErrInvalidCredentials):
			h.writeError(w, http.StatusUnauthorized, "Invalid password")
		default:
			h.writeError(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token, ExpiresAt: session.ExpiresAt})
}

// LogoutHandler invalidates the caller's session.
func (h *RegistryHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authorization header required")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CurrentUserHandler resolves the caller from an optional bearer token.
// Missing or invalid tokens yield a null user rather than an error, so the
// frontend can probe login state without special-casing 401s.
func (h *RegistryHandlers) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	user, _, err := h.auth.ValidateToken(r.Context(), token)
	if err != nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// LookupUserByEmailHandler resolves a transfer recipient by email.
func (h *RegistryHandlers) LookupUserByEmailHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r); !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		h.writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	user, err := h.auth.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to look up user")
		return
	}

	h.writeJSON(w, http.StatusOK, domain.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email})
}
