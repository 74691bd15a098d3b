/**
 * @description
 * This file contains the HTTP handlers for the registry-service's asset
 * endpoints. Handlers are responsible for parsing incoming requests, calling
 * the appropriate methods on the application services, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/assetmanager/registry-service/internal/app"
	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RegistryHandlers holds the application services that handlers will use.
type RegistryHandlers struct {
	service *app.Service
	auth    *app.AuthService
}

// NewRegistryHandlers creates a new instance of RegistryHandlers.
func NewRegistryHandlers(service *app.Service, auth *app.AuthService) *RegistryHandlers {
	return &RegistryHandlers{service: service, auth: auth}
}

func (h *RegistryHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func (h *RegistryHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// caller resolves the authenticated user placed in the context by the session
// middleware. A miss means the route is wired outside the protected group.
func (h *RegistryHandlers) caller(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := AuthenticatedUser(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user from context")
		return nil, false
	}
	return user, true
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// CreateAssetHandler handles requests to register a new asset.
func (h *RegistryHandlers) CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req domain.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	asset, err := h.service.CreateAsset(r.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidAssetName) {
			h.writeError(w, http.StatusBadRequest, "Asset name must not be empty")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to create asset")
		return
	}

	h.writeJSON(w, http.StatusCreated, asset)
}

// ListAssetsHandler returns all assets owned by the authenticated user.
func (h *RegistryHandlers) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	assets, err := h.service.ListAssets(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch assets")
		return
	}
	if assets == nil {
		assets = []domain.AssetWithOwner{}
	}

	h.writeJSON(w, http.StatusOK, assets)
}

// TransferAssetHandler handles requests to transfer asset ownership.
func (h *RegistryHandlers) TransferAssetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	assetID, err := parseIDParam(r, "assetID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid asset id")
		return
	}

	var req domain.TransferAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ToUserID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "to_user_id is required")
		return
	}

	asset, err := h.service.TransferAsset(r.Context(), user.ID, assetID, req.ToUserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAssetNotFound):
			h.writeError(w, http.StatusNotFound, "Asset not found")
		case errors.Is(err, store.ErrUserNotFound):
			h.writeError(w, http.StatusNotFound, "Recipient user not found")
		case errors.Is(err, app.ErrNotAssetOwner):
			h.writeError(w, http.StatusForbidden, "Not authorized to transfer this asset")
		case errors.Is(err, app.ErrTransferRateLimited):
			h.writeError(w, http.StatusTooManyRequests, "Too many transfer attempts. Please slow down.")
		default:
			h.writeError(w, http.StatusInternalServerError, "Failed to transfer asset")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, asset)
}
