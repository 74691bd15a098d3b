package api

import (
	"errors"
	"net/http"

	"github.com/assetmanager/registry-service/internal/app"
	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
)

// ListAssetTransactionsHandler returns the transfer history for one asset,
// newest first. Only the asset's current owner may read it.
func (h *RegistryHandlers) ListAssetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	assetID, err := parseIDParam(r, "assetID")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid asset id")
		return
	}

	transactions, err := h.service.ListTransactionsForAsset(r.Context(), user.ID, assetID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAssetNotFound):
			h.writeError(w, http.StatusNotFound, "Asset not found")
		case errors.Is(err, app.ErrNotAssetOwner):
			h.writeError(w, http.StatusForbidden, "You do not have permission to view transactions for this asset")
		default:
			h.writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		}
		return
	}
	if transactions == nil {
		transactions = []domain.TransactionWithUsers{}
	}

	h.writeJSON(w, http.StatusOK, transactions)
}
