/**
 * @description
 * This file defines the core domain models for the registry-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and read-side
 *   enriched views ensures clear separation of concerns and type safety.
 * - An asset always has exactly one owner; `OwnerID` is never nil once the
 *   row exists, and `UpdatedAt` advances on every ownership change.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Asset is the transferable entity at the center of the registry.
// This struct maps directly to the `assets` table in the database.
type Asset struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserSummary is the denormalized owner/party view embedded in list results
// so clients can render names without a second lookup.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AssetWithOwner is the read-side view returned by asset listings.
type AssetWithOwner struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Owner       UserSummary `json:"owner"`
}

// CreateAssetRequest is the DTO for incoming asset creation API requests.
type CreateAssetRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// TransferAssetRequest is the DTO for incoming transfer API requests.
type TransferAssetRequest struct {
	ToUserID uuid.UUID `json:"to_user_id"`
}
