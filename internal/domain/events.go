package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssetCreatedEvent is published to the event exchange after an asset is
// committed. Fire-and-forget: consumers must tolerate gaps.
type AssetCreatedEvent struct {
	AssetID   uuid.UUID `json:"asset_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// AssetTransferredEvent is published after a transfer commits.
type AssetTransferredEvent struct {
	AssetID       uuid.UUID `json:"asset_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	FromUserID    uuid.UUID `json:"from_user_id"`
	ToUserID      uuid.UUID `json:"to_user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// AssetTransferFailedEvent is published when a transfer attempt is rejected
// or rolled back, mirroring the failure notification the requester receives.
type AssetTransferFailedEvent struct {
	AssetID     uuid.UUID `json:"asset_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}
