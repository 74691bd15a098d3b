package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification types cover every lifecycle event the registry records,
// including the failure diagnostics written outside a rolled-back unit.
const (
	NotificationAssetCreated      = "asset_created"
	NotificationAssetCreateFailed = "asset_create_failed"
	NotificationAssetSent         = "asset_sent"
	NotificationAssetReceived     = "asset_received"
	NotificationTransferFailed    = "transfer_failed"
	NotificationFetchFailed       = "fetch_failed"
)

// Notification is one entry in a user's mailbox of lifecycle events.
// Only the recipient may mark it read or delete it.
type Notification struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	Type                 string     `json:"type"`
	Message              string     `json:"message"`
	IsRead               bool       `json:"is_read"`
	RelatedAssetID       *uuid.UUID `json:"related_asset_id,omitempty"`
	RelatedTransactionID *uuid.UUID `json:"related_transaction_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// NewNotification carries the fields callers control when recording a
// notification; id, read flag and timestamp are assigned by the store.
type NewNotification struct {
	UserID               uuid.UUID
	Type                 string
	Message              string
	RelatedAssetID       *uuid.UUID
	RelatedTransactionID *uuid.UUID
}
