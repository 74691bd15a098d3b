package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferDetails is the opaque snapshot stored with every transfer so the
// history stays readable even after the asset is renamed or moves on.
type TransferDetails struct {
	AssetName    string    `json:"asset_name"`
	TransferDate time.Time `json:"transfer_date"`
}

// Transaction is the immutable record of one completed ownership transfer.
// Rows are append-only: never updated or deleted after creation.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	AssetID         uuid.UUID       `json:"asset_id"`
	FromUserID      uuid.UUID       `json:"from_user_id"`
	ToUserID        uuid.UUID       `json:"to_user_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	Details         TransferDetails `json:"details"`
}

// TransactionWithUsers is the read-side view returned by the per-asset
// history listing, enriched with both parties' summaries.
type TransactionWithUsers struct {
	ID              uuid.UUID       `json:"id"`
	AssetID         uuid.UUID       `json:"asset_id"`
	FromUserID      uuid.UUID       `json:"from_user_id"`
	ToUserID        uuid.UUID       `json:"to_user_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	Details         TransferDetails `json:"details"`
	FromUser        UserSummary     `json:"from_user"`
	ToUser          UserSummary     `json:"to_user"`
}
