/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the registry-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation and handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/google/uuid"
)

// Repository defines the set of methods for interacting with the database.
//
// ExecTx runs fn against a repository whose operations all execute inside a
// single database transaction. If fn returns an error the transaction is
// rolled back and none of its writes become visible; otherwise it commits.
// The orchestrator's multi-step mutations (transfer commit, asset creation
// plus notification) must go through ExecTx so they are all-or-nothing.
type Repository interface {
	ExecTx(ctx context.Context, fn func(Repository) error) error

	// User and session methods
	CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateSession(ctx context.Context, session *domain.Session) error
	FindSessionWithUser(ctx context.Context, sessionID string) (*domain.Session, *domain.User, error)
	UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sessionID string) error

	// Asset ledger methods
	CreateAsset(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*domain.Asset, error)
	FindAssetByID(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error)
	// FindAssetByIDForUpdate locks the asset row for the remainder of the
	// enclosing transaction. Only meaningful inside ExecTx.
	FindAssetByIDForUpdate(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error)
	ListAssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetWithOwner, error)
	ReassignAssetOwner(ctx context.Context, assetID uuid.UUID, newOwnerID uuid.UUID) (*domain.Asset, error)

	// Transaction log methods (append-only)
	AppendTransaction(ctx context.Context, assetID, fromUserID, toUserID uuid.UUID, details domain.TransferDetails) (*domain.Transaction, error)
	ListTransactionsForAsset(ctx context.Context, assetID uuid.UUID) ([]domain.TransactionWithUsers, error)

	// Notification sink methods, all scoped to the recipient
	CreateNotification(ctx context.Context, n domain.NewNotification) (*domain.Notification, error)
	ListNotificationsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error)
	DeleteAllNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
}
