/**
 * @description
 * This file contains the core business logic for the registry-service. The `Service`
 * struct orchestrates the asset lifecycle: creation, ownership transfer, history
 * reads, and the per-user notification mailbox.
 *
 * Key features:
 * - Every multi-step mutation runs inside one database transaction via the
 *   repository's ExecTx, so a failing step leaves no partial writes behind.
 * - Failures additionally record a diagnostic notification for the requester
 *   in a second, independently committed unit. That write is best-effort: its
 *   own failure is logged and swallowed so it never masks the primary error.
 * - Publishes lifecycle events to RabbitMQ for asynchronous consumers.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For lifecycle event publication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
	"github.com/assetmanager/registry-service/pkg/rabbitmq"
	"github.com/google/uuid"
)

var (
	ErrNotAssetOwner       = errors.New("requester does not own this asset")
	ErrInvalidAssetName    = errors.New("asset name must not be empty")
	ErrTransferRateLimited = errors.New("too many transfer attempts")
)

// RateLimiter is the contract for the optional distributed transfer limiter.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope string, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the core business logic for the asset registry.
type Service struct {
	repo          store.Repository
	events        rabbitmq.Publisher
	eventExchange string

	transferLimiter        RateLimiter
	transferLimitPerMinute int
}

// NewService creates a new registry service instance.
func NewService(repo store.Repository, events rabbitmq.Publisher, eventExchange string) *Service {
	return &Service{
		repo:          repo,
		events:        events,
		eventExchange: eventExchange,
	}
}

// SetTransferRateLimiter enables per-user rate limiting of transfer attempts.
func (s *Service) SetTransferRateLimiter(limiter RateLimiter, limitPerMinute int) {
	s.transferLimiter = limiter
	s.transferLimitPerMinute = limitPerMinute
}

// CreateAsset registers a new asset owned by ownerID. The asset row and its
// creation notification commit in one unit; on failure a creation-failure
// notification is recorded outside the discarded unit.
func (s *Service) CreateAsset(ctx context.Context, ownerID uuid.UUID, req domain.CreateAssetRequest) (*domain.Asset, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidAssetName
	}

	var created *domain.Asset
	err := s.repo.ExecTx(ctx, func(tx store.Repository) error {
		asset, err := tx.CreateAsset(ctx, ownerID, name, req.Description)
		if err != nil {
			return err
		}
		_, err = tx.CreateNotification(ctx, domain.NewNotification{
			UserID:         ownerID,
			Type:           domain.NotificationAssetCreated,
			Message:        fmt.Sprintf("Your new asset %q has been created successfully.", name),
			RelatedAssetID: &asset.ID,
		})
		if err != nil {
			return err
		}
		created = asset
		return nil
	})
	if err != nil {
		log.Printf("level=error component=registry op=create_asset owner_id=%s err=%v", ownerID, err)
		s.recordFailureNotification(ctx, ownerID, domain.NotificationAssetCreateFailed,
			fmt.Sprintf("Failed to create asset %q. Please try again.", name), nil, nil)
		return nil, fmt.Errorf("create asset: %w", err)
	}

	s.publish(ctx, "asset.created", domain.AssetCreatedEvent{
		AssetID:   created.ID,
		OwnerID:   created.OwnerID,
		Name:      created.Name,
		Timestamp: created.CreatedAt,
	})
	return created, nil
}

// ListAssets returns the caller's assets enriched with owner summaries.
// A persistence failure is reported to the caller and, best-effort, to the
// caller's mailbox so they see it even after the page is gone.
func (s *Service) ListAssets(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetWithOwner, error) {
	assets, err := s.repo.ListAssetsByOwner(ctx, ownerID)
	if err != nil {
		log.Printf("level=error component=registry op=list_assets owner_id=%s err=%v", ownerID, err)
		s.recordFailureNotification(ctx, ownerID, domain.NotificationFetchFailed,
			"Failed to fetch your assets. Please refresh the page.", nil, nil)
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

// TransferAsset moves ownership of assetID from requesterID to toUserID.
//
// The primary unit validates (asset exists, requester owns it, recipient
// exists), reassigns the owner, appends the transaction-log entry, and writes
// the sent/received notification pair, all in one unit. Any failure rolls the
// whole unit back, records a failure notification for the requester in an
// independent unit, and re-signals the error: classified errors unchanged,
// everything else wrapped.
//
// The asset row is loaded FOR UPDATE, so of two concurrent transfers the
// second observes the first's committed owner and fails the ownership check.
func (s *Service) TransferAsset(ctx context.Context, requesterID, assetID, toUserID uuid.UUID) (*domain.Asset, error) {
	if err := s.consumeTransferBudget(ctx, requesterID); err != nil {
		return nil, err
	}

	var (
		updated       *domain.Asset
		transactionID uuid.UUID
	)
	err := s.repo.ExecTx(ctx, func(tx store.Repository) error {
		asset, err := tx.FindAssetByIDForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if asset.OwnerID != requesterID {
			return ErrNotAssetOwner
		}
		if _, err := tx.FindUserByID(ctx, toUserID); err != nil {
			return fmt.Errorf("recipient lookup: %w", err)
		}

		updated, err = tx.ReassignAssetOwner(ctx, assetID, toUserID)
		if err != nil {
			return err
		}

		txn, err := tx.AppendTransaction(ctx, assetID, requesterID, toUserID, domain.TransferDetails{
			AssetName:    asset.Name,
			TransferDate: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		transactionID = txn.ID

		_, err = tx.CreateNotification(ctx, domain.NewNotification{
			UserID:               requesterID,
			Type:                 domain.NotificationAssetSent,
			Message:              fmt.Sprintf("You have transferred %q to another user.", asset.Name),
			RelatedAssetID:       &assetID,
			RelatedTransactionID: &txn.ID,
		})
		if err != nil {
			return err
		}
		_, err = tx.CreateNotification(ctx, domain.NewNotification{
			UserID:               toUserID,
			Type:                 domain.NotificationAssetReceived,
			Message:              fmt.Sprintf("You have received %q from another user.", asset.Name),
			RelatedAssetID:       &assetID,
			RelatedTransactionID: &txn.ID,
		})
		return err
	})
	if err != nil {
		log.Printf("level=warn component=registry op=transfer_asset outcome=failed requester_id=%s asset_id=%s to_user_id=%s err=%v",
			requesterID, assetID, toUserID, err)
		reason := transferFailureMessage(err)
		s.recordFailureNotification(ctx, requesterID, domain.NotificationTransferFailed, reason, &assetID, nil)
		s.publish(ctx, "asset.transfer.failed", domain.AssetTransferFailedEvent{
			AssetID:     assetID,
			RequesterID: requesterID,
			Reason:      reason,
			Timestamp:   time.Now().UTC(),
		})
		if isClassified(err) {
			return nil, err
		}
		return nil, fmt.Errorf("transfer asset: %w", err)
	}

	log.Printf("level=info component=registry op=transfer_asset outcome=committed asset_id=%s from_user_id=%s to_user_id=%s transaction_id=%s",
		assetID, requesterID, toUserID, transactionID)
	s.publish(ctx, "asset.transferred", domain.AssetTransferredEvent{
		AssetID:       assetID,
		TransactionID: transactionID,
		FromUserID:    requesterID,
		ToUserID:      toUserID,
		Timestamp:     updated.UpdatedAt,
	})
	return updated, nil
}

// ListTransactionsForAsset returns an asset's transfer history, newest first.
// Only the current owner may read it.
func (s *Service) ListTransactionsForAsset(ctx context.Context, requesterID, assetID uuid.UUID) ([]domain.TransactionWithUsers, error) {
	asset, err := s.repo.FindAssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.OwnerID != requesterID {
		return nil, ErrNotAssetOwner
	}
	transactions, err := s.repo.ListTransactionsForAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// ListNotifications returns the caller's mailbox, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	return s.repo.ListNotificationsForUser(ctx, userID)
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error) {
	return s.repo.MarkNotificationRead(ctx, notificationID, userID)
}

// MarkAllNotificationsRead flags the caller's entire mailbox as read.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

// DeleteNotification removes one of the caller's notifications.
func (s *Service) DeleteNotification(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error) {
	return s.repo.DeleteNotification(ctx, notificationID, userID)
}

// DeleteAllNotifications empties the caller's mailbox.
func (s *Service) DeleteAllNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteAllNotifications(ctx, userID)
}

// recordFailureNotification writes a diagnostic notification in its own unit,
// after the failed primary unit has been rolled back. A notification written
// inside that unit would vanish with the rollback and the user would never
// learn their operation failed. Errors here are swallowed: the primary error
// is the one the caller must see.
func (s *Service) recordFailureNotification(ctx context.Context, userID uuid.UUID, notificationType, message string, assetID, transactionID *uuid.UUID) {
	_, err := s.repo.CreateNotification(ctx, domain.NewNotification{
		UserID:               userID,
		Type:                 notificationType,
		Message:              message,
		RelatedAssetID:       assetID,
		RelatedTransactionID: transactionID,
	})
	if err != nil {
		log.Printf("level=error component=registry msg=\"failure notification dropped\" user_id=%s type=%s err=%v",
			userID, notificationType, err)
	}
}

func (s *Service) consumeTransferBudget(ctx context.Context, requesterID uuid.UUID) error {
	if s.transferLimiter == nil || s.transferLimitPerMinute <= 0 {
		return nil
	}
	count, retryAfter, err := s.transferLimiter.ConsumeRateLimit(ctx, "asset_transfer", requesterID.String(), s.transferLimitPerMinute, time.Minute)
	if err != nil {
		// A limiter outage must not block transfers.
		log.Printf("level=warn component=registry msg=\"transfer rate limiter unavailable\" err=%v", err)
		return nil
	}
	if count > s.transferLimitPerMinute {
		log.Printf("level=warn component=registry op=transfer_asset outcome=rate_limited requester_id=%s retry_after_s=%d", requesterID, retryAfter)
		return ErrTransferRateLimited
	}
	return nil
}

// publish sends a lifecycle event, fire-and-forget.
func (s *Service) publish(ctx context.Context, routingKey string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, s.eventExchange, routingKey, payload); err != nil {
		log.Printf("level=warn component=registry msg=\"event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}

// isClassified reports whether err already carries a caller-facing meaning
// and must not be downgraded to an internal error.
func isClassified(err error) bool {
	return errors.Is(err, store.ErrAssetNotFound) ||
		errors.Is(err, store.ErrUserNotFound) ||
		errors.Is(err, ErrNotAssetOwner)
}

func transferFailureMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrAssetNotFound):
		return "Asset not found. Transfer failed."
	case errors.Is(err, ErrNotAssetOwner):
		return "You do not have permission to transfer this asset."
	case errors.Is(err, store.ErrUserNotFound):
		return "Recipient user not found. Transfer failed."
	default:
		return "Failed to transfer asset. Please try again."
	}
}
