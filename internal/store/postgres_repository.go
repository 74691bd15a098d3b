/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to users, sessions, assets, transactions, and notifications.
 *
 * @dependencies
 * - context, encoding/json, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrAssetNotFound        = errors.New("asset not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicateEmail       = errors.New("email already registered")
)

// DBTX is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx,
// letting every query run either against the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool, pool: pool}
}

// ExecTx runs fn against a transaction-scoped repository. A nested call on a
// repository that is already transaction-scoped joins the enclosing unit.
func (r *PostgresRepository) ExecTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresRepository{db: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CreateUser inserts a new user record and returns it. A unique-constraint
// violation on the email column is reported as ErrDuplicateEmail.
func (r *PostgresRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	user := domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail retrieves a user from the database by their unique email.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`
	err := r.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateSession inserts a new session row keyed by the token hash.
func (r *PostgresRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, session.ID, session.UserID, session.ExpiresAt)
	return err
}

// FindSessionWithUser loads a session and its owning user in one round trip.
func (r *PostgresRepository) FindSessionWithUser(ctx context.Context, sessionID string) (*domain.Session, *domain.User, error) {
	var session domain.Session
	var user domain.User
	query := `
		SELECT s.id, s.user_id, s.expires_at,
		       u.id, u.name, u.email, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt,
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}
	return &session, &user, nil
}

// UpdateSessionExpiry rolls a session's expiry forward. Safe to repeat.
func (r *PostgresRepository) UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE sessions SET expires_at = $1 WHERE id = $2`, expiresAt, sessionID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session. Deleting an absent session is not an error.
func (r *PostgresRepository) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	return err
}

// CreateAsset inserts a new asset owned by ownerID and returns the full row.
func (r *PostgresRepository) CreateAsset(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*domain.Asset, error) {
	asset := domain.Asset{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}
	query := `
		INSERT INTO assets (id, name, description, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, asset.ID, asset.Name, asset.Description, asset.OwnerID).Scan(&asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

const assetColumns = `id, name, description, owner_id, created_at, updated_at`

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var asset domain.Asset
	err := row.Scan(&asset.ID, &asset.Name, &asset.Description, &asset.OwnerID, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// FindAssetByID retrieves a single asset by its ID.
func (r *PostgresRepository) FindAssetByID(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, assetID))
}

// FindAssetByIDForUpdate loads an asset with a row lock so two concurrent
// transfers of the same asset serialize; the loser then fails its ownership
// check against the committed new owner.
func (r *PostgresRepository) FindAssetByIDForUpdate(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1 FOR UPDATE`, assetID))
}

// ListAssetsByOwner retrieves all assets owned by a user, each enriched with
// the owner's display summary for the asset table view.
func (r *PostgresRepository) ListAssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetWithOwner, error) {
	query := `
		SELECT a.id, a.name, a.description, a.created_at, a.updated_at,
		       u.id, u.name, u.email
		FROM assets a
		JOIN users u ON u.id = a.owner_id
		WHERE a.owner_id = $1
		ORDER BY a.created_at
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.AssetWithOwner
	for rows.Next() {
		var a domain.AssetWithOwner
		err := rows.Scan(
			&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt,
			&a.Owner.ID, &a.Owner.Name, &a.Owner.Email,
		)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// ReassignAssetOwner sets a new owner and bumps updated_at. Authorization is
// the caller's responsibility; this is a bare ledger mutation.
func (r *PostgresRepository) ReassignAssetOwner(ctx context.Context, assetID uuid.UUID, newOwnerID uuid.UUID) (*domain.Asset, error) {
	query := `
		UPDATE assets
		SET owner_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + assetColumns
	return scanAsset(r.db.QueryRow(ctx, query, newOwnerID, assetID))
}

// AppendTransaction records one completed transfer with its denormalized
// snapshot. Rows in the transaction log are never updated or deleted.
func (r *PostgresRepository) AppendTransaction(ctx context.Context, assetID, fromUserID, toUserID uuid.UUID, details domain.TransferDetails) (*domain.Transaction, error) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal transfer details: %w", err)
	}

	txn := domain.Transaction{
		ID:         uuid.New(),
		AssetID:    assetID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Details:    details,
	}
	query := `
		INSERT INTO transactions (id, asset_id, from_user_id, to_user_id, details)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING transaction_date
	`
	err = r.db.QueryRow(ctx, query, txn.ID, txn.AssetID, txn.FromUserID, txn.ToUserID, string(detailsJSON)).Scan(&txn.TransactionDate)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListTransactionsForAsset retrieves the transfer history of one asset,
// newest first, enriched with both parties' summaries.
func (r *PostgresRepository) ListTransactionsForAsset(ctx context.Context, assetID uuid.UUID) ([]domain.TransactionWithUsers, error) {
	query := `
		SELECT t.id, t.asset_id, t.from_user_id, t.to_user_id, t.transaction_date, t.details,
		       fu.id, fu.name, fu.email,
		       tu.id, tu.name, tu.email
		FROM transactions t
		JOIN users fu ON fu.id = t.from_user_id
		JOIN users tu ON tu.id = t.to_user_id
		WHERE t.asset_id = $1
		ORDER BY t.transaction_date DESC
	`
	rows, err := r.db.Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.TransactionWithUsers
	for rows.Next() {
		var t domain.TransactionWithUsers
		var detailsJSON []byte
		err := rows.Scan(
			&t.ID, &t.AssetID, &t.FromUserID, &t.ToUserID, &t.TransactionDate, &detailsJSON,
			&t.FromUser.ID, &t.FromUser.Name, &t.FromUser.Email,
			&t.ToUser.ID, &t.ToUser.Name, &t.ToUser.Email,
		)
		if err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &t.Details); err != nil {
				return nil, fmt.Errorf("unmarshal transfer details: %w", err)
			}
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

const notificationColumns = `id, user_id, type, message, is_read, related_asset_id, related_transaction_id, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.IsRead, &n.RelatedAssetID, &n.RelatedTransactionID, &n.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// CreateNotification records a lifecycle event in the recipient's mailbox.
func (r *PostgresRepository) CreateNotification(ctx context.Context, n domain.NewNotification) (*domain.Notification, error) {
	notification := domain.Notification{
		ID:                   uuid.New(),
		UserID:               n.UserID,
		Type:                 n.Type,
		Message:              n.Message,
		RelatedAssetID:       n.RelatedAssetID,
		RelatedTransactionID: n.RelatedTransactionID,
	}
	query := `
		INSERT INTO notifications (id, user_id, type, message, related_asset_id, related_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_read, created_at
	`
	err := r.db.QueryRow(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Message,
		notification.RelatedAssetID,
		notification.RelatedTransactionID,
	).Scan(&notification.IsRead, &notification.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListNotificationsForUser retrieves a user's mailbox, newest first.
func (r *PostgresRepository) ListNotificationsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.IsRead, &n.RelatedAssetID, &n.RelatedTransactionID, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags one notification as read. The user_id predicate
// keeps a user from touching another user's mailbox.
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRow(ctx, query, notificationID, userID))
}

// MarkAllNotificationsRead flags every unread notification for the user and
// returns how many changed.
func (r *PostgresRepository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// DeleteNotification removes one notification, scoped to its recipient.
func (r *PostgresRepository) DeleteNotification(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error) {
	query := `
		DELETE FROM notifications
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRow(ctx, query, notificationID, userID))
}

// DeleteAllNotifications empties the user's mailbox and returns the count.
func (r *PostgresRepository) DeleteAllNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
