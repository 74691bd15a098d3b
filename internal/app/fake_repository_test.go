package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
	"github.com/google/uuid"
)

// fakeRepository is an in-memory store.Repository used by the service tests.
// ExecTx runs the callback against a deep copy of the state and only merges
// the copy back when the callback succeeds, mirroring the all-or-nothing
// visibility of a real database transaction.
type fakeRepository struct {
	store.Repository

	users         map[uuid.UUID]*domain.User
	usersByEmail  map[string]uuid.UUID
	sessions      map[string]*domain.Session
	assets        map[uuid.UUID]*domain.Asset
	transactions  []domain.Transaction
	notifications []domain.Notification

	failCreateAsset        bool
	failAppendTransaction  bool
	failCreateNotification bool
	failListAssets         bool

	commits int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:        make(map[uuid.UUID]*domain.User),
		usersByEmail: make(map[string]uuid.UUID),
		sessions:     make(map[string]*domain.Session),
		assets:       make(map[uuid.UUID]*domain.Asset),
	}
}

func (f *fakeRepository) addUser(name, email string) *domain.User {
	user := &domain.User{ID: uuid.New(), Name: name, Email: email, CreatedAt: time.Now()}
	f.users[user.ID] = user
	f.usersByEmail[strings.ToLower(email)] = user.ID
	return user
}

func (f *fakeRepository) addAsset(ownerID uuid.UUID, name string) *domain.Asset {
	created := time.Now().Add(-time.Hour)
	asset := &domain.Asset{ID: uuid.New(), Name: name, OwnerID: ownerID, CreatedAt: created, UpdatedAt: created}
	f.assets[asset.ID] = asset
	return asset
}

func (f *fakeRepository) snapshot() *fakeRepository {
	clone := newFakeRepository()
	for id, u := range f.users {
		userCopy := *u
		clone.users[id] = &userCopy
	}
	for email, id := range f.usersByEmail {
		clone.usersByEmail[email] = id
	}
	for id, s := range f.sessions {
		sessionCopy := *s
		clone.sessions[id] = &sessionCopy
	}
	for id, a := range f.assets {
		assetCopy := *a
		clone.assets[id] = &assetCopy
	}
	clone.transactions = append(clone.transactions, f.transactions...)
	clone.notifications = append(clone.notifications, f.notifications...)
	clone.failCreateAsset = f.failCreateAsset
	clone.failAppendTransaction = f.failAppendTransaction
	clone.failCreateNotification = f.failCreateNotification
	clone.failListAssets = f.failListAssets
	return clone
}

func (f *fakeRepository) ExecTx(ctx context.Context, fn func(store.Repository) error) error {
	clone := f.snapshot()
	if err := fn(clone); err != nil {
		return err
	}
	f.users = clone.users
	f.usersByEmail = clone.usersByEmail
	f.sessions = clone.sessions
	f.assets = clone.assets
	f.transactions = clone.transactions
	f.notifications = clone.notifications
	f.commits++
	return nil
}

func (f *fakeRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	key := strings.ToLower(email)
	if _, exists := f.usersByEmail[key]; exists {
		return nil, store.ErrDuplicateEmail
	}
	user := &domain.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[user.ID] = user
	f.usersByEmail[key] = user.ID
	return user, nil
}

func (f *fakeRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (f *fakeRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, ok := f.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return f.FindUserByID(ctx, id)
}

func (f *fakeRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	sessionCopy := *session
	f.sessions[session.ID] = &sessionCopy
	return nil
}

func (f *fakeRepository) FindSessionWithUser(ctx context.Context, sessionID string) (*domain.Session, *domain.User, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil, store.ErrSessionNotFound
	}
	user, err := f.FindUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	sessionCopy := *session
	return &sessionCopy, user, nil
}

func (f *fakeRepository) UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error {
	session, ok := f.sessions[sessionID]
	if !ok {
		return store.ErrSessionNotFound
	}
	session.ExpiresAt = expiresAt
	return nil
}

func (f *fakeRepository) DeleteSession(ctx context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeRepository) CreateAsset(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*domain.Asset, error) {
	if f.failCreateAsset {
		return nil, errors.New("forced asset insert failure")
	}
	now := time.Now()
	asset := &domain.Asset{ID: uuid.New(), Name: name, Description: description, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	f.assets[asset.ID] = asset
	assetCopy := *asset
	return &assetCopy, nil
}

func (f *fakeRepository) FindAssetByID(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error) {
	asset, ok := f.assets[assetID]
	if !ok {
		return nil, store.ErrAssetNotFound
	}
	assetCopy := *asset
	return &assetCopy, nil
}

func (f *fakeRepository) FindAssetByIDForUpdate(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error) {
	return f.FindAssetByID(ctx, assetID)
}

func (f *fakeRepository) ListAssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AssetWithOwner, error) {
	if f.failListAssets {
		return nil, errors.New("forced asset list failure")
	}
	owner, err := f.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var assets []domain.AssetWithOwner
	for _, a := range f.assets {
		if a.OwnerID != ownerID {
			continue
		}
		assets = append(assets, domain.AssetWithOwner{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
			Owner:       domain.UserSummary{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		})
	}
	return assets, nil
}

func (f *fakeRepository) ReassignAssetOwner(ctx context.Context, assetID uuid.UUID, newOwnerID uuid.UUID) (*domain.Asset, error) {
	asset, ok := f.assets[assetID]
	if !ok {
		return nil, store.ErrAssetNotFound
	}
	asset.OwnerID = newOwnerID
	asset.UpdatedAt = time.Now()
	assetCopy := *asset
	return &assetCopy, nil
}

func (f *fakeRepository) AppendTransaction(ctx context.Context, assetID, fromUserID, toUserID uuid.UUID, details domain.TransferDetails) (*domain.Transaction, error) {
	if f.failAppendTransaction {
		return nil, errors.New("forced transaction insert failure")
	}
	txn := domain.Transaction{
		ID:              uuid.New(),
		AssetID:         assetID,
		FromUserID:      fromUserID,
		ToUserID:        toUserID,
		TransactionDate: time.Now(),
		Details:         details,
	}
	f.transactions = append(f.transactions, txn)
	return &txn, nil
}

func (f *fakeRepository) ListTransactionsForAsset(ctx context.Context, assetID uuid.UUID) ([]domain.TransactionWithUsers, error) {
	var result []domain.TransactionWithUsers
	for _, t := range f.transactions {
		if t.AssetID != assetID {
			continue
		}
		result = append(result, domain.TransactionWithUsers{
			ID:              t.ID,
			AssetID:         t.AssetID,
			FromUserID:      t.FromUserID,
			ToUserID:        t.ToUserID,
			TransactionDate: t.TransactionDate,
			Details:         t.Details,
		})
	}
	return result, nil
}

func (f *fakeRepository) CreateNotification(ctx context.Context, n domain.NewNotification) (*domain.Notification, error) {
	if f.failCreateNotification {
		return nil, errors.New("forced notification insert failure")
	}
	notification := domain.Notification{
		ID:                   uuid.New(),
		UserID:               n.UserID,
		Type:                 n.Type,
		Message:              n.Message,
		RelatedAssetID:       n.RelatedAssetID,
		RelatedTransactionID: n.RelatedTransactionID,
		CreatedAt:            time.Now(),
	}
	f.notifications = append(f.notifications, notification)
	return &notification, nil
}

func (f *fakeRepository) ListNotificationsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	var result []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (f *fakeRepository) MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error) {
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID && f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
			notificationCopy := f.notifications[i]
			return &notificationCopy, nil
		}
	}
	return nil, store.ErrNotificationNotFound
}

func (f *fakeRepository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var updated int64
	for i := range f.notifications {
		if f.notifications[i].UserID == userID && !f.notifications[i].IsRead {
			f.notifications[i].IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (f *fakeRepository) DeleteNotification(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error) {
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID && f.notifications[i].UserID == userID {
			deleted := f.notifications[i]
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, store.ErrNotificationNotFound
}

func (f *fakeRepository) DeleteAllNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	var kept []domain.Notification
	var deleted int64
	for _, n := range f.notifications {
		if n.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return deleted, nil
}

func (f *fakeRepository) notificationsFor(userID uuid.UUID, notificationType string) []domain.Notification {
	var result []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && n.Type == notificationType {
			result = append(result, n)
		}
	}
	return result
}

// fakePublisher records published events.
type fakePublisher struct {
	published []publishedEvent
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

func (p *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.published = append(p.published, publishedEvent{exchange: exchange, routingKey: routingKey, body: body})
	return nil
}

func (p *fakePublisher) Close() {}
