/**
 * @description
 * This file implements the identity collaborator the registry core consumes:
 * durable users, password verification, and session issuance/validation with
 * rolling expiry. Sessions are opaque bearer tokens; only the SHA-256 of a
 * token is stored, so the sessions table never holds a usable credential.
 *
 * @dependencies
 * - crypto/rand, crypto/sha256, encoding: Standard Go libraries for token handling.
 * - golang.org/x/crypto/bcrypt: Password credential hashing.
 * - internal/domain, internal/store: For domain models and data access.
 */

package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTTL           = 30 * 24 * time.Hour
	sessionRenewalWindow = 15 * 24 * time.Hour

	minPasswordLength = 8
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRegistration = errors.New("invalid registration details")
)

var sessionTokenEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// AuthService owns users and sessions. The registry core only ever sees the
// resolved user identity it hands out per request.
type AuthService struct {
	repo       store.Repository
	sessionTTL time.Duration
}

// NewAuthService creates a new identity service instance. A non-positive ttl
// falls back to the 30-day default.
func NewAuthService(repo store.Repository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &AuthService{repo: repo, sessionTTL: ttl}
}

// GenerateSessionToken returns a new opaque bearer token.
func GenerateSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return sessionTokenEncoding.EncodeToString(raw), nil
}

// sessionIDFromToken derives the stored session id from a bearer token.
func sessionIDFromToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Register creates a user plus their first session in one unit and returns
// the plaintext token. A duplicate email surfaces as store.ErrDuplicateEmail.
func (a *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, *domain.Session, string, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, nil, "", fmt.Errorf("%w: name must not be empty", ErrInvalidRegistration)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, "", fmt.Errorf("%w: invalid email address", ErrInvalidRegistration)
	}
	if len(req.Password) < minPasswordLength {
		return nil, nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, "", fmt.Errorf("hash password: %w", err)
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, nil, "", err
	}

	var (
		user    *domain.User
		session *domain.Session
	)
	err = a.repo.ExecTx(ctx, func(tx store.Repository) error {
		user, err = tx.CreateUser(ctx, name, email, string(hash))
		if err != nil {
			return err
		}
		session = &domain.Session{
			ID:        sessionIDFromToken(token),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(a.sessionTTL),
		}
		return tx.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, nil, "", err
	}

	log.Printf("level=info component=auth op=register user_id=%s", user.ID)
	return user, session, token, nil
}

// Login verifies the credential and issues a fresh session.
func (a *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, *domain.Session, string, error) {
	user, err := a.repo.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, "", ErrInvalidCredentials
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, nil, "", err
	}
	session := &domain.Session{
		ID:        sessionIDFromToken(token),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(a.sessionTTL),
	}
	if err := a.repo.CreateSession(ctx, session); err != nil {
		return nil, nil, "", fmt.Errorf("create session: %w", err)
	}

	log.Printf("level=info component=auth op=login user_id=%s", user.ID)
	return user, session, token, nil
}

// Logout invalidates the session behind the given token. Unknown tokens are
// treated as already logged out.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	return a.repo.DeleteSession(ctx, sessionIDFromToken(token))
}

// ValidateToken resolves a bearer token to its user and session. Expired
// sessions are deleted on read. Sessions inside the renewal window are rolled
// forward to a fresh TTL; that side effect is idempotent and safe to race.
func (a *AuthService) ValidateToken(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	sessionID := sessionIDFromToken(token)
	session, user, err := a.repo.FindSessionWithUser(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	if !now.Before(session.ExpiresAt) {
		if err := a.repo.DeleteSession(ctx, sessionID); err != nil {
			log.Printf("level=warn component=auth msg=\"expired session cleanup failed\" err=%v", err)
		}
		return nil, nil, store.ErrSessionNotFound
	}

	if session.ExpiresAt.Sub(now) < sessionRenewalWindow {
		renewed := now.Add(a.sessionTTL)
		if err := a.repo.UpdateSessionExpiry(ctx, sessionID, renewed); err != nil {
			log.Printf("level=warn component=auth msg=\"session renewal failed\" err=%v", err)
		} else {
			session.ExpiresAt = renewed
		}
	}

	return user, session, nil
}

// GetUserByEmail looks up the transfer recipient a client selected by email.
func (a *AuthService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return a.repo.FindUserByEmail(ctx, strings.TrimSpace(email))
}
