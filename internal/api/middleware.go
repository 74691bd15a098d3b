/**
 * @description
 * This file contains custom middleware for the HTTP router. The session
 * middleware resolves the bearer token on each request through the identity
 * service and attaches the authenticated user to the request context.
 *
 * @dependencies
 * - context, net/http, strings: Standard Go libraries.
 */

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
)

// userContextKey is a custom type for the context key to avoid collisions.
type userContextKey string

const authenticatedUserKey userContextKey = "authenticatedUser"

// SessionValidator resolves a bearer session token to its user and session.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.User, *domain.Session, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// SessionAuthMiddleware creates a middleware that validates session tokens
// against the session store. Validation rolls the session expiry forward as a
// side effect when it is close to expiring.
func SessionAuthMiddleware(auth SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			user, _, err := auth.ValidateToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, store.ErrSessionNotFound) {
					http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Unable to validate session", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), authenticatedUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticatedUser retrieves the authenticated user from the request context.
// Handlers behind the session middleware should use this to get the caller.
func AuthenticatedUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(authenticatedUserKey).(*domain.User)
	return user, ok
}
