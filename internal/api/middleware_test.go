package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/assetmanager/registry-service/internal/store"
	"github.com/google/uuid"
)

// stubSessionValidator resolves a single known token.
type stubSessionValidator struct {
	token string
	user  *domain.User
	err   error
}

func (s *stubSessionValidator) ValidateToken(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	if token != s.token {
		return nil, nil, store.ErrSessionNotFound
	}
	return s.user, &domain.Session{ID: "session-id", UserID: s.user.ID}, nil
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{name: "valid", header: "Bearer abc123", wantToken: "abc123", wantOK: true},
		{name: "missing header", header: "", wantOK: false},
		{name: "wrong scheme", header: "Basic abc123", wantOK: false},
		{name: "empty token", header: "Bearer   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/assets", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			token, ok := bearerToken(r)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && token != tt.wantToken {
				t.Fatalf("expected token %q, got %q", tt.wantToken, token)
			}
		})
	}
}

func TestSessionAuthMiddleware_AttachesUser(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	validator := &stubSessionValidator{token: "good-token", user: user}

	var seen *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AuthenticatedUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/assets", nil)
	r.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()

	SessionAuthMiddleware(validator)(next).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if seen == nil || seen.ID != user.ID {
		t.Fatalf("expected handler to see user %s, got %+v", user.ID, seen)
	}
}

func TestSessionAuthMiddleware_Rejections(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	tests := []struct {
		name       string
		header     string
		validator  *stubSessionValidator
		wantStatus int
	}{
		{
			name:       "missing header",
			validator:  &stubSessionValidator{token: "good-token", user: user},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown token",
			header:     "Bearer bad-token",
			validator:  &stubSessionValidator{token: "good-token", user: user},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "validator failure",
			header:     "Bearer good-token",
			validator:  &stubSessionValidator{err: errors.New("database down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run for a rejected request")
			})
			r := httptest.NewRequest(http.MethodGet, "/assets", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			SessionAuthMiddleware(tt.validator)(next).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
