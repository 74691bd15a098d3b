package api

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/assetmanager/registry-service/internal/domain"
	"github.com/google/uuid"
)

func TestRoutes_HealthIsPublic(t *testing.T) {
	handlers := NewRegistryHandlers(nil, nil)
	router := Routes(handlers, &stubSessionValidator{}, "")

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", w.Code)
	}
	if w.Body.String() != "healthy" {
		t.Fatalf("unexpected health body %q", w.Body.String())
	}
}

func TestRoutes_ProtectedEndpointsRequireSession(t *testing.T) {
	handlers := NewRegistryHandlers(nil, nil)
	router := Routes(handlers, &stubSessionValidator{}, "")

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/assets"},
		{http.MethodGet, "/assets"},
		{http.MethodPost, "/assets/" + uuid.NewString() + "/transfer"},
		{http.MethodGet, "/assets/" + uuid.NewString() + "/transactions"},
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/notifications/read-all"},
		{http.MethodDelete, "/notifications"},
		{http.MethodPost, "/auth/users/lookup"},
	}

	for _, tt := range protected {
		r := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without a session, got %d", tt.method, tt.path, w.Code)
		}
	}
}

func TestRoutes_CurrentUserIsPublic(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	handlers := NewRegistryHandlers(nil, nil)
	router := Routes(handlers, &stubSessionValidator{token: "good-token", user: user}, "")

	// Without a token /auth/me answers 200 with a null user instead of 401.
	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from anonymous /auth/me, got %d", w.Code)
	}
}

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "https://app.example.com", want: []string{"https://app.example.com"}},
		{name: "multiple with spaces", raw: " https://a.example.com , https://b.example.com ", want: []string{"https://a.example.com", "https://b.example.com"}},
		{name: "stray commas", raw: ",,https://a.example.com,,", want: []string{"https://a.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
