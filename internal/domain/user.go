package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder. The password hash never leaves the
// service; the json tag omits it from every response.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a server-side login session. The ID is the hex-encoded SHA-256
// of the opaque bearer token, so a database leak does not leak usable tokens.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRequest is the DTO for incoming registration API requests.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the DTO for incoming login API requests.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
