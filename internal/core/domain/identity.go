package domain

import (
	"strings"
	"time"
)

// Identity is the authenticated principal issued by the session provider.
// Its ID is the join key into the profiles collection.
type Identity struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	PasswordHash   string    `json:"-"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases and trims an address so every lookup by email
// sees the same key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUpRequest carries the input for registering a new identity.
type SignUpRequest struct {
	Email    string
	Password string
	FullName string // stored as identity metadata
}
