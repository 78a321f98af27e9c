package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is one device session. Only the SHA-256 of the secret
// is stored; the plaintext is returned once at login.
type AccessToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name"`
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// PasswordReset is the single live reset code for an email address.
// Issuing a new code overwrites the previous one.
type PasswordReset struct {
	Email     string
	Token     string
	CreatedAt time.Time
}
