package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a single-use, time-boxed credential for resetting
// a forgotten password. Only the SHA-256 hash of the token is persisted;
// the plaintext token exists solely in the reset link sent to the user.
// Rows cascade-delete with their user.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token's expiry timestamp has passed.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
