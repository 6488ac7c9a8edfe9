// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docshelf/internal/models"
)

// ResetTokenStore handles password-reset token persistence. Only token
// hashes are ever stored.
type ResetTokenStore struct {
	db *sql.DB
}

// NewResetTokenStore creates a new ResetTokenStore with the given database
// connection.
func NewResetTokenStore(db *sql.DB) *ResetTokenStore {
	return &ResetTokenStore{db: db}
}

// tokenColumns lists the columns selected in reset-token queries.
const tokenColumns = `id, user_id, token_hash, expires_at, created_at`

// Create inserts a new reset token row for a user.
func (s *ResetTokenStore) Create(userID uuid.UUID, tokenHash string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := s.db.QueryRow(`
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING `+tokenColumns,
		userID, tokenHash, expiresAt,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}
	return t, nil
}

// FindByHash retrieves a reset token by its hash. Returns nil if not found.
func (s *ResetTokenStore) FindByHash(tokenHash string) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := s.db.QueryRow(`
		SELECT `+tokenColumns+` FROM password_reset_tokens WHERE token_hash = $1
	`, tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return t, nil
}

// DeleteByUser removes every reset token belonging to a user. Issuing a
// new token and redeeming any token both funnel through here, which is
// what keeps at most one valid token per user.
func (s *ResetTokenStore) DeleteByUser(userID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete reset tokens by user: %w", err)
	}
	return nil
}

// DeleteByID removes a single reset token row.
func (s *ResetTokenStore) DeleteByID(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

// DeleteExpired removes all tokens past their expiry and returns how many
// rows were cleaned up.
func (s *ResetTokenStore) DeleteExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM password_reset_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
