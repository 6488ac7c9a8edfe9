// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package workflow

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"docshelf/internal/mailer"
	"docshelf/internal/models"
)

// resetUserStore is the slice of the user store the reset workflow needs.
type resetUserStore interface {
	FindByEmail(email string) (*models.User, error)
	UpdatePassword(id uuid.UUID, password string) error
}

// resetTokenStore is the slice of the token store the reset workflow needs.
type resetTokenStore interface {
	Create(userID uuid.UUID, tokenHash string, expiresAt time.Time) (*models.PasswordResetToken, error)
	FindByHash(tokenHash string) (*models.PasswordResetToken, error)
	DeleteByUser(userID uuid.UUID) error
	DeleteByID(id uuid.UUID) error
	DeleteExpired() (int64, error)
}

// PasswordReset implements the forgot-password flow: a single-use token is
// mailed to the account address, and redeeming it sets a new password.
// Requesting never reveals whether an address has an account.
type PasswordReset struct {
	users   resetUserStore
	tokens  resetTokenStore
	mail    mailer.Mailer
	baseURL string
	ttl     time.Duration
}

func NewPasswordReset(users resetUserStore, tokens resetTokenStore, mail mailer.Mailer, baseURL string, ttl time.Duration) *PasswordReset {
	return &PasswordReset{users: users, tokens: tokens, mail: mail, baseURL: baseURL, ttl: ttl}
}

// Request issues a reset token for the account with the given email and
// mails a link carrying it. The outcome is identical whether or not the
// address belongs to an account, so callers cannot probe for registered
// emails. Issuing a new token replaces any outstanding one.
func (p *PasswordReset) Request(ctx context.Context, email string) error {
	// Opportunistic cleanup keeps the token table from accumulating
	// expired rows without needing a background job.
	if n, err := p.tokens.DeleteExpired(); err != nil {
		slog.Warn("expired reset token cleanup failed", "error", err)
	} else if n > 0 {
		slog.Debug("cleaned up expired reset tokens", "count", n)
	}

	user, err := p.users.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("looking up account: %w", err)
	}
	if user == nil {
		slog.Info("password reset requested for unknown email")
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}

	if err := p.tokens.DeleteByUser(user.ID); err != nil {
		return fmt.Errorf("replacing reset token: %w", err)
	}
	if _, err := p.tokens.Create(user.ID, hashToken(token), time.Now().Add(p.ttl)); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	resetURL := p.baseURL + "?token=" + url.QueryEscape(token)
	if err := p.mail.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		// The token is valid either way; the user can retry the request.
		slog.Error("sending reset mail failed", "error", err, "user_id", user.ID)
	}
	return nil
}

// Redeem sets a new password for the account the token belongs to and
// invalidates every token the account holds. Unknown and expired tokens
// both come back as ErrInvalidOrExpiredToken.
func (p *PasswordReset) Redeem(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return Validation("password must be at least 8 characters")
	}

	row, err := p.tokens.FindByHash(hashToken(token))
	if err != nil {
		return fmt.Errorf("looking up reset token: %w", err)
	}
	if row == nil {
		return ErrInvalidOrExpiredToken
	}
	if row.Expired(time.Now()) {
		if err := p.tokens.DeleteByID(row.ID); err != nil {
			slog.Warn("removing expired reset token failed", "error", err, "token_id", row.ID)
		}
		return ErrInvalidOrExpiredToken
	}

	if err := p.users.UpdatePassword(row.UserID, newPassword); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if err := p.tokens.DeleteByUser(row.UserID); err != nil {
		// The password changed; a leftover token row is a cleanup
		// concern, not a failure of the reset.
		slog.Warn("removing redeemed reset token failed", "error", err, "user_id", row.UserID)
	}

	slog.Info("password reset completed", "user_id", row.UserID)
	return nil
}

// randomToken returns 32 bytes of hex-encoded randomness. The raw value goes
// in the mail; only its hash is persisted.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
