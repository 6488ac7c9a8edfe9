// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer delivers transactional email. The SendGrid client is used
// when an API key is configured; otherwise the log mailer writes the message
// to the application log, which is enough for local development.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends account email to users.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGrid(apiKey, fromAddr string) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("DocShelf", fromAddr),
	}
}

func (s *SendGrid) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	subject := "Reset your password"
	to := mail.NewEmail("", toEmail)
	plain := fmt.Sprintf("A password reset was requested for your account.\n\nOpen this link to choose a new password:\n%s\n\nIf you did not request this, ignore this message.", resetURL)
	html := fmt.Sprintf(`<p>A password reset was requested for your account.</p><p><a href="%s">Choose a new password</a></p><p>If you did not request this, ignore this message.</p>`, resetURL)

	message := mail.NewSingleEmail(s.from, subject, to, plain, html)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending reset mail: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sending reset mail: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// Log is a development mailer that writes messages to the log instead of
// sending them.
type Log struct{}

func NewLog() *Log { return &Log{} }

func (l *Log) SendPasswordReset(_ context.Context, toEmail, resetURL string) error {
	slog.Info("password reset mail (not sent, no mail provider configured)",
		"to", toEmail, "reset_url", resetURL)
	return nil
}
