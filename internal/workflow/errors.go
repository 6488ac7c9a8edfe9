// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package workflow orchestrates the multi-step asset and password-reset
// operations. Storage writes and database writes cannot share a
// transaction, so correctness rests on ordering: a file is written before
// the database references it, and deleted only after the database no
// longer references it. The failure mode this leaves open is an orphaned
// file, never a dangling reference.
package workflow

import "errors"

var (
	// ErrNotFound means the targeted row does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrInvalidOrExpiredToken covers both unknown and expired password
	// reset tokens. Callers get one answer for both cases.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// ValidationError is a caller-fault input problem (400). Its message is
// safe to show to the caller, unlike infrastructure errors.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validation builds a ValidationError with the given caller-facing message.
func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
