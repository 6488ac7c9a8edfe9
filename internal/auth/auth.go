// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements bearer-token authentication and the role
// authorization rules. Tokens are HS256 JWTs; every authentication
// re-reads the user row, so deleting a user revokes all of their
// outstanding tokens immediately rather than at expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"docshelf/internal/models"
)

var (
	// ErrUnauthenticated means no valid credential was presented (401).
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInsufficientRole means the identity is valid but its role does
	// not permit the operation (403).
	ErrInsufficientRole = errors.New("insufficient role")
)

// Identity is a verified caller: the credential decoded successfully and
// the user row still existed at check time. Role is taken from the live
// row, not the token claim, so role changes apply to open sessions.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

// UserFinder is the slice of the user store the authorizer needs.
type UserFinder interface {
	FindByID(id uuid.UUID) (*models.User, error)
}

// Authorizer issues and verifies bearer tokens and evaluates role rules.
type Authorizer struct {
	users  UserFinder
	secret []byte
	ttl    time.Duration
}

// New creates an Authorizer backed by the given user lookup.
func New(users UserFinder, secret string, ttl time.Duration) *Authorizer {
	return &Authorizer{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// IssueToken creates a signed bearer token for the user.
func (a *Authorizer) IssueToken(u *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"role":  string(u.Role),
		"exp":   time.Now().Add(a.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate verifies a bearer token and resolves it to an Identity.
// The token must decode with a valid signature and unexpired claims, and
// the referenced user must still exist.
func (a *Authorizer) Authenticate(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	// Revocation check: the credential dies with the user row.
	user, err := a.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("authenticate lookup: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// RequireRole checks that the identity sits at or above min on the role
// ladder.
func (a *Authorizer) RequireRole(id *Identity, min models.Role) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if !id.Role.AtLeast(min) {
		return ErrInsufficientRole
	}
	return nil
}

// CanAssignRole is the escalation guard: granting admin or superadmin is
// reserved to superadmins. Any actor that may manage users can hand out
// the non-elevated roles.
func CanAssignRole(actor, target models.Role) bool {
	if target.Elevated() {
		return actor == models.RoleSuperadmin
	}
	return true
}

// CanManageUser is the protection guard: deleting, or changing the role
// of, a target that currently holds admin or superadmin is reserved to
// superadmins.
func CanManageUser(actor, targetCurrent models.Role) bool {
	if targetCurrent.Elevated() {
		return actor == models.RoleSuperadmin
	}
	return true
}
