// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system. Roles form a
// strict ladder: user < staff < admin < superadmin.
type Role string

const (
	RoleUser       Role = "user"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// roleLevels assigns each role its position on the ladder. Unknown roles
// map to -1 so they never satisfy an AtLeast check.
var roleLevels = map[Role]int{
	RoleUser:       0,
	RoleStaff:      1,
	RoleAdmin:      2,
	RoleSuperadmin: 3,
}

// Valid reports whether the role is one of the four known tiers.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the role's position on the ladder, or -1 for unknown roles.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// AtLeast reports whether the role sits at or above min on the ladder.
// Unknown roles are never at least anything.
func (r Role) AtLeast(min Role) bool {
	if !r.Valid() {
		return false
	}
	return r.Level() >= min.Level()
}

// Elevated reports whether the role is admin or superadmin. Elevated
// targets are protected: only a superadmin may delete them or change
// their role.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// User represents an account in the catalog, with its position on the
// role ladder.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Phone        *string   `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsSuperadmin returns true if the user holds the superadmin role.
func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}
