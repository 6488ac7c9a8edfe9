// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"docshelf/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-create@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := s.Create(email, "testpass123", nil, models.RoleStaff)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Email != email {
		t.Errorf("email: got %q, want %q", user.Email, email)
	}
	if user.Role != models.RoleStaff {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleStaff)
	}
	if user.Phone != nil {
		t.Errorf("phone: got %v, want nil", *user.Phone)
	}
	if user.PasswordHash == "" {
		t.Error("expected non-empty password hash")
	}
	if user.PasswordHash == "testpass123" {
		t.Error("password hash must not be plaintext")
	}
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-duplicate@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	if _, err := s.Create(email, "pass", nil, models.RoleUser); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := s.Create(email, "pass", nil, models.RoleUser)
	if err == nil {
		t.Fatal("expected error for duplicate email")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
}

func TestUserStoreFindByEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-findbyemail@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	// Not found case.
	user, err := s.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	// Create and find.
	created, err := s.Create(email, "pass", nil, models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user, err = s.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", user.ID, created.ID)
	}
}

func TestUserStoreUpdateRole(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-updaterole@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	created, err := s.Create(email, "pass", nil, models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := s.UpdateRole(created.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated user, got nil")
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("role: got %q, want %q", updated.Role, models.RoleAdmin)
	}

	// Unknown user returns nil, not an error.
	missing, err := s.UpdateRole(uuid.New(), models.RoleStaff)
	if err != nil {
		t.Fatalf("UpdateRole (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for non-existent user")
	}
}

func TestUserStoreUpdatePassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-updatepassword@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	created, err := s.Create(email, "oldpass", nil, models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdatePassword(created.ID, "newpass"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	user, err := s.FindByID(created.ID)
	if err != nil || user == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if s.CheckPassword(user, "oldpass") {
		t.Error("old password still accepted after update")
	}
	if !s.CheckPassword(user, "newpass") {
		t.Error("new password rejected after update")
	}
}

func TestUserStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "test-delete@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	created, err := s.Create(email, "pass", nil, models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := s.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted == nil || deleted.ID != created.ID {
		t.Fatal("expected the deleted row back")
	}

	// Second delete is a miss, not an error.
	again, err := s.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete (again): %v", err)
	}
	if again != nil {
		t.Error("expected nil on second delete")
	}
}
