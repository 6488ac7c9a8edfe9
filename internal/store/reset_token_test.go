package store

import (
	"testing"
	"time"

	"docshelf/internal/models"
)

func TestResetTokenStoreLifecycle(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	s := NewResetTokenStore(db)

	email := "test-resettoken@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := users.Create(email, "pass", nil, models.RoleUser)
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	expires := time.Now().Add(30 * time.Minute)
	created, err := s.Create(user.ID, "hash-one", expires)
	if err != nil {
		t.Fatalf("Create token: %v", err)
	}
	if created.UserID != user.ID {
		t.Errorf("user id: got %s, want %s", created.UserID, user.ID)
	}

	found, err := s.FindByHash("hash-one")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if found == nil {
		t.Fatal("expected token, got nil")
	}

	// Unknown hash is a miss, not an error.
	missing, err := s.FindByHash("no-such-hash")
	if err != nil {
		t.Fatalf("FindByHash (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown hash")
	}

	// DeleteByUser removes every token for that user.
	if _, err := s.Create(user.ID, "hash-two", expires); err != nil {
		t.Fatalf("Create second token: %v", err)
	}
	if err := s.DeleteByUser(user.ID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	for _, h := range []string{"hash-one", "hash-two"} {
		tok, err := s.FindByHash(h)
		if err != nil {
			t.Fatalf("FindByHash after DeleteByUser: %v", err)
		}
		if tok != nil {
			t.Errorf("token %q survived DeleteByUser", h)
		}
	}
}

func TestResetTokenStoreDeleteExpired(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	s := NewResetTokenStore(db)

	email := "test-expiredtokens@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := users.Create(email, "pass", nil, models.RoleUser)
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	if _, err := s.Create(user.ID, "hash-expired", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Create expired token: %v", err)
	}
	if _, err := s.Create(user.ID, "hash-live", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create live token: %v", err)
	}

	if _, err := s.DeleteExpired(); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}

	expired, _ := s.FindByHash("hash-expired")
	if expired != nil {
		t.Error("expired token survived DeleteExpired")
	}
	live, _ := s.FindByHash("hash-live")
	if live == nil {
		t.Error("live token was removed by DeleteExpired")
	}
}

func TestResetTokenStoreCascadeOnUserDelete(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	s := NewResetTokenStore(db)

	email := "test-tokencascade@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	user, err := users.Create(email, "pass", nil, models.RoleUser)
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if _, err := s.Create(user.ID, "hash-cascade", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create token: %v", err)
	}

	if _, err := users.Delete(user.ID); err != nil {
		t.Fatalf("Delete user: %v", err)
	}

	orphan, err := s.FindByHash("hash-cascade")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if orphan != nil {
		t.Error("token survived user deletion; expected cascade delete")
	}
}
