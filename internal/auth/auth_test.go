package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"docshelf/internal/models"
)

// fakeUsers is an in-memory UserFinder.
type fakeUsers struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (f *fakeUsers) FindByID(id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func testUser(role models.Role) *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "someone@example.com",
		Role:  role,
	}
}

func TestIssueAndAuthenticate(t *testing.T) {
	user := testUser(models.RoleStaff)
	a := New(newFakeUsers(user), "test-secret", time.Hour)

	token, err := a.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	id, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != user.ID {
		t.Errorf("user id: got %s, want %s", id.UserID, user.ID)
	}
	if id.Email != user.Email {
		t.Errorf("email: got %q, want %q", id.Email, user.Email)
	}
	if id.Role != models.RoleStaff {
		t.Errorf("role: got %q, want %q", id.Role, models.RoleStaff)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	a := New(newFakeUsers(), "test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := a.Authenticate(tok); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Authenticate(%q) = %v, want ErrUnauthenticated", tok, err)
		}
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	user := testUser(models.RoleUser)
	users := newFakeUsers(user)

	issuer := New(users, "secret-one", time.Hour)
	verifier := New(users, "secret-two", time.Hour)

	token, err := issuer.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := verifier.Authenticate(token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate with wrong secret = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthenticateRejectsExpired(t *testing.T) {
	user := testUser(models.RoleUser)
	a := New(newFakeUsers(user), "test-secret", -time.Minute)

	token, err := a.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := a.Authenticate(token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate expired = %v, want ErrUnauthenticated", err)
	}
}

// TestAuthenticateRevokedUser verifies that deleting a user invalidates
// outstanding tokens immediately.
func TestAuthenticateRevokedUser(t *testing.T) {
	user := testUser(models.RoleAdmin)
	users := newFakeUsers(user)
	a := New(users, "test-secret", time.Hour)

	token, err := a.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	// Delete the user out from under the token.
	delete(users.users, user.ID)

	if _, err := a.Authenticate(token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate after user delete = %v, want ErrUnauthenticated", err)
	}
}

// TestAuthenticateUsesLiveRole verifies the role comes from the current
// user row, not the token claim.
func TestAuthenticateUsesLiveRole(t *testing.T) {
	user := testUser(models.RoleStaff)
	users := newFakeUsers(user)
	a := New(users, "test-secret", time.Hour)

	token, err := a.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	// Demote after issuance.
	user.Role = models.RoleUser

	id, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.Role != models.RoleUser {
		t.Errorf("role: got %q, want live role %q", id.Role, models.RoleUser)
	}
}

func TestRequireRole(t *testing.T) {
	a := New(newFakeUsers(), "test-secret", time.Hour)

	tests := []struct {
		name    string
		id      *Identity
		min     models.Role
		wantErr error
	}{
		{name: "nil identity", id: nil, min: models.RoleUser, wantErr: ErrUnauthenticated},
		{name: "exact role", id: &Identity{Role: models.RoleStaff}, min: models.RoleStaff, wantErr: nil},
		{name: "higher role", id: &Identity{Role: models.RoleSuperadmin}, min: models.RoleStaff, wantErr: nil},
		{name: "lower role", id: &Identity{Role: models.RoleUser}, min: models.RoleStaff, wantErr: ErrInsufficientRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.RequireRole(tt.id, tt.min)
			if !errors.Is(err, tt.wantErr) && !(err == nil && tt.wantErr == nil) {
				t.Errorf("RequireRole = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestCanAssignRole covers the escalation guard: only superadmins may
// grant the elevated roles.
func TestCanAssignRole(t *testing.T) {
	tests := []struct {
		name   string
		actor  models.Role
		target models.Role
		want   bool
	}{
		{name: "admin grants staff", actor: models.RoleAdmin, target: models.RoleStaff, want: true},
		{name: "admin grants user", actor: models.RoleAdmin, target: models.RoleUser, want: true},
		{name: "admin grants admin", actor: models.RoleAdmin, target: models.RoleAdmin, want: false},
		{name: "admin grants superadmin", actor: models.RoleAdmin, target: models.RoleSuperadmin, want: false},
		{name: "superadmin grants admin", actor: models.RoleSuperadmin, target: models.RoleAdmin, want: true},
		{name: "superadmin grants superadmin", actor: models.RoleSuperadmin, target: models.RoleSuperadmin, want: true},
		{name: "staff grants admin", actor: models.RoleStaff, target: models.RoleAdmin, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAssignRole(tt.actor, tt.target); got != tt.want {
				t.Errorf("CanAssignRole(%q, %q) = %v, want %v", tt.actor, tt.target, got, tt.want)
			}
		})
	}
}

// TestCanManageUser covers the protection guard: elevated targets may
// only be touched by superadmins.
func TestCanManageUser(t *testing.T) {
	tests := []struct {
		name   string
		actor  models.Role
		target models.Role
		want   bool
	}{
		{name: "admin manages user", actor: models.RoleAdmin, target: models.RoleUser, want: true},
		{name: "admin manages staff", actor: models.RoleAdmin, target: models.RoleStaff, want: true},
		{name: "admin manages admin", actor: models.RoleAdmin, target: models.RoleAdmin, want: false},
		{name: "admin manages superadmin", actor: models.RoleAdmin, target: models.RoleSuperadmin, want: false},
		{name: "superadmin manages admin", actor: models.RoleSuperadmin, target: models.RoleAdmin, want: true},
		{name: "superadmin manages superadmin", actor: models.RoleSuperadmin, target: models.RoleSuperadmin, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManageUser(tt.actor, tt.target); got != tt.want {
				t.Errorf("CanManageUser(%q, %q) = %v, want %v", tt.actor, tt.target, got, tt.want)
			}
		})
	}
}
