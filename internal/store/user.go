// Package store provides database access methods for all DocShelf
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"docshelf/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// userColumns lists the columns selected in user queries.
const userColumns = `id, email, password_hash, phone, role, created_at, updated_at`

// scanUser scans a user row from the result set.
func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Phone, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(email, password string, phone *string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO users (email, password_hash, phone, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, string(hash), phone, role,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// List returns all users ordered by creation date.
func (s *UserStore) List() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateEmail changes a user's email address. Returns nil if the user
// does not exist.
func (s *UserStore) UpdateEmail(id uuid.UUID, email string) (*models.User, error) {
	row := s.db.QueryRow(`
		UPDATE users SET email = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+userColumns, email, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update user email: %w", err)
	}
	return u, nil
}

// UpdatePhone changes a user's phone number. Returns nil if the user
// does not exist.
func (s *UserStore) UpdatePhone(id uuid.UUID, phone *string) (*models.User, error) {
	row := s.db.QueryRow(`
		UPDATE users SET phone = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+userColumns, phone, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update user phone: %w", err)
	}
	return u, nil
}

// UpdateRole changes a user's role. Returns nil if the user does not exist.
// Authorization guards run in the caller; this is a plain row update.
func (s *UserStore) UpdateRole(id uuid.UUID, role models.Role) (*models.User, error) {
	row := s.db.QueryRow(`
		UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+userColumns, role, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces a user's password hash with a bcrypt hash of
// the given plaintext.
func (s *UserStore) UpdatePassword(id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

// Delete removes a user by ID and returns the deleted row, or nil if no
// such user existed. Outstanding reset tokens cascade-delete with the row.
func (s *UserStore) Delete(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`
		DELETE FROM users WHERE id = $1
		RETURNING `+userColumns, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return u, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, used to turn duplicate emails into a caller-facing error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
