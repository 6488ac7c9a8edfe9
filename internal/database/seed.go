package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default superadmin account if no users exist yet, so a
// fresh instance is immediately usable.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
	`, "admin@docshelf.local", string(hash), "superadmin")
	if err != nil {
		return fmt.Errorf("seed insert superadmin: %w", err)
	}

	slog.Info("database seeded with default superadmin",
		"email", "admin@docshelf.local",
		"password", "admin",
	)

	return nil
}
