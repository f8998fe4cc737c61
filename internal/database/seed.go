package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"pagecraft/internal/library"
	"pagecraft/internal/models"
)

// Development credentials created by Seed.
const (
	SeedAdminEmail    = "admin@pagecraft.local"
	SeedAdminPassword = "admin"
	SeedProjectSlug   = "welcome"
)

// Seed populates an empty database with development data: an admin user
// and a sample project holding the library's default button. It does
// nothing when any user exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	elements, err := sampleElements()
	if err != nil {
		return fmt.Errorf("seed sample elements: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var adminID string
	err = tx.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, SeedAdminEmail, string(hash), "Admin", models.RoleAdmin).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO projects (owner_id, name, description, slug, elements)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO NOTHING
	`, adminID, "Welcome", "A sample project to start from.", SeedProjectSlug, string(elements))
	if err != nil {
		return fmt.Errorf("seed insert project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", SeedAdminEmail,
		"password", SeedAdminPassword,
		"project", SeedProjectSlug,
	)
	return nil
}

// sampleElements places the catalogue's button near the canvas origin.
func sampleElements() ([]byte, error) {
	item, ok := library.Default().Find("button")
	if !ok {
		return []byte("[]"), nil
	}
	el, err := library.Instantiate(item, 160, 65)
	if err != nil {
		return nil, err
	}
	return json.Marshal([]models.Element{el})
}
