// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// revisionColumns lists all columns for project_revisions SELECTs.
const revisionColumns = `id, project_id, version, elements, backend_schema, note, created_at`

// RevisionStore provides access to project revisions.
type RevisionStore struct {
	db *sql.DB
}

// NewRevisionStore creates a new RevisionStore backed by the given database.
func NewRevisionStore(db *sql.DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// scanRevision scans a single project_revisions row.
func scanRevision(scanner interface{ Scan(...any) error }) (*models.Revision, error) {
	var (
		r                models.Revision
		elements, tables []byte
	)
	err := scanner.Scan(&r.ID, &r.ProjectID, &r.Version, &elements, &tables, &r.Note, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(elements, &r.Elements); err != nil {
		return nil, fmt.Errorf("decode revision elements: %w", err)
	}
	if err := json.Unmarshal(tables, &r.Tables); err != nil {
		return nil, fmt.Errorf("decode revision schema: %w", err)
	}
	return &r, nil
}

// insertRevision writes a revision inside the caller's transaction.
func insertRevision(tx *sql.Tx, projectID uuid.UUID, version int, elements, tables, note string) error {
	_, err := tx.Exec(`
		INSERT INTO project_revisions (project_id, version, elements, backend_schema, note)
		VALUES ($1, $2, $3, $4, $5)
	`, projectID, version, elements, tables, note)
	if err != nil {
		return fmt.Errorf("create revision: %w", err)
	}
	return nil
}

// ListByProject returns a project's revisions, newest first.
func (s *RevisionStore) ListByProject(projectID uuid.UUID) ([]models.Revision, error) {
	rows, err := s.db.Query(`
		SELECT `+revisionColumns+`
		FROM project_revisions
		WHERE project_id = $1
		ORDER BY version DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	revisions := []models.Revision{}
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, *r)
	}
	return revisions, rows.Err()
}

// FindByID retrieves a revision by UUID. Returns nil if not found.
func (s *RevisionStore) FindByID(id uuid.UUID) (*models.Revision, error) {
	r, err := scanRevision(s.db.QueryRow(`
		SELECT `+revisionColumns+` FROM project_revisions WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find revision: %w", err)
	}
	return r, nil
}

// Restore copies a revision's trees back onto its project as a new
// version and records that as a revision of its own. The stored generated
// code is cleared since it no longer matches. Returns nil when the
// revision or its project does not exist.
func (s *RevisionStore) Restore(revisionID uuid.UUID) (*models.Project, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	var (
		projectID        uuid.UUID
		version          int
		elements, tables string
	)
	err = tx.QueryRow(`
		SELECT project_id, version, elements::text, backend_schema::text
		FROM project_revisions WHERE id = $1
	`, revisionID).Scan(&projectID, &version, &elements, &tables)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load revision: %w", err)
	}

	p, err := scanProject(tx.QueryRow(`
		UPDATE projects
		SET elements = $1, backend_schema = $2, generated_code = '{}',
		    version = version + 1, updated_at = NOW()
		WHERE id = $3
		RETURNING `+projectColumns,
		elements, tables, projectID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore project: %w", err)
	}

	note := fmt.Sprintf("Restored from version %d", version)
	if err := insertRevision(tx, p.ID, p.Version, elements, tables, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restore: %w", err)
	}
	return p, nil
}
