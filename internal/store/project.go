// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// ErrVersionConflict is returned when a project changed between load and save.
var ErrVersionConflict = errors.New("project was modified concurrently")

// projectColumns lists all columns for projects SELECTs.
const projectColumns = `id, owner_id, name, description, slug, elements, backend_schema,
	generated_code, version, created_at, updated_at`

// ProjectStore provides access to saved builder projects.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore backed by the given database.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// scanProject scans one projects row and decodes its JSONB columns.
func scanProject(scanner interface{ Scan(...any) error }) (*models.Project, error) {
	var (
		p                      models.Project
		elements, tables, code []byte
	)
	err := scanner.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Slug,
		&elements, &tables, &code, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(elements, &p.Elements); err != nil {
		return nil, fmt.Errorf("decode elements of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(tables, &p.Tables); err != nil {
		return nil, fmt.Errorf("decode backend schema of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(code, &p.Code); err != nil {
		return nil, fmt.Errorf("decode generated code of %s: %w", p.ID, err)
	}
	if p.Elements == nil {
		p.Elements = []models.Element{}
	}
	if p.Tables == nil {
		p.Tables = []models.Table{}
	}
	return &p, nil
}

// encodeTrees serializes the JSONB columns. Nil slices are stored as [].
func encodeTrees(elements []models.Element, tables []models.Table) (string, string, error) {
	if elements == nil {
		elements = []models.Element{}
	}
	if tables == nil {
		tables = []models.Table{}
	}
	e, err := json.Marshal(elements)
	if err != nil {
		return "", "", fmt.Errorf("encode elements: %w", err)
	}
	t, err := json.Marshal(tables)
	if err != nil {
		return "", "", fmt.Errorf("encode backend schema: %w", err)
	}
	return string(e), string(t), nil
}

func (s *ProjectStore) findOne(query string, arg any) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE `+query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// FindByID retrieves a project by UUID. Returns nil if not found.
func (s *ProjectStore) FindByID(id uuid.UUID) (*models.Project, error) {
	p, err := s.findOne("id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a project by slug. Returns nil if not found.
func (s *ProjectStore) FindBySlug(slug string) (*models.Project, error) {
	p, err := s.findOne("slug = $1", slug)
	if err != nil {
		return nil, fmt.Errorf("find project by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether a project already uses slug.
func (s *ProjectStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check project slug: %w", err)
	}
	return exists, nil
}

// ListByOwner returns a user's projects, most recently updated first.
func (s *ProjectStore) ListByOwner(ownerID uuid.UUID) ([]models.Project, error) {
	return s.list(`WHERE owner_id = $1`, ownerID)
}

// ListAll returns every project, most recently updated first.
func (s *ProjectStore) ListAll() ([]models.Project, error) {
	return s.list(``)
}

func (s *ProjectStore) list(where string, args ...any) ([]models.Project, error) {
	rows, err := s.db.Query(`SELECT `+projectColumns+` FROM projects `+where+` ORDER BY updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Create inserts a project at version 1 together with its first revision.
// The caller chooses a unique slug.
func (s *ProjectStore) Create(p *models.Project) (*models.Project, error) {
	elements, tables, err := encodeTrees(p.Elements, p.Tables)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create project: %w", err)
	}
	defer tx.Rollback()

	created, err := scanProject(tx.QueryRow(`
		INSERT INTO projects (owner_id, name, description, slug, elements, backend_schema)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+projectColumns,
		p.OwnerID, p.Name, p.Description, p.Slug, elements, tables,
	))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if err := insertRevision(tx, created.ID, created.Version, elements, tables, "Created"); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create project: %w", err)
	}
	return created, nil
}

// Save stores the element forest and the backend schema of p, bumps the
// version and records a revision in one transaction. The cached generated
// code belongs to the previous version and is cleared. p.Version must be
// the version that was loaded; ErrVersionConflict is returned when the row
// moved on meanwhile.
func (s *ProjectStore) Save(p *models.Project, note string) (*models.Project, error) {
	elements, tables, err := encodeTrees(p.Elements, p.Tables)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin save project: %w", err)
	}
	defer tx.Rollback()

	saved, err := scanProject(tx.QueryRow(`
		UPDATE projects
		SET elements = $1, backend_schema = $2, generated_code = '{}',
		    version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4
		RETURNING `+projectColumns,
		elements, tables, p.ID, p.Version,
	))
	if err == sql.ErrNoRows {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	if err := insertRevision(tx, saved.ID, saved.Version, elements, tables, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save project: %w", err)
	}
	return saved, nil
}

// SetGeneratedCode records the artifacts generated for a project version
// without bumping it, so the generation caches keep their key. It is a
// no-op when the project has moved to another version.
func (s *ProjectStore) SetGeneratedCode(id uuid.UUID, version int, code models.Artifacts) error {
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode generated code: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE projects SET generated_code = $1 WHERE id = $2 AND version = $3
	`, string(data), id, version)
	if err != nil {
		return fmt.Errorf("set generated code: %w", err)
	}
	return nil
}

// Rename updates the name and description. It bumps the version because
// the name is part of generated output (the document and preview titles).
func (s *ProjectStore) Rename(id uuid.UUID, name, description string) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`
		UPDATE projects
		SET name = $1, description = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3
		RETURNING `+projectColumns,
		name, description, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rename project: %w", err)
	}
	return p, nil
}

// Delete removes a project and its revisions.
func (s *ProjectStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Count returns the number of projects owned by a user.
func (s *ProjectStore) Count(ownerID uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE owner_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}
