// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package schema owns the backend table definitions of a project. Names are
// checked here so the scaffold generator always receives identifiers that
// are valid in JavaScript and SQL.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"pagecraft/internal/models"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrFieldNotFound    = errors.New("field not found")
	ErrInvalidName      = errors.New("invalid name")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrInvalidFieldType = errors.New("invalid field type")
)

// Default names given to new tables and fields when none is supplied.
const (
	DefaultTableName = "new_table"
	DefaultFieldName = "new_field"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name is usable as a table or field name.
func ValidName(name string) bool {
	return len(name) <= 63 && namePattern.MatchString(name)
}

// Schema is a mutable, ordered table list. Not safe for concurrent use.
type Schema struct {
	tables []models.Table
}

// New builds a schema from a deep copy of tables.
func New(tables []models.Table) *Schema {
	return &Schema{tables: models.CloneTables(tables)}
}

// Tables returns a deep copy of the table list. It is never nil.
func (s *Schema) Tables() []models.Table {
	if out := models.CloneTables(s.tables); out != nil {
		return out
	}
	return []models.Table{}
}

// Validate checks every name, type and uniqueness rule.
func (s *Schema) Validate() error {
	seen := make(map[string]bool)
	for _, t := range s.tables {
		if !ValidName(t.Name) {
			return fmt.Errorf("%w: table %q", ErrInvalidName, t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: table %q", ErrDuplicateName, t.Name)
		}
		seen[t.Name] = true

		fields := make(map[string]bool)
		for _, f := range t.Fields {
			if !ValidName(f.Name) {
				return fmt.Errorf("%w: field %q of %q", ErrInvalidName, f.Name, t.Name)
			}
			if fields[f.Name] {
				return fmt.Errorf("%w: field %q of %q", ErrDuplicateName, f.Name, t.Name)
			}
			fields[f.Name] = true
			if !f.Type.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidFieldType, f.Type)
			}
		}
	}
	return nil
}

// AddTable appends a table seeded with a required, unique string id field.
// An empty name becomes new_table, suffixed with a number when taken.
func (s *Schema) AddTable(name string) (models.Table, error) {
	if name == "" {
		name = freeName(DefaultTableName, s.tableNames())
	}
	if err := s.checkTableName(name, ""); err != nil {
		return models.Table{}, err
	}
	tableID, err := models.NewID("table")
	if err != nil {
		return models.Table{}, err
	}
	fieldID, err := models.NewID("field")
	if err != nil {
		return models.Table{}, err
	}
	t := models.Table{
		ID:   tableID,
		Name: name,
		Fields: []models.Field{
			{ID: fieldID, Name: "id", Type: models.FieldString, Required: true, Unique: true},
		},
	}
	s.tables = append(s.tables, t)
	return t.Clone(), nil
}

// RenameTable changes a table's name.
func (s *Schema) RenameTable(id, name string) error {
	t := s.table(id)
	if t == nil {
		return fmt.Errorf("rename %q: %w", id, ErrTableNotFound)
	}
	if err := s.checkTableName(name, id); err != nil {
		return err
	}
	t.Name = name
	return nil
}

// DeleteTable removes a table and its fields.
func (s *Schema) DeleteTable(id string) error {
	for i := range s.tables {
		if s.tables[i].ID == id {
			s.tables = append(s.tables[:i], s.tables[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %q: %w", id, ErrTableNotFound)
}

// AddField appends a field to a table. Zero values take the defaults of
// the schema builder: name new_field, type string, optional.
func (s *Schema) AddField(tableID string, f models.Field) (models.Field, error) {
	t := s.table(tableID)
	if t == nil {
		return models.Field{}, fmt.Errorf("add field to %q: %w", tableID, ErrTableNotFound)
	}
	if f.Name == "" {
		f.Name = freeName(DefaultFieldName, fieldNames(t))
	}
	if f.Type == "" {
		f.Type = models.FieldString
	}
	if err := checkField(t, f, ""); err != nil {
		return models.Field{}, err
	}
	id, err := models.NewID("field")
	if err != nil {
		return models.Field{}, err
	}
	f.ID = id
	t.Fields = append(t.Fields, f)
	return f, nil
}

// FieldPatch is a partial field update. Nil members are left unchanged; a
// DefaultValue pointing at "" clears the default.
type FieldPatch struct {
	Name         *string           `json:"name,omitempty"`
	Type         *models.FieldType `json:"type,omitempty"`
	Required     *bool             `json:"required,omitempty"`
	Unique       *bool             `json:"unique,omitempty"`
	DefaultValue *string           `json:"defaultValue,omitempty"`
}

// UpdateField applies a patch to one field of a table.
func (s *Schema) UpdateField(tableID, fieldID string, p FieldPatch) (models.Field, error) {
	t := s.table(tableID)
	if t == nil {
		return models.Field{}, fmt.Errorf("update field in %q: %w", tableID, ErrTableNotFound)
	}
	i := fieldIndex(t, fieldID)
	if i < 0 {
		return models.Field{}, fmt.Errorf("update %q: %w", fieldID, ErrFieldNotFound)
	}

	f := t.Fields[i]
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Required != nil {
		f.Required = *p.Required
	}
	if p.Unique != nil {
		f.Unique = *p.Unique
	}
	if p.DefaultValue != nil {
		if *p.DefaultValue == "" {
			f.DefaultValue = nil
		} else {
			v := *p.DefaultValue
			f.DefaultValue = &v
		}
	}
	if err := checkField(t, f, fieldID); err != nil {
		return models.Field{}, err
	}
	t.Fields[i] = f
	return f, nil
}

// DeleteField removes one field from a table.
func (s *Schema) DeleteField(tableID, fieldID string) error {
	t := s.table(tableID)
	if t == nil {
		return fmt.Errorf("delete field in %q: %w", tableID, ErrTableNotFound)
	}
	i := fieldIndex(t, fieldID)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", fieldID, ErrFieldNotFound)
	}
	t.Fields = append(t.Fields[:i], t.Fields[i+1:]...)
	return nil
}

func (s *Schema) table(id string) *models.Table {
	for i := range s.tables {
		if s.tables[i].ID == id {
			return &s.tables[i]
		}
	}
	return nil
}

func (s *Schema) tableNames() map[string]bool {
	names := make(map[string]bool, len(s.tables))
	for _, t := range s.tables {
		names[t.Name] = true
	}
	return names
}

// checkTableName validates name for the table with id self ("" for a new one).
func (s *Schema) checkTableName(name, self string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: table %q", ErrInvalidName, name)
	}
	for _, t := range s.tables {
		if t.Name == name && t.ID != self {
			return fmt.Errorf("%w: table %q", ErrDuplicateName, name)
		}
	}
	return nil
}

// freeName returns base, or base_2, base_3... when base is taken.
func freeName(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func fieldNames(t *models.Table) map[string]bool {
	names := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		names[f.Name] = true
	}
	return names
}

func fieldIndex(t *models.Table, id string) int {
	for i := range t.Fields {
		if t.Fields[i].ID == id {
			return i
		}
	}
	return -1
}

func checkField(t *models.Table, f models.Field, self string) error {
	if !ValidName(f.Name) {
		return fmt.Errorf("%w: field %q", ErrInvalidName, f.Name)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFieldType, f.Type)
	}
	for _, other := range t.Fields {
		if other.Name == f.Name && other.ID != self {
			return fmt.Errorf("%w: field %q", ErrDuplicateName, f.Name)
		}
	}
	return nil
}
