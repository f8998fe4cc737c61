// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is one saved website: the element forest, the backend schema, and
// the most recently generated code. Version increases on every save and
// keys the generation caches.
type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Elements    []Element `json:"elements"`
	Tables      []Table   `json:"backendSchema"`
	Code        Artifacts `json:"generatedCode"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Snapshot returns deep copies of the mutable trees so callers can hand
// them to the generators while the project keeps changing.
func (p *Project) Snapshot() ([]Element, []Table) {
	return CloneForest(p.Elements), CloneTables(p.Tables)
}

// OwnedBy reports whether the given user may modify the project.
func (p *Project) OwnedBy(u *User) bool {
	return u != nil && (p.OwnerID == u.ID || u.IsAdmin())
}

// Revision is a stored snapshot of a project at a given version.
type Revision struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	Version   int       `json:"version"`
	Elements  []Element `json:"elements"`
	Tables    []Table   `json:"backendSchema"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
