// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package canvas owns the editable element forest of a project: placing
// new elements, moving, resizing, editing properties and deleting by id.
//
// Lookups crawl the whole forest. Trees are tens of nodes, so a separate
// id index would cost more to keep consistent than it saves.
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"

	"pagecraft/internal/codegen"
	"pagecraft/internal/models"
)

var (
	// ErrElementNotFound is returned when no element carries the given id.
	ErrElementNotFound = errors.New("element not found")
	// ErrNotContainer is returned when placing into an element that cannot hold children.
	ErrNotContainer = errors.New("parent element cannot hold children")
	// ErrDuplicateID is returned when a placed element reuses an existing id.
	ErrDuplicateID = errors.New("duplicate element id")
)

// Tree is a mutable element forest. It is not safe for concurrent use;
// callers hand generators a Clone.
type Tree struct {
	elements []models.Element
}

// New builds a tree from a deep copy of forest.
func New(forest []models.Element) *Tree {
	return &Tree{elements: models.CloneForest(forest)}
}

// Elements returns a deep copy of the forest. It is never nil.
func (t *Tree) Elements() []models.Element {
	if out := models.CloneForest(t.elements); out != nil {
		return out
	}
	return []models.Element{}
}

// Clone is a stable snapshot for generation; later mutations of the tree
// are not visible through it.
func (t *Tree) Clone() []models.Element {
	return t.Elements()
}

// Count returns the number of elements at every depth.
func (t *Tree) Count() int {
	n := 0
	models.Walk(t.elements, func(*models.Element, int) bool {
		n++
		return true
	})
	return n
}

// Validate checks the tree invariants.
func (t *Tree) Validate() error {
	return codegen.Validate(t.elements)
}

// Find returns a copy of the element with the given id.
func (t *Tree) Find(id string) (models.Element, bool) {
	el := t.find(id)
	if el == nil {
		return models.Element{}, false
	}
	return el.Clone(), true
}

func (t *Tree) find(id string) *models.Element {
	var found *models.Element
	models.Walk(t.elements, func(el *models.Element, _ int) bool {
		if el.ID == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// Place appends el to the roots when parentID is empty, or to the children
// of the container with that id. An element without id gets a fresh one.
// It returns the id the element was stored under.
func (t *Tree) Place(el models.Element, parentID string) (string, error) {
	el = el.Clone()
	if el.ID == "" {
		id, err := models.NewID("element")
		if err != nil {
			return "", err
		}
		el.ID = id
	}
	if err := codegen.Validate([]models.Element{el}); err != nil {
		return "", err
	}
	var dup error
	models.Walk([]models.Element{el}, func(n *models.Element, _ int) bool {
		if t.find(n.ID) != nil {
			dup = fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
			return false
		}
		return true
	})
	if dup != nil {
		return "", dup
	}

	if parentID == "" {
		t.elements = append(t.elements, el)
		return el.ID, nil
	}
	parent := t.find(parentID)
	if parent == nil {
		return "", fmt.Errorf("parent %q: %w", parentID, ErrElementNotFound)
	}
	if !parent.Type.IsContainer() {
		return "", fmt.Errorf("%w: %q is a %s", ErrNotContainer, parentID, parent.Type)
	}
	parent.Children = append(parent.Children, el)
	return el.ID, nil
}

// Move sets the element position. Negative coordinates are clamped to the
// canvas origin.
func (t *Tree) Move(id string, x, y float64) error {
	el := t.find(id)
	if el == nil {
		return fmt.Errorf("move %q: %w", id, ErrElementNotFound)
	}
	el.X, el.Y = clamp(x), clamp(y)
	return nil
}

// Resize sets the element size. Negative sizes are clamped to zero.
func (t *Tree) Resize(id string, width, height float64) error {
	el := t.find(id)
	if el == nil {
		return fmt.Errorf("resize %q: %w", id, ErrElementNotFound)
	}
	el.Width, el.Height = clamp(width), clamp(height)
	return nil
}

// SetProperties merges patch into the element's property bag. Recognized
// keys overwrite, extension keys merge, and a JSON null removes a key. The
// bag is left untouched when any value fails to decode.
func (t *Tree) SetProperties(id string, patch map[string]json.RawMessage) error {
	el := t.find(id)
	if el == nil {
		return fmt.Errorf("set properties %q: %w", id, ErrElementNotFound)
	}
	props := el.Properties.Clone()
	if err := props.Apply(patch); err != nil {
		return fmt.Errorf("%w: %v", codegen.ErrInvalidInput, err)
	}
	el.Properties = props
	return nil
}

// Patch is a partial element update. Nil fields are left unchanged.
type Patch struct {
	X          *float64                   `json:"x,omitempty"`
	Y          *float64                   `json:"y,omitempty"`
	Width      *float64                   `json:"width,omitempty"`
	Height     *float64                   `json:"height,omitempty"`
	Properties map[string]json.RawMessage `json:"properties,omitempty"`
}

// Update applies a patch as one step: either every field changes or, on
// error, none does.
func (t *Tree) Update(id string, p Patch) error {
	el := t.find(id)
	if el == nil {
		return fmt.Errorf("update %q: %w", id, ErrElementNotFound)
	}
	props := el.Properties.Clone()
	if p.Properties != nil {
		if err := props.Apply(p.Properties); err != nil {
			return fmt.Errorf("%w: %v", codegen.ErrInvalidInput, err)
		}
	}
	el.Properties = props
	if p.X != nil {
		el.X = clamp(*p.X)
	}
	if p.Y != nil {
		el.Y = clamp(*p.Y)
	}
	if p.Width != nil {
		el.Width = clamp(*p.Width)
	}
	if p.Height != nil {
		el.Height = clamp(*p.Height)
	}
	return nil
}

// Delete removes every element with the given id, at any depth, together
// with its subtree.
func (t *Tree) Delete(id string) error {
	var removed int
	t.elements = remove(t.elements, id, &removed)
	if removed == 0 {
		return fmt.Errorf("delete %q: %w", id, ErrElementNotFound)
	}
	return nil
}

func remove(forest []models.Element, id string, removed *int) []models.Element {
	out := forest[:0]
	for _, el := range forest {
		if el.ID == id {
			*removed++
			continue
		}
		if len(el.Children) > 0 {
			el.Children = remove(el.Children, id, removed)
		}
		out = append(out, el)
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
