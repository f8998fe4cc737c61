package handlers

import (
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pagecraft/internal/canvas"
	"pagecraft/internal/codegen"
	"pagecraft/internal/library"
	"pagecraft/internal/models"
	"pagecraft/internal/schema"
	"pagecraft/internal/store"
)

// dropInput places either a library item at a drop point or a raw element.
type dropInput struct {
	LibraryItemID string          `json:"libraryItemId"`
	X             float64         `json:"x"`
	Y             float64         `json:"y"`
	Element       *models.Element `json:"element"`
	ParentID      string          `json:"parentId"`
}

// AddElement drops an element onto the canvas or into a container.
func (a *API) AddElement(w http.ResponseWriter, r *http.Request) {
	var in dropInput
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}

	var el models.Element
	switch {
	case in.LibraryItemID != "":
		item, ok := a.library.Find(in.LibraryItemID)
		if !ok {
			writeError(w, http.StatusNotFound, "library item not found")
			return
		}
		if !finite(in.X) || !finite(in.Y) {
			invalidInput(w, "drop point must be finite")
			return
		}
		var err error
		if el, err = library.Instantiate(item, in.X, in.Y); err != nil {
			writeDomainError(w, r, "instantiate library item", err)
			return
		}
	case in.Element != nil:
		el = *in.Element
		if el.Type == "" {
			invalidInput(w, "element type is required")
			return
		}
	default:
		invalidInput(w, "libraryItemId or element is required")
		return
	}

	a.mutate(w, r, http.StatusCreated, "Added "+string(el.Type), func(p *models.Project) (any, error) {
		tree := canvas.New(p.Elements)
		id, err := tree.Place(el, in.ParentID)
		if err != nil {
			return nil, err
		}
		p.Elements = tree.Elements()
		placed, _ := tree.Find(id)
		return placed, nil
	})
}

// UpdateElement moves, resizes or edits the properties of one element in
// a single step.
func (a *API) UpdateElement(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementID")
	var patch canvas.Patch
	if err := decodeJSON(r, &patch); err != nil {
		invalidInput(w, err.Error())
		return
	}
	for name, v := range map[string]*float64{"x": patch.X, "y": patch.Y, "width": patch.Width, "height": patch.Height} {
		if v != nil && !finite(*v) {
			invalidInput(w, name+" must be finite")
			return
		}
	}

	a.mutate(w, r, http.StatusOK, "Updated element", func(p *models.Project) (any, error) {
		tree := canvas.New(p.Elements)
		if err := tree.Update(elementID, patch); err != nil {
			return nil, err
		}
		p.Elements = tree.Elements()
		el, _ := tree.Find(elementID)
		return el, nil
	})
}

// DeleteElement removes an element and its subtree.
func (a *API) DeleteElement(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementID")
	a.mutate(w, r, http.StatusOK, "Deleted element", func(p *models.Project) (any, error) {
		tree := canvas.New(p.Elements)
		if err := tree.Delete(elementID); err != nil {
			return nil, err
		}
		p.Elements = tree.Elements()
		return nil, nil
	})
}

// snapshotInput replaces both trees at once. Version, when set, must match
// the stored version.
type snapshotInput struct {
	Elements []models.Element `json:"elements"`
	Tables   []models.Table   `json:"backendSchema"`
	Version  int              `json:"version"`
}

// ReplaceSnapshot overwrites the element forest and the backend schema.
func (a *API) ReplaceSnapshot(w http.ResponseWriter, r *http.Request) {
	var in snapshotInput
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	if err := codegen.Validate(in.Elements); err != nil {
		writeDomainError(w, r, "validate snapshot", err)
		return
	}
	if err := schema.New(in.Tables).Validate(); err != nil {
		writeDomainError(w, r, "validate snapshot", err)
		return
	}

	a.mutate(w, r, http.StatusOK, "Saved snapshot", func(p *models.Project) (any, error) {
		if in.Version != 0 && in.Version != p.Version {
			return nil, fmt.Errorf("snapshot of version %d over %d: %w", in.Version, p.Version, store.ErrVersionConflict)
		}
		p.Elements = canvas.New(in.Elements).Elements()
		p.Tables = schema.New(in.Tables).Tables()
		return nil, nil
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
