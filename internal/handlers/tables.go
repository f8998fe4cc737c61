package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pagecraft/internal/models"
	"pagecraft/internal/schema"
)

// AddTable appends a table seeded with an id field.
func (a *API) AddTable(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	a.mutate(w, r, http.StatusCreated, "Added table", func(p *models.Project) (any, error) {
		s := schema.New(p.Tables)
		t, err := s.AddTable(in.Name)
		if err != nil {
			return nil, err
		}
		p.Tables = s.Tables()
		return t, nil
	})
}

// RenameTable changes a table's name.
func (a *API) RenameTable(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	a.mutate(w, r, http.StatusOK, "Renamed table", func(p *models.Project) (any, error) {
		s := schema.New(p.Tables)
		if err := s.RenameTable(tableID, in.Name); err != nil {
			return nil, err
		}
		p.Tables = s.Tables()
		return nil, nil
	})
}

// DeleteTable removes a table.
func (a *API) DeleteTable(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	a.mutate(w, r, http.StatusOK, "Deleted table", func(p *models.Project) (any, error) {
		s := schema.New(p.Tables)
		if err := s.DeleteTable(tableID); err != nil {
			return nil, err
		}
		p.Tables = s.Tables()
		return nil, nil
	})
}

// AddField appends a field to a table. Omitted attributes take the
// schema builder defaults.
func (a *API) AddField(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	var in models.Field
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	a.mutate(w, r, http.StatusCreated, "Added field", func(p *models.Project) (any, error) {
		s := schema.New(p.Tables)
		f, err := s.AddField(tableID, in)
		if err != nil {
			return nil, err
		}
		p.Tables = s.Tables()
		return f, nil
	})
}

// UpdateField patches one field.
func (a *API) UpdateField(w http.ResponseWriter, r *http.Request) {
	tableID, fieldID := chi.URLParam(r, "tableID"), chi.URLParam(r, "fieldID")
	var patch schema.FieldPatch
	if err := decodeJSON(r, &patch); err != nil {
		invalidInput(w, err.Error())
		return
	}
	a.mutate(w, r, http.StatusOK, "Updated field", func(p *models.Project) (any, error) {
		s := schema.New(p.Tables)
		f, err := s.UpdateField(tableID, fieldID, patch)
		if err != nil {
			return nil, err
		}
		p.Tables = s.Tables()
		return f, nil
	})
}

// DeleteField removes one field.
func (a *API) DeleteField(w http.ResponseWriter, r *http.Request) {
	tableID, fieldID := chi.URLParam(r, "tableID"), chi.URLParam(r, "fieldID")
	a.mutate(w, r, http.StatusOK, "Deleted field", func(p *models.Project) (any, error) {
		s := schema.New(p.Tables)
		if err := s.DeleteField(tableID, fieldID); err != nil {
			return nil, err
		}
		p.Tables = s.Tables()
		return nil, nil
	})
}
