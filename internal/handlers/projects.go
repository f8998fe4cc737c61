// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagecraft/internal/live"
	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
	"pagecraft/internal/session"
	"pagecraft/internal/slug"
	"pagecraft/internal/storage"
	"pagecraft/internal/store"
)

// saveAttempts bounds how often a mutation is replayed on a fresh copy
// when another request saved the project in between.
const saveAttempts = 3

// mutationResponse is returned by every endpoint that changes a project.
type mutationResponse struct {
	Project *models.Project `json:"project"`
	Result  any             `json:"result,omitempty"`
}

// canAccess reports whether the session may read and change p.
func canAccess(sess *session.Data, p *models.Project) bool {
	return sess != nil && (p.OwnerID == sess.UserID || sess.Role == string(models.RoleAdmin))
}

// loadProject resolves the {id} URL parameter and checks access. It
// writes the error response itself and returns nil in that case.
func (a *API) loadProject(w http.ResponseWriter, r *http.Request) *models.Project {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		invalidInput(w, "project id is not a UUID")
		return nil
	}
	p, err := a.projects.FindByID(id)
	if err != nil {
		writeDomainError(w, r, "load project", err)
		return nil
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return nil
	}
	if !canAccess(middleware.SessionFromCtx(r.Context()), p) {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil
	}
	return p
}

// mutate applies fn to the project named in the URL and saves the result
// as a new version with the given revision note. When the save loses a
// race the project is reloaded and fn replayed. Errors returned by fn are
// not retried. On success the new version is published to live clients
// and the response is written with status.
func (a *API) mutate(w http.ResponseWriter, r *http.Request, status int, note string, fn func(p *models.Project) (any, error)) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}

	for attempt := 1; ; attempt++ {
		result, err := fn(p)
		if err != nil {
			writeDomainError(w, r, note, err)
			return
		}
		saved, err := a.projects.Save(p, note)
		if err == nil {
			a.engine.Forget(saved.ID.String())
			a.publish(live.EventProjectSaved, saved, map[string]string{"note": note})
			writeJSON(w, status, mutationResponse{Project: saved, Result: result})
			return
		}
		if !errors.Is(err, store.ErrVersionConflict) || attempt == saveAttempts {
			writeDomainError(w, r, "save project", err)
			return
		}

		slog.Debug("project save conflict, retrying", "project", p.ID, "attempt", attempt)
		if p, err = a.projects.FindByID(p.ID); err != nil || p == nil {
			if err == nil {
				writeError(w, http.StatusNotFound, "project not found")
				return
			}
			writeDomainError(w, r, "reload project", err)
			return
		}
		// The winning save may have moved the project to another owner.
		if !canAccess(middleware.SessionFromCtx(r.Context()), p) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
	}
}

// ListProjects returns the caller's projects. Admins may pass ?all=true to
// list every project.
func (a *API) ListProjects(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var (
		projects []models.Project
		err      error
	)
	if r.URL.Query().Get("all") == "true" && sess.Role == string(models.RoleAdmin) {
		projects, err = a.projects.ListAll()
	} else {
		projects, err = a.projects.ListByOwner(sess.UserID)
	}
	if err != nil {
		writeDomainError(w, r, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

type projectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProject creates an empty project with a unique slug derived from
// its name.
func (a *API) CreateProject(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var in projectInput
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if msg := validateProject(in.Name, in.Description); msg != "" {
		invalidInput(w, msg)
		return
	}

	s, err := slug.Unique(in.Name, a.projects.SlugExists)
	if err != nil {
		writeDomainError(w, r, "create project slug", err)
		return
	}
	p, err := a.projects.Create(&models.Project{
		OwnerID:     sess.UserID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Slug:        s,
	})
	if err != nil {
		writeDomainError(w, r, "create project", err)
		return
	}
	slog.Info("project created", "project", p.ID, "slug", p.Slug, "owner", sess.UserID)
	writeJSON(w, http.StatusCreated, p)
}

// GetProject returns one project.
func (a *API) GetProject(w http.ResponseWriter, r *http.Request) {
	if p := a.loadProject(w, r); p != nil {
		writeJSON(w, http.StatusOK, p)
	}
}

// UpdateProject renames a project and changes its description.
func (a *API) UpdateProject(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	var in projectInput
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if msg := validateProject(in.Name, in.Description); msg != "" {
		invalidInput(w, msg)
		return
	}

	renamed, err := a.projects.Rename(p.ID, in.Name, strings.TrimSpace(in.Description))
	if err != nil {
		writeDomainError(w, r, "rename project", err)
		return
	}
	if renamed == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	a.engine.Forget(renamed.ID.String())
	a.publish(live.EventProjectSaved, renamed, map[string]string{"note": "Renamed"})
	writeJSON(w, http.StatusOK, renamed)
}

// DeleteProject removes a project, its cached artifacts and its deployed
// site.
func (a *API) DeleteProject(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	if err := a.projects.Delete(p.ID); err != nil {
		writeDomainError(w, r, "delete project", err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	a.engine.Invalidate(ctx, p.ID.String())
	if a.cacheLog != nil {
		a.cacheLog.Log("project", p.ID, store.ActionDelete)
	}
	if a.storage != nil {
		if err := storage.Undeploy(ctx, a.storage, p.Slug); err != nil {
			slog.Warn("remove deployed site failed", "project", p.ID, "error", err)
		}
	}
	a.publish(live.EventProjectDeleted, p, nil)

	slog.Info("project deleted", "project", p.ID)
	w.WriteHeader(http.StatusNoContent)
}
