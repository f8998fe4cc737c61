package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagecraft/internal/live"
	"pagecraft/internal/store"
)

// ListRevisions returns the stored versions of a project, newest first.
func (a *API) ListRevisions(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	revs, err := a.revisions.ListByProject(p.ID)
	if err != nil {
		writeDomainError(w, r, "list revisions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": revs})
}

// RestoreRevision copies a stored version back onto the project as a new
// version.
func (a *API) RestoreRevision(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	revID, err := uuid.Parse(chi.URLParam(r, "revID"))
	if err != nil {
		invalidInput(w, "revision id is not a UUID")
		return
	}
	rev, err := a.revisions.FindByID(revID)
	if err != nil {
		writeDomainError(w, r, "load revision", err)
		return
	}
	if rev == nil || rev.ProjectID != p.ID {
		writeError(w, http.StatusNotFound, "revision not found")
		return
	}

	restored, err := a.revisions.Restore(rev.ID)
	if err != nil {
		writeDomainError(w, r, "restore revision", err)
		return
	}
	if restored == nil {
		writeError(w, http.StatusNotFound, "revision not found")
		return
	}

	a.engine.Invalidate(context.WithoutCancel(r.Context()), restored.ID.String())
	if a.cacheLog != nil {
		a.cacheLog.Log("project", restored.ID, store.ActionRestore)
	}
	a.publish(live.EventProjectSaved, restored, map[string]any{"restoredFrom": rev.Version})

	slog.Info("revision restored", "project", restored.ID, "from", rev.Version, "version", restored.Version)
	writeJSON(w, http.StatusOK, mutationResponse{Project: restored})
}
