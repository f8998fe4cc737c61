package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Share issues a signed read-only link to the project preview.
func (a *API) Share(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	token, expires, err := a.share.Issue(p.ID)
	if err != nil {
		writeDomainError(w, r, "issue share token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"url":       "/share/" + token,
		"expiresAt": expires,
	})
}

// SharedPreview renders the preview named by a share token. It needs no
// session; every token problem is answered with 404.
func (a *API) SharedPreview(w http.ResponseWriter, r *http.Request) {
	id, err := a.share.Verify(chi.URLParam(r, "token"))
	if err != nil {
		slog.Debug("share token rejected", "error", err)
		writeError(w, http.StatusNotFound, "share link not found")
		return
	}
	p, err := a.projects.FindByID(id)
	if err != nil {
		writeDomainError(w, r, "load shared project", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "share link not found")
		return
	}
	a.writePreview(w, r, p)
}
