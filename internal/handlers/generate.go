// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"pagecraft/internal/cache"
	"pagecraft/internal/codegen"
	"pagecraft/internal/live"
	"pagecraft/internal/models"
	"pagecraft/internal/schema"
	"pagecraft/internal/slug"
	"pagecraft/internal/storage"
)

// generateOptions are the optional switches of a frontend generation.
type generateOptions struct {
	KeyByID bool   `json:"keyById"`
	Title   string `json:"title"`
}

func (o generateOptions) codegen(fallbackTitle string) codegen.Options {
	title := o.Title
	if title == "" {
		title = fallbackTitle
	}
	return codegen.Options{KeyByID: o.KeyByID, Title: title}
}

// Generate renders the four frontend artifacts for a forest sent in the
// request body. Nothing is stored or cached.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Elements []models.Element `json:"elements"`
		Options  generateOptions  `json:"options"`
	}
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	code, err := a.engine.GenerateStateless(in.Elements, in.Options.codegen(""))
	if err != nil {
		writeDomainError(w, r, "generate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": code})
}

// GenerateBackend renders the backend scaffold for a table list sent in
// the request body.
func (a *API) GenerateBackend(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tables []models.Table `json:"tables"`
	}
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}
	if err := schema.New(in.Tables).Validate(); err != nil {
		writeDomainError(w, r, "generate backend", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backend": a.engine.GenerateBackendStateless(in.Tables)})
}

// GenerateProject renders the frontend artifacts of the stored project
// version, records them on the project and notifies live clients. A
// second request while one is running gets 409.
func (a *API) GenerateProject(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	var opts generateOptions
	if err := decodeJSON(r, &opts); err != nil {
		invalidInput(w, err.Error())
		return
	}

	code, err := a.engine.Generate(r.Context(), p.ID.String(), p.Version, p.Elements, opts.codegen(p.Name))
	if err != nil {
		writeDomainError(w, r, "generate project", err)
		return
	}
	if err := a.projects.SetGeneratedCode(p.ID, p.Version, code); err != nil {
		slog.Warn("store generated code failed", "project", p.ID, "error", err)
	}
	a.publish(live.EventCodeGenerated, p, nil)
	writeJSON(w, http.StatusOK, map[string]any{"version": p.Version, "code": code})
}

// GenerateProjectBackend renders the backend scaffold of the stored
// project version.
func (a *API) GenerateProjectBackend(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	backend, err := a.engine.GenerateBackend(r.Context(), p.ID.String(), p.Version, p.Tables)
	if err != nil {
		writeDomainError(w, r, "generate project backend", err)
		return
	}
	a.publish(live.EventBackendGenerated, p, nil)
	writeJSON(w, http.StatusOK, map[string]any{"version": p.Version, "backend": backend})
}

// currentCode returns the artifacts of the stored version, generating
// them when the project has none yet.
func (a *API) currentCode(r *http.Request, p *models.Project) (models.Artifacts, error) {
	if !p.Code.IsEmpty() {
		return p.Code, nil
	}
	code, err := a.engine.Generate(r.Context(), p.ID.String(), p.Version, p.Elements, codegen.Options{Title: p.Name})
	if err != nil {
		return models.Artifacts{}, err
	}
	if err := a.projects.SetGeneratedCode(p.ID, p.Version, code); err != nil {
		slog.Warn("store generated code failed", "project", p.ID, "error", err)
	}
	return code, nil
}

// ExportCode returns the generated artifacts. ?format=msgpack answers a
// MessagePack map of file name to content, ?file=<name> a single
// artifact as a download, anything else the JSON map.
func (a *API) ExportCode(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	code, err := a.currentCode(r, p)
	if err != nil {
		writeDomainError(w, r, "export code", err)
		return
	}
	files := code.Files()

	if name := r.URL.Query().Get("file"); name != "" {
		body, ok := files[name]
		if !ok {
			writeError(w, http.StatusNotFound, "unknown file "+strconv.Quote(name))
			return
		}
		w.Header().Set("Content-Type", storage.ContentType(name))
		w.Header().Set("Content-Disposition", `attachment; filename="`+slug.FileName(p.Slug, name)+`"`)
		w.Write([]byte(body))
		return
	}

	switch r.URL.Query().Get("format") {
	case "msgpack":
		data, err := cache.EncodeMsgpack(files)
		if err != nil {
			writeDomainError(w, r, "encode msgpack", err)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		w.Header().Set("Content-Disposition", `attachment; filename="`+slug.FileName(p.Slug, "code.msgpack")+`"`)
		w.Write(data)
	case "", "json":
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		sort.Strings(names)
		writeJSON(w, http.StatusOK, map[string]any{"version": p.Version, "files": files, "names": names})
	default:
		invalidInput(w, "format must be json or msgpack")
	}
}

// Preview serves the HTML preview document of the project.
func (a *API) Preview(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	a.writePreview(w, r, p)
}

func (a *API) writePreview(w http.ResponseWriter, r *http.Request, p *models.Project) {
	doc, err := a.engine.Preview(r.Context(), p)
	if err != nil {
		writeDomainError(w, r, "render preview", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(doc)
}

// Deploy uploads the generated site to object storage and returns its
// public URL. It needs at least one element and configured storage.
func (a *API) Deploy(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "deploy storage is not configured")
		return
	}
	if len(p.Elements) == 0 {
		invalidInput(w, "project has no elements to deploy")
		return
	}

	code, err := a.currentCode(r, p)
	if err != nil {
		writeDomainError(w, r, "deploy", err)
		return
	}
	url, err := storage.Deploy(r.Context(), a.storage, p.Slug, models.FileMarkup, code.Files())
	if err != nil {
		slog.Error("deploy failed", "project", p.ID, "error", err)
		writeError(w, http.StatusBadGateway, "upload to storage failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url, "version": p.Version})
}
