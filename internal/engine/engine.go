// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine orchestrates code generation for saved projects. It guards
// against re-triggering a generation that is still running, applies the
// optional artificial delay, and caches results in memory (L1) and in
// Valkey (L2) keyed by project id and version. It also renders the live
// preview document.
package engine

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"pagecraft/internal/cache"
	"pagecraft/internal/codegen"
	"pagecraft/internal/models"
	"pagecraft/internal/scaffold"
)

// ErrGenerationInProgress is returned when a generation for the same
// project is already running.
var ErrGenerationInProgress = errors.New("generation already in progress")

// CodeCache is the shared (L2) artifact cache. *cache.ArtifactCache
// satisfies it.
type CodeCache interface {
	Get(ctx context.Context, projectID string, version int, kind cache.Kind, dst any) bool
	Set(ctx context.Context, projectID string, version int, kind cache.Kind, v any)
	InvalidateProject(ctx context.Context, projectID string)
}

// PreviewStore caches rendered preview documents. *cache.PreviewCache
// satisfies it.
type PreviewStore interface {
	Get(ctx context.Context, projectID string, version int) ([]byte, bool)
	Set(ctx context.Context, projectID string, version int, html []byte)
	InvalidateProject(ctx context.Context, projectID string)
}

// Engine runs the generators for projects. The zero value is not usable;
// create one with New.
type Engine struct {
	cache *artifactCache
	delay time.Duration

	// Optional shared caches. Nil when Valkey is not configured.
	code     CodeCache
	previews PreviewStore

	mu       sync.Mutex
	inflight map[string]struct{}

	preview *template.Template
}

// New creates an engine with an empty L1 cache. delay is waited before
// every uncached generation; zero disables it.
func New(delay time.Duration) *Engine {
	return &Engine{
		cache:    newArtifactCache(),
		delay:    delay,
		inflight: make(map[string]struct{}),
		preview:  previewTemplate,
	}
}

// SetCaches configures the shared Valkey caches. Call after New when Valkey
// is available.
func (e *Engine) SetCaches(code CodeCache, previews PreviewStore) {
	e.code = code
	e.previews = previews
}

// Generate returns the frontend artifacts of a project version. The forest
// is validated first so a caller never receives output for malformed
// input. A second call for the same project while one is running fails
// with ErrGenerationInProgress; other projects are unaffected.
//
// Once started, a generation runs to completion: ctx is only used for the
// shared cache round trips.
func (e *Engine) Generate(ctx context.Context, projectID string, version int, forest []models.Element, opts codegen.Options) (models.Artifacts, error) {
	if err := codegen.Validate(forest); err != nil {
		return models.Artifacts{}, err
	}

	kind := cache.KindFrontend
	if opts.KeyByID {
		kind = cache.KindFrontendByID
	}
	// The title is part of the output, so each title gets its own entry.
	entry := kind.Titled(opts.Title)

	release, err := e.acquire(projectID, kind)
	if err != nil {
		return models.Artifacts{}, err
	}
	defer release()

	if v, ok := e.cache.get(projectID, version, string(entry)).(models.Artifacts); ok {
		return v, nil
	}

	var out models.Artifacts
	if e.code != nil && e.code.Get(ctx, projectID, version, entry, &out) {
		e.cache.put(projectID, version, string(entry), out)
		return out, nil
	}

	e.wait()
	start := time.Now()
	out = codegen.GenerateWith(models.CloneForest(forest), opts)
	slog.Info("code generated", "project", projectID, "version", version, "kind", kind, "duration", time.Since(start))

	e.cache.put(projectID, version, string(entry), out)
	if e.code != nil {
		e.code.Set(context.WithoutCancel(ctx), projectID, version, entry, out)
	}
	return out, nil
}

// GenerateStateless renders artifacts for a forest that does not belong to
// a saved project. Nothing is cached.
func (e *Engine) GenerateStateless(forest []models.Element, opts codegen.Options) (models.Artifacts, error) {
	if err := codegen.Validate(forest); err != nil {
		return models.Artifacts{}, err
	}
	e.wait()
	return codegen.GenerateWith(models.CloneForest(forest), opts), nil
}

// GenerateBackend returns the backend scaffold of a project version. It
// shares the L1 namespace with Generate under its own kind and has its
// own in-flight guard, so a backend and a frontend generation of one
// project may run side by side.
func (e *Engine) GenerateBackend(ctx context.Context, projectID string, version int, tables []models.Table) (models.Backend, error) {
	release, err := e.acquire(projectID, cache.KindBackend)
	if err != nil {
		return models.Backend{}, err
	}
	defer release()

	kind := string(cache.KindBackend)
	if v, ok := e.cache.get(projectID, version, kind).(models.Backend); ok {
		return v, nil
	}

	var out models.Backend
	if e.code != nil && e.code.Get(ctx, projectID, version, cache.KindBackend, &out) {
		e.cache.put(projectID, version, kind, out)
		return out, nil
	}

	e.wait()
	out = scaffold.GenerateBackend(models.CloneTables(tables))
	slog.Info("backend generated", "project", projectID, "version", version, "tables", len(tables))

	e.cache.put(projectID, version, kind, out)
	if e.code != nil {
		e.code.Set(context.WithoutCancel(ctx), projectID, version, cache.KindBackend, out)
	}
	return out, nil
}

// GenerateBackendStateless renders the backend scaffold for a table list
// that does not belong to a saved project.
func (e *Engine) GenerateBackendStateless(tables []models.Table) models.Backend {
	return scaffold.GenerateBackend(models.CloneTables(tables))
}

// Invalidate drops every cached artifact and preview of a project. Saves
// do not need it because they bump the version; deletes and restores do.
func (e *Engine) Invalidate(ctx context.Context, projectID string) {
	e.cache.invalidate(projectID)
	if e.code != nil {
		e.code.InvalidateProject(ctx, projectID)
	}
	if e.previews != nil {
		e.previews.InvalidateProject(ctx, projectID)
	}
}

// Forget drops the in-memory entries of a project. Saves call it so old
// versions do not pile up in L1; Valkey entries expire on their own.
func (e *Engine) Forget(projectID string) {
	e.cache.invalidate(projectID)
}

// InvalidateAll clears the L1 cache.
func (e *Engine) InvalidateAll() {
	e.cache.invalidateAll()
}

// InFlight reports whether a frontend generation of the project is running.
func (e *Engine) InFlight(projectID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inflight[guardKey(projectID, cache.KindFrontend)]
	return ok
}

// acquire marks a generation as running and returns the function that
// clears the mark. Both frontend kinds share one guard.
func (e *Engine) acquire(projectID string, kind cache.Kind) (func(), error) {
	if kind == cache.KindFrontendByID {
		kind = cache.KindFrontend
	}
	key := guardKey(projectID, kind)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[key]; busy {
		slog.Debug("generation rejected, already running", "project", projectID, "kind", kind)
		return nil, ErrGenerationInProgress
	}
	e.inflight[key] = struct{}{}

	return func() {
		e.mu.Lock()
		delete(e.inflight, key)
		e.mu.Unlock()
	}, nil
}

func guardKey(projectID string, kind cache.Kind) string {
	return projectID + ":" + string(kind)
}

// wait blocks the calling goroutine for the configured delay. Other
// requests are served by their own goroutines meanwhile.
func (e *Engine) wait() {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
}
