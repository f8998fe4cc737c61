// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"pagecraft/internal/canvas"
	"pagecraft/internal/codegen"
	"pagecraft/internal/engine"
	"pagecraft/internal/schema"
	"pagecraft/internal/store"
)

// maxBodyBytes bounds request bodies. A full snapshot of a large canvas
// stays well below it.
const maxBodyBytes = 2 << 20

// writeJSON encodes data as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeError writes the API error body {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// invalidInput answers 400 with the "invalid input: ..." message used for
// every malformed request.
func invalidInput(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusBadRequest, "invalid input: "+detail)
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("malformed JSON body: %v", err)
	}
	return nil
}

// writeDomainError maps errors from the builder packages onto HTTP
// statuses. Anything unrecognized is logged and answered with 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, engine.ErrGenerationInProgress):
		writeError(w, http.StatusConflict, "generation already in progress")
	case errors.Is(err, store.ErrVersionConflict):
		writeError(w, http.StatusConflict, "project was modified concurrently, reload and retry")
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, canvas.ErrElementNotFound):
		writeError(w, http.StatusNotFound, "element not found")
	case errors.Is(err, schema.ErrTableNotFound):
		writeError(w, http.StatusNotFound, "table not found")
	case errors.Is(err, schema.ErrFieldNotFound):
		writeError(w, http.StatusNotFound, "field not found")
	case errors.Is(err, codegen.ErrInvalidInput):
		// Already carries the "invalid input" prefix.
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, canvas.ErrNotContainer),
		errors.Is(err, canvas.ErrDuplicateID),
		errors.Is(err, schema.ErrInvalidName),
		errors.Is(err, schema.ErrDuplicateName),
		errors.Is(err, schema.ErrInvalidFieldType):
		invalidInput(w, err.Error())
	default:
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
