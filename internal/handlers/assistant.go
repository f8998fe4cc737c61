package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"pagecraft/internal/assistant"
	"pagecraft/internal/middleware"
)

// Suggestions returns the example prompts shown in an empty chat.
func (a *API) Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": assistant.Suggestions()})
}

// AssistantMessage answers one chat prompt. When projectId names a
// project the caller can access, its canvas and schema are given to the
// model as context.
func (a *API) AssistantMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Prompt    string `json:"prompt"`
		ProjectID string `json:"projectId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		invalidInput(w, err.Error())
		return
	}

	var pc *assistant.ProjectContext
	if in.ProjectID != "" {
		id, err := uuid.Parse(in.ProjectID)
		if err != nil {
			invalidInput(w, "projectId is not a UUID")
			return
		}
		p, err := a.projects.FindByID(id)
		if err != nil {
			writeDomainError(w, r, "load assistant project", err)
			return
		}
		if p == nil || !canAccess(middleware.SessionFromCtx(r.Context()), p) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		pc = &assistant.ProjectContext{Name: p.Name, Elements: p.Elements, Tables: p.Tables}
	}

	reply, err := a.assistant.Reply(r.Context(), in.Prompt, pc)
	switch {
	case errors.Is(err, assistant.ErrEmptyPrompt):
		invalidInput(w, "prompt is required")
		return
	case errors.Is(err, assistant.ErrPromptTooLong):
		invalidInput(w, err.Error())
		return
	case err != nil:
		writeDomainError(w, r, "assistant reply", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": reply})
}
