// Package assistant answers questions in the builder's chat panel. Replies
// come from a hosted language model when one is configured and from a
// built-in keyword table otherwise, or when the model call fails. Every
// reply is markdown and is returned with its HTML rendering.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pagecraft/internal/markdown"
	"pagecraft/internal/models"
)

// ErrEmptyPrompt is returned for a blank prompt.
var ErrEmptyPrompt = errors.New("empty prompt")

// ErrPromptTooLong is returned for a prompt over MaxPromptLength.
var ErrPromptTooLong = errors.New("prompt too long")

// MaxPromptLength bounds the prompt size in bytes.
const MaxPromptLength = 4000

// DefaultTimeout bounds one provider call.
const DefaultTimeout = 30 * time.Second

const systemPrompt = `You are the assistant of a visual website builder. Users drag buttons, text,
inputs, images, cards, containers and forms onto a canvas, edit their properties
(colors, font size and weight, padding, border radius, box shadow), define database
tables with typed fields, generate React, HTML, CSS and JavaScript code plus an
Express and Sequelize backend, preview the result and deploy it.
Answer briefly in markdown. Refer to the builder's panels (component sidebar,
Properties panel, Database, Preview, Deploy) rather than to code the user cannot see.`

// ProjectContext summarizes the open project for the model.
type ProjectContext struct {
	Name     string
	Elements []models.Element
	Tables   []models.Table
}

// Assistant produces chat replies. The zero value answers from the keyword
// table only.
type Assistant struct {
	registry *Registry
	timeout  time.Duration
	now      func() time.Time
}

// New creates an assistant. registry may be nil.
func New(registry *Registry) *Assistant {
	return &Assistant{registry: registry, timeout: DefaultTimeout, now: time.Now}
}

// Reply answers one prompt.
func (a *Assistant) Reply(ctx context.Context, prompt string, pc *ProjectContext) (models.ChatMessage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.ChatMessage{}, ErrEmptyPrompt
	}
	if len(prompt) > MaxPromptLength {
		return models.ChatMessage{}, fmt.Errorf("%w: more than %d bytes", ErrPromptTooLong, MaxPromptLength)
	}

	content := a.generate(ctx, prompt, pc)

	html, err := markdown.ToHTML(content)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("render reply: %w", err)
	}
	id, err := models.NewID("msg")
	if err != nil {
		return models.ChatMessage{}, err
	}
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	return models.ChatMessage{
		ID:        id,
		Role:      models.ChatAssistant,
		Content:   content,
		HTML:      html,
		Timestamp: now().UTC(),
	}, nil
}

// generate asks the active provider and falls back to the keyword table.
func (a *Assistant) generate(ctx context.Context, prompt string, pc *ProjectContext) string {
	if a.registry == nil {
		return Canned(prompt)
	}
	p, err := a.registry.Active()
	if err != nil {
		return Canned(prompt)
	}

	timeout := a.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Generate(ctx, systemPrompt, userPrompt(prompt, pc))
	if err != nil {
		slog.Warn("assistant provider failed, using canned reply", "provider", p.Name(), "error", err)
		return Canned(prompt)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Canned(prompt)
	}
	slog.Debug("assistant reply generated", "provider", p.Name(), "duration", time.Since(start))
	return text
}

// userPrompt prefixes the question with a short description of the project.
func userPrompt(prompt string, pc *ProjectContext) string {
	if pc == nil {
		return prompt
	}
	var b strings.Builder
	if pc.Name != "" {
		fmt.Fprintf(&b, "Project: %s\n", pc.Name)
	}

	counts := make(map[models.ElementType]int)
	var order []models.ElementType
	models.Walk(pc.Elements, func(el *models.Element, _ int) bool {
		if counts[el.Type] == 0 {
			order = append(order, el.Type)
		}
		counts[el.Type]++
		return true
	})
	if len(order) > 0 {
		parts := make([]string, len(order))
		for i, t := range order {
			parts[i] = fmt.Sprintf("%d %s", counts[t], t)
		}
		fmt.Fprintf(&b, "Canvas: %s\n", strings.Join(parts, ", "))
	}

	if len(pc.Tables) > 0 {
		names := make([]string, len(pc.Tables))
		for i, t := range pc.Tables {
			names[i] = fmt.Sprintf("%s (%d fields)", t.Name, len(t.Fields))
		}
		fmt.Fprintf(&b, "Tables: %s\n", strings.Join(names, ", "))
	}

	if b.Len() == 0 {
		return prompt
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(prompt)
	return b.String()
}
