// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package codegen turns an element forest into the four frontend artifacts
// of a generated website: a React function component, a standalone HTML
// document, a stylesheet and a behavior script.
//
// Generation is a pure function of its input. The same forest always yields
// byte-identical output and the forest is never modified.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"pagecraft/internal/models"
)

// ErrInvalidInput is returned by Validate when a forest breaks the element
// invariants (missing id, duplicate id, negative or non-finite geometry).
var ErrInvalidInput = errors.New("invalid input")

// DefaultTitle is the document title used when Options.Title is empty.
const DefaultTitle = "Generated Website"

// Options tweaks generation. The zero value reproduces the builder's
// historical output: type-keyed stylesheet rules where same-type elements
// share one rule and the last element walked wins for shared properties.
type Options struct {
	// KeyByID adds a data-element-id attribute to every rendered element
	// and emits one stylesheet rule per element keyed by that attribute.
	KeyByID bool
	// Title is the <title> of the plain markup document.
	Title string
}

// Generate renders all four artifacts with default options.
func Generate(forest []models.Element) models.Artifacts {
	return GenerateWith(forest, Options{})
}

// GenerateWith renders all four artifacts. Callers that cannot guarantee
// well-formed input should run Validate first; Generate itself never fails.
func GenerateWith(forest []models.Element, opts Options) models.Artifacts {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return models.Artifacts{
		ComponentMarkup: componentMarkup(forest, opts),
		PlainMarkup:     plainMarkup(forest, opts),
		Stylesheet:      stylesheet(forest, opts),
		Script:          Script,
	}
}

// Validate checks the element invariants over the whole forest. All
// violations are joined into one error that matches ErrInvalidInput.
func Validate(forest []models.Element) error {
	var errs []error
	seen := make(map[string]bool)

	models.Walk(forest, func(el *models.Element, _ int) bool {
		if el.ID == "" {
			errs = append(errs, fmt.Errorf("%w: %s element without id", ErrInvalidInput, typeName(el.Type)))
		} else if seen[el.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate element id %q", ErrInvalidInput, el.ID))
		}
		seen[el.ID] = true

		for _, g := range []struct {
			name string
			v    float64
		}{{"x", el.X}, {"y", el.Y}, {"width", el.Width}, {"height", el.Height}} {
			if math.IsNaN(g.v) || math.IsInf(g.v, 0) {
				errs = append(errs, fmt.Errorf("%w: element %q has non-finite %s", ErrInvalidInput, el.ID, g.name))
			}
		}
		if el.Width < 0 || el.Height < 0 {
			errs = append(errs, fmt.Errorf("%w: element %q has negative size %vx%v", ErrInvalidInput, el.ID, el.Width, el.Height))
		}
		return true
	})

	return errors.Join(errs...)
}

// DefaultText returns the text rendered for an element and whether its
// type carries text content at all.
func DefaultText(el *models.Element) (string, bool) {
	switch el.Type {
	case models.ElementButton:
		if el.Properties.Text != "" {
			return el.Properties.Text, true
		}
		return "Button", true
	case models.ElementText:
		if el.Properties.Text != "" {
			return el.Properties.Text, true
		}
		return "Text", true
	default:
		return "", false
	}
}

func typeName(t models.ElementType) string {
	if t == "" {
		return "untyped"
	}
	return string(t)
}

// className returns the per-type class every dialect tags elements with.
func className(t models.ElementType) string {
	return "element-" + string(t)
}

// cw is a line writer with an indentation level measured in spaces.
type cw struct {
	bytes.Buffer
	indent int
}

func (w *cw) line(format string, args ...any) {
	w.WriteString(strings.Repeat(" ", w.indent))
	fmt.Fprintf(&w.Buffer, format, args...)
	w.WriteByte('\n')
}

func (w *cw) nest(fn func()) {
	w.indent += indentStep
	fn()
	w.indent -= indentStep
}

// indentStep is the number of spaces added per nesting level.
const indentStep = 2
