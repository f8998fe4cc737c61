// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ElementType enumerates the visual building blocks a user can drop on the canvas.
type ElementType string

const (
	ElementButton    ElementType = "button"
	ElementText      ElementType = "text"
	ElementInput     ElementType = "input"
	ElementCard      ElementType = "card"
	ElementContainer ElementType = "container"
	ElementImage     ElementType = "image"
	ElementForm      ElementType = "form"
)

// IsContainer reports whether elements of this type may hold children.
func (t ElementType) IsContainer() bool {
	return t == ElementContainer
}

// Element is one node of the canvas tree. Position is relative to the
// canvas top-left corner; size is never negative. Children are only
// meaningful for container types but are stored for any type.
type Element struct {
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Properties Properties  `json:"properties"`
	Children   []Element   `json:"children,omitempty"`
}

// Clone returns a deep copy of the element and its whole subtree.
func (e Element) Clone() Element {
	out := e
	out.Properties = e.Properties.Clone()
	out.Children = CloneForest(e.Children)
	return out
}

// CloneForest deep-copies an ordered sequence of elements. A nil forest
// stays nil so JSON output keeps omitting empty children.
func CloneForest(forest []Element) []Element {
	if forest == nil {
		return nil
	}
	out := make([]Element, len(forest))
	for i, el := range forest {
		out[i] = el.Clone()
	}
	return out
}

// Walk visits every element depth-first in sibling order. depth is 0 for
// roots. Returning false from fn stops the walk.
func Walk(forest []Element, fn func(el *Element, depth int) bool) bool {
	return walk(forest, 0, fn)
}

func walk(forest []Element, depth int, fn func(el *Element, depth int) bool) bool {
	for i := range forest {
		if !fn(&forest[i], depth) {
			return false
		}
		if !walk(forest[i].Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// NewID returns a fresh URL-safe identifier such as "element-V1StGXR8_Z5jdHi6B-myT".
func NewID(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + "-" + id, nil
}
