// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package library holds the component palette and turns a palette item
// into a fresh canvas element at a drop point.
package library

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"pagecraft/internal/models"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// Template size used when an item does not declare one.
const (
	DefaultWidth  = 100
	DefaultHeight = 50
)

// yamlItem mirrors models.LibraryItem with a loosely typed property bag so
// the typed decoding rules of models.Properties apply to the catalogue too.
type yamlItem struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Icon     string `yaml:"icon"`
	Template struct {
		Type       string         `yaml:"type"`
		Width      float64        `yaml:"width"`
		Height     float64        `yaml:"height"`
		Properties map[string]any `yaml:"properties"`
	} `yaml:"template"`
}

// Library is an immutable, ordered component palette.
type Library struct {
	items []models.LibraryItem
	byID  map[string]int
}

// Default returns the built-in palette. It panics if the embedded
// catalogue does not parse, which a test guards against.
func Default() *Library {
	lib, err := Parse(catalogueYAML)
	if err != nil {
		panic(fmt.Sprintf("library: embedded catalogue: %v", err))
	}
	return lib
}

// Parse decodes a YAML catalogue.
func Parse(data []byte) (*Library, error) {
	var raw []yamlItem
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	lib := &Library{byID: make(map[string]int, len(raw))}
	for _, r := range raw {
		if r.ID == "" {
			return nil, fmt.Errorf("parse catalogue: item %q has no id", r.Name)
		}
		if _, dup := lib.byID[r.ID]; dup {
			return nil, fmt.Errorf("parse catalogue: duplicate item %q", r.ID)
		}
		props, err := toProperties(r.Template.Properties)
		if err != nil {
			return nil, fmt.Errorf("parse catalogue: item %q: %w", r.ID, err)
		}
		lib.byID[r.ID] = len(lib.items)
		lib.items = append(lib.items, models.LibraryItem{
			ID:       r.ID,
			Name:     r.Name,
			Category: models.LibraryCategory(r.Category),
			Icon:     r.Icon,
			Template: models.Template{
				Type:       models.ElementType(r.Template.Type),
				Width:      r.Template.Width,
				Height:     r.Template.Height,
				Properties: props,
			},
		})
	}
	return lib, nil
}

// toProperties routes a YAML mapping through the JSON property decoder.
func toProperties(m map[string]any) (models.Properties, error) {
	var p models.Properties
	if len(m) == 0 {
		return p, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(data, &p)
	return p, err
}

// All returns every item in catalogue order.
func (l *Library) All() []models.LibraryItem {
	out := make([]models.LibraryItem, len(l.items))
	for i, it := range l.items {
		out[i] = it
		out[i].Template.Properties = it.Template.Properties.Clone()
	}
	return out
}

// Group is one palette section.
type Group struct {
	Category models.LibraryCategory `json:"category"`
	Items    []models.LibraryItem   `json:"items"`
}

// ByCategory groups items in the fixed palette order basic, forms, layout,
// data. Every category is present even when empty.
func (l *Library) ByCategory() []Group {
	groups := make([]Group, len(models.Categories))
	index := make(map[models.LibraryCategory]int, len(models.Categories))
	for i, c := range models.Categories {
		groups[i] = Group{Category: c, Items: []models.LibraryItem{}}
		index[c] = i
	}
	for _, it := range l.All() {
		if i, ok := index[it.Category]; ok {
			groups[i].Items = append(groups[i].Items, it)
		}
	}
	return groups
}

// Find returns the item with the given id.
func (l *Library) Find(id string) (models.LibraryItem, bool) {
	i, ok := l.byID[id]
	if !ok {
		return models.LibraryItem{}, false
	}
	it := l.items[i]
	it.Template.Properties = it.Template.Properties.Clone()
	return it, true
}

// Instantiate creates a new element from item centered on the drop point.
// The element gets a fresh id and its own copy of the template properties.
// A template without a size uses 100x50.
func Instantiate(item models.LibraryItem, dropX, dropY float64) (models.Element, error) {
	id, err := models.NewID("element")
	if err != nil {
		return models.Element{}, err
	}
	w, h := item.Template.Width, item.Template.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	return models.Element{
		ID:         id,
		Type:       item.Template.Type,
		X:          dropX - w/2,
		Y:          dropY - h/2,
		Width:      w,
		Height:     h,
		Properties: item.Template.Properties.Clone(),
	}, nil
}
