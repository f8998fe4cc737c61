// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Recognized property keys, as they appear in the browser snapshot.
const (
	PropText            = "text"
	PropPlaceholder     = "placeholder"
	PropSrc             = "src"
	PropAlt             = "alt"
	PropBackgroundColor = "backgroundColor"
	PropTextColor       = "textColor"
	PropBorderRadius    = "borderRadius"
	PropPadding         = "padding"
	PropFontSize        = "fontSize"
	PropFontWeight      = "fontWeight"
	PropBoxShadow       = "boxShadow"
)

// Properties is the property bag of an element. Recognized keys are typed
// fields where the zero value means "unset"; every other key lands in Extra
// and is written back untouched on serialization.
type Properties struct {
	Text            string
	Placeholder     string
	Src             string
	Alt             string
	BackgroundColor string
	TextColor       string
	FontWeight      string
	BoxShadow       string
	BorderRadius    float64
	Padding         float64
	FontSize        float64

	Extra map[string]any
}

// stringProps and numberProps map recognized keys to their fields.
func (p *Properties) stringProps() map[string]*string {
	return map[string]*string{
		PropText:            &p.Text,
		PropPlaceholder:     &p.Placeholder,
		PropSrc:             &p.Src,
		PropAlt:             &p.Alt,
		PropBackgroundColor: &p.BackgroundColor,
		PropTextColor:       &p.TextColor,
		PropFontWeight:      &p.FontWeight,
		PropBoxShadow:       &p.BoxShadow,
	}
}

func (p *Properties) numberProps() map[string]*float64 {
	return map[string]*float64{
		PropBorderRadius: &p.BorderRadius,
		PropPadding:      &p.Padding,
		PropFontSize:     &p.FontSize,
	}
}

// IsRecognized reports whether key is one of the typed property keys.
func IsRecognized(key string) bool {
	var p Properties
	if _, ok := p.stringProps()[key]; ok {
		return true
	}
	_, ok := p.numberProps()[key]
	return ok
}

// MarshalJSON writes set recognized keys and all extension keys as one flat
// object. encoding/json sorts map keys, so output is deterministic.
func (p Properties) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	for k, v := range p.stringProps() {
		if *v != "" {
			out[k] = *v
		}
	}
	for k, v := range p.numberProps() {
		if *v != 0 {
			out[k] = *v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat property object. Numeric keys accept numbers
// or numeric strings; string keys accept strings or numbers (fontWeight is
// commonly sent as 500 rather than "500").
func (p *Properties) UnmarshalJSON(data []byte) error {
	*p = Properties{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	for key, val := range raw {
		if err := p.set(key, val); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges a patch into the bag. A null value removes the key.
func (p *Properties) Apply(patch map[string]json.RawMessage) error {
	for key, val := range patch {
		if err := p.set(key, val); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key, whether recognized or extension.
func (p *Properties) Get(key string) (any, bool) {
	if v, ok := p.stringProps()[key]; ok {
		return *v, *v != ""
	}
	if v, ok := p.numberProps()[key]; ok {
		return *v, *v != 0
	}
	v, ok := p.Extra[key]
	return v, ok
}

func (p *Properties) set(key string, val json.RawMessage) error {
	isNull := bytes.Equal(bytes.TrimSpace(val), []byte("null"))

	if field, ok := p.stringProps()[key]; ok {
		if isNull {
			*field = ""
			return nil
		}
		s, err := decodeLooseString(val)
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		*field = s
		return nil
	}

	if field, ok := p.numberProps()[key]; ok {
		if isNull {
			*field = 0
			return nil
		}
		n, err := decodeLooseNumber(val)
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		*field = n
		return nil
	}

	if isNull {
		delete(p.Extra, key)
		return nil
	}
	var v any
	if err := json.Unmarshal(val, &v); err != nil {
		return fmt.Errorf("property %q: %w", key, err)
	}
	if p.Extra == nil {
		p.Extra = make(map[string]any)
	}
	p.Extra[key] = v
	return nil
}

// Clone deep-copies the bag, including nested extension values.
func (p Properties) Clone() Properties {
	out := p
	if p.Extra != nil {
		out.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = cloneValue(v)
		}
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

func decodeLooseString(val json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(val, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(val, &b); err == nil {
		if b {
			return "true", nil
		}
		return "", nil
	}
	return "", fmt.Errorf("expected string, got %s", string(val))
}

func decodeLooseNumber(val json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(val, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", s)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %s", string(val))
}
