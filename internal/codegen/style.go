package codegen

import (
	"encoding/json"
	"strconv"
	"strings"

	"pagecraft/internal/models"
)

// Declaration is a single CSS property/value pair. Property uses the CSS
// hyphenated spelling.
type Declaration struct {
	Property string
	Value    string
}

// Style derives the ordered style mapping for an element: absolute
// positioning and size first, then one declaration per recognized
// property that is set. Zero numbers and empty strings count as unset, so
// a border radius of 0 produces no declaration. String values pass through
// CSSValue, so every serialization of the mapping carries the same text.
func Style(el *models.Element) []Declaration {
	p := el.Properties
	decls := []Declaration{
		{"position", "absolute"},
		{"left", px(el.X)},
		{"top", px(el.Y)},
		{"width", px(el.Width)},
		{"height", px(el.Height)},
	}

	add := func(prop, value string) {
		if value = CSSValue(value); value != "" {
			decls = append(decls, Declaration{prop, value})
		}
	}
	addPx := func(prop string, v float64) {
		if v != 0 {
			decls = append(decls, Declaration{prop, px(v)})
		}
	}

	add("background-color", p.BackgroundColor)
	add("color", p.TextColor)
	addPx("border-radius", p.BorderRadius)
	addPx("padding", p.Padding)
	addPx("font-size", p.FontSize)
	add("font-weight", p.FontWeight)
	add("box-shadow", p.BoxShadow)

	return decls
}

// InlineStyle serializes a style mapping as a flat "key: value" list for
// a style attribute.
func InlineStyle(decls []Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.Property + ": " + d.Value
	}
	return strings.Join(parts, "; ")
}

// styleLiteral serializes a style mapping as a JSX object literal with
// camelCase keys, e.g. {"position":"absolute","backgroundColor":"#fff"}.
func styleLiteral(decls []Declaration) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, d := range decls {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(camelCase(d.Property)))
		b.WriteByte(':')
		b.WriteString(jsString(d.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// camelCase converts a hyphenated CSS property to its DOM style key.
func camelCase(prop string) string {
	parts := strings.Split(prop, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// jsString quotes s as a JavaScript string literal that is also safe to
// embed in markup: angle brackets, ampersands and control characters come
// out as \u escapes.
func jsString(s string) string {
	q, _ := json.Marshal(s)
	return string(q)
}

// px formats a canvas number as a CSS pixel length without trailing zeros.
func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
