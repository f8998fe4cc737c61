package engine

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"pagecraft/internal/codegen"
	"pagecraft/internal/models"
)

//go:embed templates/preview.html
var previewFS embed.FS

var previewTemplate = template.Must(template.ParseFS(previewFS, "templates/preview.html"))

// previewNode is one element as the preview template sees it.
type previewNode struct {
	Class       string
	Type        string
	Text        string
	Placeholder string
	Src         string
	Alt         string
	Children    []previewNode
}

type previewData struct {
	Title    string
	Name     string
	Styles   template.CSS
	Elements []previewNode
}

// Preview returns the preview document of a project, served from the
// preview cache when the project version was rendered before.
func (e *Engine) Preview(ctx context.Context, p *models.Project) ([]byte, error) {
	id := p.ID.String()
	if e.previews != nil {
		if html, ok := e.previews.Get(ctx, id, p.Version); ok {
			return html, nil
		}
	}

	html, err := e.RenderPreview(p)
	if err != nil {
		return nil, err
	}
	if e.previews != nil {
		e.previews.Set(context.WithoutCancel(ctx), id, p.Version, html)
	}
	return html, nil
}

// RenderPreview renders a self-contained HTML document showing the
// project's elements at their canvas positions. Unlike the generated
// stylesheet, every element gets its own identifier-keyed rule, so two
// buttons never share styles.
func (e *Engine) RenderPreview(p *models.Project) ([]byte, error) {
	if err := codegen.Validate(p.Elements); err != nil {
		return nil, err
	}

	name := p.Name
	if name == "" {
		name = codegen.DefaultTitle
	}
	data := previewData{
		Title:    name + " - Preview",
		Name:     name,
		Styles:   template.CSS(previewStyles(p.Elements)),
		Elements: previewNodes(p.Elements),
	}

	var buf bytes.Buffer
	if err := e.preview.Execute(&buf, data); err != nil {
		slog.Error("preview render failed", "project", p.ID, "error", err)
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}

func previewNodes(forest []models.Element) []previewNode {
	nodes := make([]previewNode, len(forest))
	for i := range forest {
		el := &forest[i]
		text, _ := codegen.DefaultText(el)
		nodes[i] = previewNode{
			Class:       previewClass(el.ID),
			Type:        string(el.Type),
			Text:        text,
			Placeholder: el.Properties.Placeholder,
			Src:         el.Properties.Src,
			Alt:         el.Properties.Alt,
			Children:    previewNodes(el.Children),
		}
	}
	return nodes
}

// previewStyles emits one rule per element. Unset properties fall back to
// fixed defaults so every rule lists the same declarations.
func previewStyles(forest []models.Element) string {
	var b strings.Builder
	models.Walk(forest, func(el *models.Element, _ int) bool {
		p := el.Properties

		border, cursor := "none", "default"
		switch el.Type {
		case models.ElementInput:
			border = "1px solid #d1d5db"
		case models.ElementButton:
			cursor = "pointer"
		}

		decls := []codegen.Declaration{
			{Property: "position", Value: "absolute"},
			{Property: "left", Value: pixels(el.X)},
			{Property: "top", Value: pixels(el.Y)},
			{Property: "width", Value: pixels(el.Width)},
			{Property: "height", Value: pixels(el.Height)},
			{Property: "background-color", Value: orDefault(p.BackgroundColor, "transparent")},
			{Property: "color", Value: orDefault(p.TextColor, "#000")},
			{Property: "border-radius", Value: pixels(p.BorderRadius)},
			{Property: "padding", Value: pixels(p.Padding)},
			{Property: "font-size", Value: pixels(orDefaultNumber(p.FontSize, 16))},
			{Property: "font-weight", Value: orDefault(p.FontWeight, "normal")},
			{Property: "box-shadow", Value: orDefault(p.BoxShadow, "none")},
			{Property: "display", Value: "flex"},
			{Property: "align-items", Value: "center"},
			{Property: "justify-content", Value: "center"},
			{Property: "border", Value: border},
			{Property: "cursor", Value: cursor},
			{Property: "transition", Value: "all 0.2s ease"},
		}

		sel := "." + previewClass(el.ID)
		b.WriteString("    " + sel + " {\n")
		for _, d := range decls {
			b.WriteString("      " + d.Property + ": " + codegen.CSSValue(d.Value) + ";\n")
		}
		b.WriteString("    }\n")
		if el.Type == models.ElementButton {
			b.WriteString("    " + sel + ":hover {\n      opacity: 0.9;\n      transform: translateY(-1px);\n    }\n")
		}
		return true
	})
	return b.String()
}

// previewClass maps an element id onto a class name. Characters that are
// not valid in an unescaped class name become underscores, and such ids get
// a hash suffix so that "a.b" and "a_b" keep separate rules.
func previewClass(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if name != id {
		name = fmt.Sprintf("%s-%08x", name, uint32(xxhash.Sum64String(id)))
	}
	return "element-" + name
}

func pixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultNumber(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
