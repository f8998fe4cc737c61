package codegen

import (
	"errors"
	"strings"
	"testing"

	"pagecraft/internal/models"
)

func button(id string, x, y, w, h float64, props models.Properties) models.Element {
	return models.Element{ID: id, Type: models.ElementButton, X: x, Y: y, Width: w, Height: h, Properties: props}
}

// TestEndToEndButton covers a single button rendered to plain markup.
func TestEndToEndButton(t *testing.T) {
	forest := []models.Element{
		button("b1", 10, 20, 120, 40, models.Properties{Text: "Click me", BackgroundColor: "#3B82F6"}),
	}

	out := Generate(forest)

	for _, want := range []string{
		"left: 10px; top: 20px; width: 120px; height: 40px",
		"background-color: #3B82F6",
		"Click me",
	} {
		if !strings.Contains(out.PlainMarkup, want) {
			t.Errorf("plain markup missing %q:\n%s", want, out.PlainMarkup)
		}
	}

	wantLine := `      <button class="element-button" style="position: absolute; left: 10px; top: 20px; width: 120px; height: 40px; background-color: #3B82F6">Click me</button>`
	if !strings.Contains(out.PlainMarkup, wantLine+"\n") {
		t.Errorf("plain markup missing exact button line:\n%s", out.PlainMarkup)
	}

	wantComponent := `      <button className="element-button" style={{"position":"absolute","left":"10px","top":"20px","width":"120px","height":"40px","backgroundColor":"#3B82F6"}}>
        Click me
      </button>`
	if !strings.Contains(out.ComponentMarkup, wantComponent) {
		t.Errorf("component markup missing button block:\n%s", out.ComponentMarkup)
	}
}

func TestDeterminism(t *testing.T) {
	forest := []models.Element{
		{ID: "c", Type: models.ElementContainer, Width: 300, Height: 200, Children: []models.Element{
			{ID: "t", Type: models.ElementText, Width: 10, Height: 10, Properties: models.Properties{
				Text: "x", Extra: map[string]any{"z": 1, "a": 2},
			}},
		}},
		{ID: "i", Type: models.ElementImage, Properties: models.Properties{Src: "/a.png"}},
	}

	first := GenerateWith(forest, Options{KeyByID: true})
	for i := 0; i < 20; i++ {
		if got := GenerateWith(forest, Options{KeyByID: true}); got != first {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestDefaultButtonText(t *testing.T) {
	out := Generate([]models.Element{button("b", 0, 0, 100, 50, models.Properties{})})

	if !strings.Contains(out.ComponentMarkup, "\n        Button\n") {
		t.Errorf("component markup missing default text:\n%s", out.ComponentMarkup)
	}
	if !strings.Contains(out.PlainMarkup, ">Button</button>") {
		t.Errorf("plain markup missing default text:\n%s", out.PlainMarkup)
	}
}

func TestPerTypeRendering(t *testing.T) {
	tests := []struct {
		name      string
		el        models.Element
		plain     string
		component string
	}{
		{
			name:      "text default",
			el:        models.Element{ID: "a", Type: models.ElementText},
			plain:     ">Text</div>",
			component: "\n        Text\n",
		},
		{
			name:      "input placeholder",
			el:        models.Element{ID: "a", Type: models.ElementInput, Properties: models.Properties{Placeholder: "Email"}},
			plain:     `<input type="text" placeholder="Email" class="element-input"`,
			component: "<input\n        type=\"text\"\n        placeholder=\"Email\"\n        className=\"element-input\"\n",
		},
		{
			name:      "image src and alt",
			el:        models.Element{ID: "a", Type: models.ElementImage, Properties: models.Properties{Src: "/p.jpg", Alt: "Photo"}},
			plain:     `<img src="/p.jpg" alt="Photo" class="element-image"`,
			component: "<img\n        src=\"/p.jpg\"\n        alt=\"Photo\"\n",
		},
		{
			name:      "card placeholder",
			el:        models.Element{ID: "a", Type: models.ElementCard},
			plain:     "><!-- card --></div>",
			component: "{/* card */}",
		},
		{
			name:      "form placeholder",
			el:        models.Element{ID: "a", Type: models.ElementForm},
			plain:     "><!-- form --></div>",
			component: "{/* form */}",
		},
		{
			name:      "unknown type",
			el:        models.Element{ID: "a", Type: "carousel"},
			plain:     `<div class="element-carousel"`,
			component: "{/* carousel */}",
		},
		{
			name:      "empty container",
			el:        models.Element{ID: "a", Type: models.ElementContainer},
			plain:     `0px"></div>`,
			component: `}}></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Generate([]models.Element{tt.el})
			if !strings.Contains(out.PlainMarkup, tt.plain) {
				t.Errorf("plain markup missing %q:\n%s", tt.plain, out.PlainMarkup)
			}
			if !strings.Contains(out.ComponentMarkup, tt.component) {
				t.Errorf("component markup missing %q:\n%s", tt.component, out.ComponentMarkup)
			}
		})
	}
}

func TestRecursiveStructurePreserved(t *testing.T) {
	forest := []models.Element{{
		ID: "box", Type: models.ElementContainer, Width: 300, Height: 200,
		Children: []models.Element{
			{ID: "A", Type: models.ElementText, Properties: models.Properties{Text: "Alpha"}},
			{ID: "B", Type: models.ElementText, Properties: models.Properties{Text: "Beta"}},
		},
	}}
	out := Generate(forest)

	t.Run("plain", func(t *testing.T) {
		container := strings.Index(out.PlainMarkup, "\n    <div class=\"element-container\"")
		a := strings.Index(out.PlainMarkup, "\n      <div class=\"element-text\"")
		b := strings.Index(out.PlainMarkup, ">Beta</div>")
		alpha := strings.Index(out.PlainMarkup, ">Alpha</div>")
		if container < 0 || a < 0 || alpha < 0 || b < 0 {
			t.Fatalf("missing blocks:\n%s", out.PlainMarkup)
		}
		if !(container < a && alpha < b) {
			t.Errorf("wrong order: container=%d A=%d alpha=%d beta=%d", container, a, alpha, b)
		}
		if !strings.Contains(out.PlainMarkup, "\n    </div>\n") {
			t.Errorf("container not closed at its own depth:\n%s", out.PlainMarkup)
		}
	})

	t.Run("component", func(t *testing.T) {
		container := strings.Index(out.ComponentMarkup, "\n      <div className=\"element-container\"")
		alpha := strings.Index(out.ComponentMarkup, "\n          Alpha\n")
		beta := strings.Index(out.ComponentMarkup, "\n          Beta\n")
		if container < 0 || alpha < 0 || beta < 0 {
			t.Fatalf("missing blocks:\n%s", out.ComponentMarkup)
		}
		if !(container < alpha && alpha < beta) {
			t.Errorf("wrong order: container=%d alpha=%d beta=%d", container, alpha, beta)
		}
		if strings.Count(out.ComponentMarkup, "\n        <div className=\"element-text\"") != 2 {
			t.Errorf("children not nested one level deeper:\n%s", out.ComponentMarkup)
		}
	})
}

func TestPropertyOmission(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		want   bool
	}{
		{name: "zero radius dropped", radius: 0, want: false},
		{name: "set radius kept", radius: 12, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := button("b", 0, 0, 10, 10, models.Properties{BorderRadius: tt.radius})
			style := InlineStyle(Style(&el))
			if got := strings.Contains(style, "border-radius: 12px"); got != tt.want {
				t.Errorf("style %q: contains border-radius 12px = %v, want %v", style, got, tt.want)
			}
			if !tt.want && strings.Contains(style, "border-radius") {
				t.Errorf("style %q should not mention border-radius", style)
			}
		})
	}
}

func TestStyleMappingOrder(t *testing.T) {
	el := models.Element{
		Type: models.ElementText, X: 1.5, Y: 2, Width: 3, Height: 4,
		Properties: models.Properties{
			BoxShadow: "0 1px 2px #000", FontWeight: "600", FontSize: 18, Padding: 4,
			BorderRadius: 6, TextColor: "#111", BackgroundColor: "#fff",
		},
	}
	got := InlineStyle(Style(&el))
	want := "position: absolute; left: 1.5px; top: 2px; width: 3px; height: 4px; " +
		"background-color: #fff; color: #111; border-radius: 6px; padding: 4px; " +
		"font-size: 18px; font-weight: 600; box-shadow: 0 1px 2px #000"
	if got != want {
		t.Errorf("InlineStyle =\n%s\nwant\n%s", got, want)
	}
}

func TestTypeKeyedCollision(t *testing.T) {
	forest := []models.Element{
		{ID: "a", Type: models.ElementText, Width: 10, Height: 10, Properties: models.Properties{BackgroundColor: "#111111", Padding: 8}},
		{ID: "b", Type: models.ElementText, Width: 20, Height: 20, Properties: models.Properties{BackgroundColor: "#222222"}},
	}
	css := Generate(forest).Stylesheet

	if n := strings.Count(css, ".element-text {"); n != 1 {
		t.Fatalf("got %d .element-text rules, want 1:\n%s", n, css)
	}
	if !strings.Contains(css, "background-color: #222222;") || strings.Contains(css, "#111111") {
		t.Errorf("later node should win background-color:\n%s", css)
	}
	if !strings.Contains(css, "width: 20px;") {
		t.Errorf("later node should win width:\n%s", css)
	}
	if !strings.Contains(css, "padding: 8px;") {
		t.Errorf("declaration only on earlier node should remain:\n%s", css)
	}
}

func TestStylesheetShape(t *testing.T) {
	forest := []models.Element{
		{ID: "c", Type: models.ElementContainer, Width: 5, Height: 5, Children: []models.Element{
			button("b", 1, 2, 3, 4, models.Properties{}),
		}},
	}
	css := Generate(forest).Stylesheet

	if !strings.HasPrefix(css, "/* Generated CSS */\n.generated-container {") {
		t.Errorf("container rule must come first:\n%s", css)
	}
	wantButton := ".element-button {\n  position: absolute;\n  left: 1px;\n  top: 2px;\n  width: 3px;\n  height: 4px;\n}\n"
	if !strings.Contains(css, wantButton) {
		t.Errorf("missing nested button rule:\n%s", css)
	}
	if strings.Index(css, ".element-container {") > strings.Index(css, ".element-button {") {
		t.Errorf("rules should follow depth-first walk order:\n%s", css)
	}
}

func TestKeyByID(t *testing.T) {
	forest := []models.Element{
		{ID: "one", Type: models.ElementText, Properties: models.Properties{BackgroundColor: "#111111"}},
		{ID: "two", Type: models.ElementText, Properties: models.Properties{BackgroundColor: "#222222"}},
	}
	out := GenerateWith(forest, Options{KeyByID: true})

	for _, sel := range []string{`[data-element-id="one"] {`, `[data-element-id="two"] {`} {
		if !strings.Contains(out.Stylesheet, sel) {
			t.Errorf("stylesheet missing %s:\n%s", sel, out.Stylesheet)
		}
	}
	if strings.Contains(out.Stylesheet, ".element-text {") {
		t.Error("id-keyed mode should not emit type rules")
	}
	if !strings.Contains(out.Stylesheet, "#111111") || !strings.Contains(out.Stylesheet, "#222222") {
		t.Error("id-keyed rules should keep both colors")
	}
	if !strings.Contains(out.PlainMarkup, `class="element-text" data-element-id="one"`) {
		t.Errorf("plain markup missing id attribute:\n%s", out.PlainMarkup)
	}
	if !strings.Contains(out.ComponentMarkup, `className="element-text" data-element-id="two"`) {
		t.Errorf("component markup missing id attribute:\n%s", out.ComponentMarkup)
	}
}

func TestEscaping(t *testing.T) {
	forest := []models.Element{
		button("b", 0, 0, 1, 1, models.Properties{Text: `<script>alert("x")</script> {evil}`}),
		{ID: "i", Type: models.ElementImage, Properties: models.Properties{Src: `x" onerror="alert(1)`}},
	}
	out := Generate(forest)

	if strings.Contains(out.PlainMarkup, "<script>alert") {
		t.Error("plain markup contains raw script tag")
	}
	if !strings.Contains(out.PlainMarkup, "&lt;script&gt;") {
		t.Error("plain markup should escape text")
	}
	if strings.Contains(out.PlainMarkup, `onerror="alert`) {
		t.Error("plain markup attribute injection")
	}
	if !strings.Contains(out.ComponentMarkup, "&#123;evil&#125;") {
		t.Errorf("component markup should escape braces:\n%s", out.ComponentMarkup)
	}
}

func TestDocumentSkeleton(t *testing.T) {
	out := GenerateWith(nil, Options{Title: "My <Site>"})

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>My &lt;Site&gt;</title>",
		`<link rel="stylesheet" href="styles.css">`,
		`<script src="script.js"></script>`,
	} {
		if !strings.Contains(out.PlainMarkup, want) {
			t.Errorf("plain markup missing %q", want)
		}
	}
	if !strings.HasPrefix(out.ComponentMarkup, "import React from 'react';\n\n") {
		t.Errorf("component markup missing prologue:\n%s", out.ComponentMarkup)
	}
	if !strings.HasSuffix(out.ComponentMarkup, "export default GeneratedComponent;\n") {
		t.Errorf("component markup missing export:\n%s", out.ComponentMarkup)
	}
	if !strings.Contains(Generate(nil).PlainMarkup, "<title>"+DefaultTitle+"</title>") {
		t.Error("default title not applied")
	}
}

func TestScriptIgnoresForest(t *testing.T) {
	a := Generate(nil).Script
	b := Generate([]models.Element{button("b", 0, 0, 1, 1, models.Properties{})}).Script
	if a != b || a != Script {
		t.Error("script should be the same constant for every forest")
	}
	for _, want := range []string{"DOMContentLoaded", "querySelectorAll('button')", "'click'", "querySelectorAll('input')", "'input'"} {
		if !strings.Contains(Script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestGenerateDoesNotMutate(t *testing.T) {
	forest := []models.Element{{ID: "c", Type: models.ElementContainer, Children: []models.Element{
		{ID: "t", Type: models.ElementText},
	}}}
	before := models.CloneForest(forest)
	Generate(forest)
	if forest[0].Children[0].Properties.Text != before[0].Children[0].Properties.Text || len(forest[0].Children) != 1 {
		t.Error("Generate modified its input")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		forest  []models.Element
		wantErr bool
	}{
		{name: "empty forest", forest: nil},
		{name: "valid nested", forest: []models.Element{{ID: "a", Type: models.ElementContainer, Children: []models.Element{{ID: "b"}}}}},
		{name: "missing id", forest: []models.Element{{Type: models.ElementText}}, wantErr: true},
		{name: "duplicate id across depth", forest: []models.Element{{ID: "a", Children: []models.Element{{ID: "a"}}}}, wantErr: true},
		{name: "negative width", forest: []models.Element{{ID: "a", Width: -1}}, wantErr: true},
		{name: "negative child height", forest: []models.Element{{ID: "a", Children: []models.Element{{ID: "b", Height: -5}}}}, wantErr: true},
		{name: "unknown type allowed", forest: []models.Element{{ID: "a", Type: "carousel"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.forest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v does not match ErrInvalidInput", err)
			}
		})
	}
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"position":         "position",
		"background-color": "backgroundColor",
		"box-shadow":       "boxShadow",
		"font-size":        "fontSize",
	}
	for in, want := range tests {
		if got := camelCase(in); got != want {
			t.Errorf("camelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStyleValuesMatchAcrossArtifacts(t *testing.T) {
	forest := []models.Element{
		button("b", 0, 0, 10, 10, models.Properties{BackgroundColor: "red; display:none", BoxShadow: "0 0 1px {x}"}),
	}
	out := Generate(forest)

	for name, body := range map[string]string{"markup": out.PlainMarkup, "component": out.ComponentMarkup, "stylesheet": out.Stylesheet} {
		if strings.Contains(body, "red; display") {
			t.Errorf("%s carries the raw value:\n%s", name, body)
		}
		if !strings.Contains(body, "red display:none") {
			t.Errorf("%s is missing the sanitized value:\n%s", name, body)
		}
	}
	if !strings.Contains(out.PlainMarkup, "box-shadow: 0 0 1px x") {
		t.Errorf("inline style should strip braces:\n%s", out.PlainMarkup)
	}
}

func TestJSString(t *testing.T) {
	tests := map[string]string{
		"plain":            `"plain"`,
		"\a":               `"\u0007"`,
		"</script>&":       `"\u003c/script\u003e\u0026"`,
		"line\u2028break":  `"line\u2028break"`,
		"emoji \U0001F600": "\"emoji \U0001F600\"",
		`say "hi"\n`:       `"say \"hi\"\\n"`,
	}
	for in, want := range tests {
		got := jsString(in)
		if got != want {
			t.Errorf("jsString(%q) = %s, want %s", in, got, want)
		}
		if strings.Contains(got, `\U`) || strings.Contains(got, `\a`) {
			t.Errorf("jsString(%q) = %s uses an escape JavaScript does not know", in, got)
		}
	}
}
