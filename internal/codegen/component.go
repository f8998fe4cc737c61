package codegen

import (
	"html"
	"strings"

	"pagecraft/internal/models"
)

// jsxText escapes text for a JSX child or attribute. Braces are escaped on
// top of HTML escaping because JSX treats them as expression delimiters.
func jsxText(s string) string {
	return strings.NewReplacer("{", "&#123;", "}", "&#125;").Replace(html.EscapeString(s))
}

// componentMarkup renders the forest as a default-exported React function
// component wrapped in a single generated-container div.
func componentMarkup(forest []models.Element, opts Options) string {
	var w cw
	w.line("import React from 'react';")
	w.line("")
	w.line("const GeneratedComponent = () => {")
	w.nest(func() {
		w.line("return (")
		w.nest(func() {
			w.line(`<div className="generated-container">`)
			w.nest(func() {
				for i := range forest {
					writeComponentElement(&w, &forest[i], opts)
				}
			})
			w.line("</div>")
		})
		w.line(");")
	})
	w.line("};")
	w.line("")
	w.line("export default GeneratedComponent;")
	return w.String()
}

func writeComponentElement(w *cw, el *models.Element, opts Options) {
	attrList := []string{`className="` + jsxText(className(el.Type)) + `"`}
	if opts.KeyByID {
		attrList = append(attrList, `data-element-id="`+jsxText(el.ID)+`"`)
	}
	attrList = append(attrList, "style={"+styleLiteral(Style(el))+"}")
	attrs := strings.Join(attrList, " ")

	switch el.Type {
	case models.ElementButton, models.ElementText:
		tag := "div"
		if el.Type == models.ElementButton {
			tag = "button"
		}
		text, _ := DefaultText(el)
		w.line("<%s %s>", tag, attrs)
		w.nest(func() { w.line("%s", jsxText(text)) })
		w.line("</%s>", tag)

	case models.ElementInput:
		w.line("<input")
		w.nest(func() {
			w.line(`type="text"`)
			w.line(`placeholder="%s"`, jsxText(el.Properties.Placeholder))
			writeLines(w, attrList)
		})
		w.line("/>")

	case models.ElementImage:
		w.line("<img")
		w.nest(func() {
			w.line(`src="%s"`, jsxText(el.Properties.Src))
			w.line(`alt="%s"`, jsxText(el.Properties.Alt))
			writeLines(w, attrList)
		})
		w.line("/>")

	case models.ElementContainer:
		if len(el.Children) == 0 {
			w.line("<div %s></div>", attrs)
			return
		}
		w.line("<div %s>", attrs)
		w.nest(func() {
			for i := range el.Children {
				writeComponentElement(w, &el.Children[i], opts)
			}
		})
		w.line("</div>")

	default:
		w.line("<div %s>", attrs)
		w.nest(func() { w.line("{/* %s */}", commentSafe(typeName(el.Type), "*/")) })
		w.line("</div>")
	}
}

// writeLines writes each attribute of a multi-line element on its own line.
func writeLines(w *cw, attrs []string) {
	for _, a := range attrs {
		w.line("%s", a)
	}
}

// commentSafe strips the comment terminator from text placed in a comment.
func commentSafe(s, terminator string) string {
	for strings.Contains(s, terminator) {
		s = strings.ReplaceAll(s, terminator, "")
	}
	return s
}
