package codegen

import (
	"strings"

	"pagecraft/internal/models"
)

// containerRule styles the wrapper every dialect places around the forest.
const containerRule = `.generated-container {
  position: relative;
  min-height: 100vh;
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'Roboto', sans-serif;
}
`

// rule is one stylesheet block. Declarations keep the position of their
// first appearance; a later value for the same property overwrites it.
type rule struct {
	selector string
	decls    []Declaration
	pos      map[string]int
}

func (r *rule) set(d Declaration) {
	if i, ok := r.pos[d.Property]; ok {
		r.decls[i].Value = d.Value
		return
	}
	r.pos[d.Property] = len(r.decls)
	r.decls = append(r.decls, d)
}

// stylesheet walks the forest depth-first and emits the shared container
// rule followed by one rule per selector. In the default mode elements of
// the same type share the .element-<type> selector, so their declarations
// merge and the last element walked wins. With KeyByID every element gets
// its own attribute selector.
func stylesheet(forest []models.Element, opts Options) string {
	var rules []*rule
	bySelector := make(map[string]*rule)

	models.Walk(forest, func(el *models.Element, _ int) bool {
		sel := "." + className(el.Type)
		if opts.KeyByID {
			sel = `[data-element-id="` + cssString(el.ID) + `"]`
		}
		r, ok := bySelector[sel]
		if !ok {
			r = &rule{selector: sel, pos: make(map[string]int)}
			bySelector[sel] = r
			rules = append(rules, r)
		}
		for _, d := range Style(el) {
			r.set(d)
		}
		return true
	})

	var b strings.Builder
	b.WriteString("/* Generated CSS */\n")
	b.WriteString(containerRule)
	for _, r := range rules {
		b.WriteString("\n")
		b.WriteString(r.selector)
		b.WriteString(" {\n")
		for _, d := range r.decls {
			b.WriteString("  " + d.Property + ": " + d.Value + ";\n")
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// cssString escapes a value placed inside a double-quoted CSS string.
func cssString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `).Replace(s)
}

// CSSValue keeps a user-supplied value from closing its declaration, its
// block or an enclosing <style> element.
func CSSValue(s string) string {
	return strings.NewReplacer(";", "", "{", "", "}", "", "<", "", "\n", " ").Replace(s)
}
