package codegen

import (
	"html"

	"pagecraft/internal/models"
)

// plainMarkup renders the forest as a complete HTML document that links
// the generated stylesheet and script by their conventional file names.
func plainMarkup(forest []models.Element, opts Options) string {
	var w cw
	w.line("<!DOCTYPE html>")
	w.line(`<html lang="en">`)
	w.line("<head>")
	w.nest(func() {
		w.line(`<meta charset="UTF-8">`)
		w.line(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		w.line("<title>%s</title>", html.EscapeString(opts.Title))
		w.line(`<link rel="stylesheet" href="%s">`, models.FileStylesheet)
	})
	w.line("</head>")
	w.line("<body>")
	w.nest(func() {
		w.line(`<div class="generated-container">`)
		w.nest(func() {
			for i := range forest {
				writeMarkupElement(&w, &forest[i], opts)
			}
		})
		w.line("</div>")
		w.line(`<script src="%s"></script>`, models.FileScript)
	})
	w.line("</body>")
	w.line("</html>")
	return w.String()
}

func writeMarkupElement(w *cw, el *models.Element, opts Options) {
	esc := html.EscapeString
	attrs := `class="` + esc(className(el.Type)) + `"`
	if opts.KeyByID {
		attrs += ` data-element-id="` + esc(el.ID) + `"`
	}
	attrs += ` style="` + esc(InlineStyle(Style(el))) + `"`

	switch el.Type {
	case models.ElementButton:
		text, _ := DefaultText(el)
		w.line("<button %s>%s</button>", attrs, esc(text))

	case models.ElementText:
		text, _ := DefaultText(el)
		w.line("<div %s>%s</div>", attrs, esc(text))

	case models.ElementInput:
		w.line(`<input type="text" placeholder="%s" %s>`, esc(el.Properties.Placeholder), attrs)

	case models.ElementImage:
		w.line(`<img src="%s" alt="%s" %s>`, esc(el.Properties.Src), esc(el.Properties.Alt), attrs)

	case models.ElementContainer:
		if len(el.Children) == 0 {
			w.line("<div %s></div>", attrs)
			return
		}
		w.line("<div %s>", attrs)
		w.nest(func() {
			for i := range el.Children {
				writeMarkupElement(w, &el.Children[i], opts)
			}
		})
		w.line("</div>")

	default:
		w.line("<div %s><!-- %s --></div>", attrs, esc(commentSafe(typeName(el.Type), "--")))
	}
}
