package models

// Artifacts holds the four frontend dialects produced for an element forest.
type Artifacts struct {
	ComponentMarkup string `json:"componentMarkup"`
	PlainMarkup     string `json:"plainMarkup"`
	Stylesheet      string `json:"stylesheet"`
	Script          string `json:"script"`
}

// IsEmpty reports whether nothing has been generated yet.
func (a Artifacts) IsEmpty() bool {
	return a.ComponentMarkup == "" && a.PlainMarkup == "" && a.Stylesheet == "" && a.Script == ""
}

// Conventional download names for each frontend artifact.
const (
	FileComponent  = "component.tsx"
	FileMarkup     = "index.html"
	FileStylesheet = "styles.css"
	FileScript     = "script.js"
)

// Files maps conventional file names to artifact contents.
func (a Artifacts) Files() map[string]string {
	return map[string]string{
		FileComponent:  a.ComponentMarkup,
		FileMarkup:     a.PlainMarkup,
		FileStylesheet: a.Stylesheet,
		FileScript:     a.Script,
	}
}

// Backend holds the backend scaffold text produced from a table list.
type Backend struct {
	APIRoutes       string `json:"apiRoutes"`
	DatabaseSchema  string `json:"databaseSchema"`
	AuthFlow        string `json:"authFlow"`
	Manifest        string `json:"manifest"`
	ServerBootstrap string `json:"serverBootstrap"`
}

// Files maps conventional scaffold file names to their contents.
func (b Backend) Files() map[string]string {
	return map[string]string{
		"routes.js":    b.APIRoutes,
		"models.js":    b.DatabaseSchema,
		"auth.js":      b.AuthFlow,
		"package.json": b.Manifest,
		"server.js":    b.ServerBootstrap,
	}
}
