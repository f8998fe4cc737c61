package models

// LibraryCategory groups library items in the component palette.
type LibraryCategory string

const (
	CategoryBasic  LibraryCategory = "basic"
	CategoryForms  LibraryCategory = "forms"
	CategoryLayout LibraryCategory = "layout"
	CategoryData   LibraryCategory = "data"
)

// Categories is the palette order.
var Categories = []LibraryCategory{CategoryBasic, CategoryForms, CategoryLayout, CategoryData}

// Template is the blueprint an element is instantiated from.
type Template struct {
	Type       ElementType `json:"type"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Properties Properties  `json:"properties"`
}

// LibraryItem is one draggable entry of the component palette.
type LibraryItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category LibraryCategory `json:"category"`
	Icon     string          `json:"icon"`
	Template Template        `json:"template"`
}
