package render

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/page.tmpl"))

// CityOption is one entry of the city dropdown
type CityOption struct {
	Index    int
	Name     string
	Selected bool
}

// PageData is everything the forecast page shows
type PageData struct {
	Title          string
	Cities         []CityOption
	Status         string
	Loading        bool
	RefreshSeconds int
	Cards          []Card
}

// Page writes the forecast page
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "7-Day City Forecast"
	}
	if data.RefreshSeconds <= 0 {
		data.RefreshSeconds = 2
	}
	return pageTemplate.ExecuteTemplate(w, "page.tmpl", data)
}
