package server

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed web/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// registerDashboardPage serves the single-page dashboard at the root. The
// page reads everything through the JSON API under basePath.
func registerDashboardPage(r chi.Router, basePath string) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = indexTemplate.Execute(w, struct{ BasePath string }{basePath})
	})
}
