// Package scalar serves the Scalar API reference UI over the service's
// OpenAPI document.
package scalar

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/jmaxwell/sellforge/pkg/module"
	"github.com/jmaxwell/sellforge/pkg/web"
)

//go:embed static
var staticFS embed.FS

// NewModule creates a module that serves the Scalar API reference UI at
// basePath, reading the spec from specURL.
func NewModule(basePath, specURL string) *module.Module {
	router := buildRouter(basePath, specURL)
	return module.New(basePath, router)
}

func buildRouter(basePath, specURL string) http.Handler {
	router := web.NewRouter()

	tmpl := template.Must(template.ParseFS(staticFS, "static/index.html"))
	router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		tmpl.Execute(w, map[string]string{
			"BasePath": basePath,
			"SpecURL":  specURL,
		})
	})

	router.SetFallback(web.DistServer(staticFS, "static", ""))

	return router
}
