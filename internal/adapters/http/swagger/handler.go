// Package swagger publishes the OpenAPI description of the reports API.
package swagger

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/clanstats/internal/adapters/http/api"
)

// OpenAPI is the embedded description of the reports API.
//
//go:embed openapi.yaml
var OpenAPI []byte

const (
	specPath        = "/openapi.yaml"
	docsPath        = "/api-docs"
	yamlContentType = "application/yaml; charset=utf-8"
	htmlContentType = "text/html; charset=utf-8"
	redocBundle     = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"
)

// specETag changes only when the embedded document does.
var specETag = fmt.Sprintf(`"%016x"`, xxhash.Sum64(OpenAPI))

var docsPage = fmt.Sprintf(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>clanstats reports API</title>
  </head>
  <body style="margin:0">
    <redoc spec-url=%q></redoc>
    <script src=%q></script>
  </body>
</html>
`, specPath, redocBundle)

// Register mounts GET /openapi.yaml and GET /api-docs on mux. Both routes
// are counted by the HTTP metrics under their route pattern.
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("swagger: nil mux")
	}
	mux.HandleFunc("GET "+specPath, api.MetricsMiddleware(serveSpec, ""))
	mux.HandleFunc("GET "+docsPath, api.MetricsMiddleware(serveDocs, ""))
}

// ETag returns the entity tag sent with the OpenAPI document.
func ETag() string { return specETag }

func serveSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", specETag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == specETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", yamlContentType)
	_, _ = w.Write(OpenAPI)
}

func serveDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", htmlContentType)
	_, _ = w.Write([]byte(docsPage))
}
