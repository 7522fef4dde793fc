// Package swaggerkit serves Swagger UI over an OpenAPI document assembled from the modules' Docs
package swaggerkit

import (
	"net/http"

	phttp "readnfc/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocsPath is where the UI lives; the document is DocsPath + "/doc.json"
const DocsPath = "/api/docs"

// Mount serves the UI and the document built from ops, whose paths are relative to base
// nothing is mounted when enabled is false
func Mount(r phttp.Router, enabled bool, base string, ops ...Operation) {
	if !enabled {
		return
	}
	r.Get(DocsPath, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, DocsPath+"/", http.StatusPermanentRedirect)
	})
	r.Get(DocsPath+"/doc.json", serveDocJSON(Spec(base, ops...)))
	r.Handle(DocsPath+"/*", httpSwagger.Handler(httpSwagger.URL(DocsPath+"/doc.json")))
}
