// Package swaggerkit serves the OpenAPI document and the Swagger UI
package swaggerkit

import (
	"net/http"

	phttp "policyxray/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocsPath is the UI root. The document lives at DocsPath/doc.json
const DocsPath = "/api/docs"

// Mount wires the UI and the document onto r. Disabled is a no-op
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	doc := DocsPath + "/doc.json"
	r.Get(DocsPath, http.RedirectHandler(DocsPath+"/", http.StatusPermanentRedirect).ServeHTTP)
	r.Get(doc, serveDocJSON())
	r.Handle(DocsPath+"/*", httpSwagger.Handler(
		httpSwagger.URL(doc),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))
}

// Categories documents the loaded category names as an enum on CategoryName
func Categories(names []string) SpecMutator {
	enum := make([]any, 0, len(names)+1)
	for _, n := range names {
		enum = append(enum, n)
	}
	enum = append(enum, "overall")
	return func(spec map[string]any) {
		schemas(spec)["CategoryName"] = map[string]any{
			"type":        "string",
			"description": "keys of the analyze response",
			"enum":        enum,
		}
	}
}
