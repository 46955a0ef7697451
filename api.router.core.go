package main

import (
	"net/http"

	_ "github.com/jeamon/book-inventory/docs"
	"github.com/julienschmidt/httprouter"
	httpswagger "github.com/swaggo/http-swagger/v2"
)

// SwaggerIndexPath is where the api documentation browser lives.
const SwaggerIndexPath = "/swagger/index.html"

// SetupRoutes registers the book routes, the api documentation and,
// when enabled, the ops routes. Unknown routes get a json 404 answer.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.NotFound = api.NotFound()
	api.SetupBookRoutes(router, m)
	if api.config.OpsEndpointsEnable {
		api.SetupOpsRoutes(router, m)
	}
	router.GET("/swagger/*any", m.public(api.SwaggerDocs()))
	return router
}

// SwaggerDocs serves the generated openapi document and its browser with
// all operations collapsed. The bare folder redirects to the browser.
func (api *APIHandler) SwaggerDocs() httprouter.Handle {
	docs := httpswagger.Handler(httpswagger.DocExpansion("none"))
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("any") == "/" {
			http.Redirect(w, r, SwaggerIndexPath, http.StatusMovedPermanently)
			return
		}
		docs.ServeHTTP(w, r)
	}
}
