package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects the public book and reports endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.GET("/stock", m.public(api.GetTotalStock))
	router.GET("/authorswithmostbooks", m.public(api.GetAuthorsWithMostBooks))
	router.GET("/bestsellingbooks", m.public(api.GetBestSellingBooks))

	router.POST("/books", m.public(api.CreateBook))
	router.GET("/books", m.public(api.GetAllBooks))
	router.GET("/books/:id", m.public(api.GetOneBook))
	router.PUT("/books/:id", m.public(api.UpdateBook))
	router.DELETE("/books/:id", m.public(api.DeleteOneBook))
	router.GET("/search", m.public(api.SearchBooks))
	return router
}
