package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// GetTotalStock godoc
//
//	@Summary	Sum of the stock of all books
//	@Produce	json
//	@Success	200	{object}	TotalStock
//	@Router		/stock [get]
func (api *APIHandler) GetTotalStock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	total, err := api.bookService.TotalStock(r.Context())
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to compute total stock", EmptyData, zap.Error(err))
		return
	}
	api.respond(w, r, http.StatusOK, total)
}

// GetAuthorsWithMostBooks godoc
//
//	@Summary	Top 5 authors by summed stock, descending
//	@Produce	json
//	@Success	200	{array}	StockGroup
//	@Router		/authorswithmostbooks [get]
func (api *APIHandler) GetAuthorsWithMostBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	groups, err := api.bookService.AuthorsWithMostStock(r.Context())
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to compute authors stock", EmptyData, zap.Error(err))
		return
	}
	api.respond(w, r, http.StatusOK, groups)
}

// GetBestSellingBooks godoc
//
// Lower remaining stock is read as higher sales.
//
//	@Summary	Bottom 5 titles by summed stock, ascending
//	@Produce	json
//	@Success	200	{array}	StockGroup
//	@Router		/bestsellingbooks [get]
func (api *APIHandler) GetBestSellingBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	groups, err := api.bookService.TitlesWithLeastStock(r.Context())
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to compute best selling books", EmptyData, zap.Error(err))
		return
	}
	api.respond(w, r, http.StatusOK, groups)
}
