package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const BookDeletedMessage = "Book successfully deleted"

// isNotFound tells if err means no book matches the requested id.
func isNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrInvalidBookID)
}

// fail logs the failure reason and sends the error response.
func (api *APIHandler) fail(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, fields ...zap.Field) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	logger := api.GetLoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(message, fields...)
	} else {
		logger.Warn(message, fields...)
	}
	errResp := NewAPIError(requestID, status, message, data)
	if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}

// respond sends a success response.
func (api *APIHandler) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := WriteResponse(r.Context(), w, status, data); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send response", zap.Error(err))
	}
}

// validationDetails extracts the messages of a validation failure.
func validationDetails(err error) interface{} {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Details
	}
	return err.Error()
}

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.respond(w, r, http.StatusOK, StatusResponse{
		RequestID: GetValueFromContext(r.Context(), RequestIDContextKey),
		Status:    fmt.Sprintf("up & running since %.0f mins", Uptime(api.clock, api.stats.started).Minutes()),
		Message:   "Hello. Books inventory api is available. Enjoy :)",
	})
}

// CreateBook godoc
//
//	@Summary	Create a book
//	@Accept		json
//	@Produce	json
//	@Param		book	body		Book	true	"book fields"
//	@Success	201		{object}	StoredBook
//	@Failure	422		{object}	APIError
//	@Router		/books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	book, err := api.validator.DecodeAndValidateBook(r)
	if err != nil {
		api.fail(w, r, http.StatusUnprocessableEntity, "invalid book payload", validationDetails(err), zap.Error(err))
		return
	}

	stored, err := api.bookService.Add(r.Context(), book)
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to create the book", EmptyData, zap.Error(err))
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create book", zap.String("book.id", stored.ID))
	api.respond(w, r, http.StatusCreated, stored)
}

// GetAllBooks godoc
//
//	@Summary	List all books
//	@Produce	json
//	@Success	200	{array}	StoredBook
//	@Router		/books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to get all books", EmptyData, zap.Error(err))
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to get all books", zap.Int("books.total", len(books)))
	api.respond(w, r, http.StatusOK, books)
}

// GetOneBook godoc
//
//	@Summary	Get a book by id
//	@Produce	json
//	@Param		id	path		string	true	"book id"
//	@Success	200	{object}	StoredBook
//	@Failure	404	{object}	APIError
//	@Router		/books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	book, err := api.bookService.GetOne(r.Context(), id)
	if isNotFound(err) {
		api.fail(w, r, http.StatusNotFound, "Book not found", EmptyData, zap.String("book.id", id), zap.Error(err))
		return
	}
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to get the book", EmptyData, zap.String("book.id", id), zap.Error(err))
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to get book", zap.String("book.id", id))
	api.respond(w, r, http.StatusOK, book)
}

// UpdateBook godoc
//
//	@Summary	Replace all fields of a book
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"book id"
//	@Param		book	body		Book	true	"book fields"
//	@Success	200		{object}	StoredBook
//	@Failure	404		{object}	APIError
//	@Failure	422		{object}	APIError
//	@Router		/books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	book, err := api.validator.DecodeAndValidateBook(r)
	if err != nil {
		api.fail(w, r, http.StatusUnprocessableEntity, "invalid book payload", validationDetails(err), zap.String("book.id", id), zap.Error(err))
		return
	}

	stored, err := api.bookService.Replace(r.Context(), id, book)
	if isNotFound(err) {
		api.fail(w, r, http.StatusNotFound, "Book not found", EmptyData, zap.String("book.id", id), zap.Error(err))
		return
	}
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to update the book", EmptyData, zap.String("book.id", id), zap.Error(err))
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update book", zap.String("book.id", id))
	api.respond(w, r, http.StatusOK, stored)
}

// DeleteOneBook godoc
//
//	@Summary	Delete a book
//	@Produce	json
//	@Param		id	path		string	true	"book id"
//	@Success	200	{object}	DeleteResponse
//	@Failure	404	{object}	APIError
//	@Router		/books/{id} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	err := api.bookService.Delete(r.Context(), id)
	if isNotFound(err) {
		api.fail(w, r, http.StatusNotFound, "Book not found", EmptyData, zap.String("book.id", id), zap.Error(err))
		return
	}
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to delete the book", EmptyData, zap.String("book.id", id), zap.Error(err))
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete book", zap.String("book.id", id))
	api.respond(w, r, http.StatusOK, DeleteResponse{Message: BookDeletedMessage})
}

// SearchBooks godoc
//
//	@Summary	Search books by title, author and price range
//	@Produce	json
//	@Param		title		query	string	false	"case-insensitive title substring"
//	@Param		author		query	string	false	"case-insensitive author substring"
//	@Param		min_price	query	number	false	"inclusive lower price bound"
//	@Param		max_price	query	number	false	"inclusive upper price bound"
//	@Success	200			{array}	StoredBook
//	@Failure	422			{object}	APIError
//	@Router		/search [get]
func (api *APIHandler) SearchBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := ParseSearchFilter(r.URL.Query())
	if err != nil {
		api.fail(w, r, http.StatusUnprocessableEntity, "invalid search parameters", validationDetails(err), zap.Error(err))
		return
	}

	books, err := api.bookService.Search(r.Context(), filter)
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "failed to search books", EmptyData, zap.Error(err))
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to search books", zap.Int("books.total", len(books)))
	api.respond(w, r, http.StatusOK, books)
}
