package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports every rule broken by a request input.
type ValidationError struct {
	Details []string
}

func (v *ValidationError) Error() string {
	return "validation failed: " + strings.Join(v.Details, "; ")
}

func newValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

type missingFieldError string

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// BookRequest is the create/update payload. Pointers tell a
// missing field apart from its zero value.
type BookRequest struct {
	Title       *string  `json:"title" validate:"required"`
	Author      *string  `json:"author" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int     `json:"stock" validate:"required"`
}

// ToBook converts an already validated request into a Book.
func (br *BookRequest) ToBook() Book {
	return Book{
		Title:       *br.Title,
		Author:      *br.Author,
		Description: *br.Description,
		Price:       *br.Price,
		Stock:       *br.Stock,
	}
}

// BookValidator checks request payloads against their `validate` tags.
type BookValidator struct {
	validate *validator.Validate
}

// NewBookValidator provides a validator reporting fields by their json names.
func NewBookValidator() *BookValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &BookValidator{validate: v}
}

// DecodeAndValidateBook reads the request body and returns a well-typed Book
// or a *ValidationError describing why the payload was rejected.
func (bv *BookValidator) DecodeAndValidateBook(r *http.Request) (Book, error) {
	var req BookRequest
	if r.Body == nil || r.Body == http.NoBody {
		return Book{}, newValidationError("request body is required")
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return Book{}, decodingError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Book{}, newValidationError("request body must contain a single JSON object")
	}

	if err := bv.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Book{}, err
		}
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldErrorMessage(fe))
		}
		return Book{}, newValidationError(details...)
	}

	return req.ToBook(), nil
}

// decodingError converts a json decoding failure into a validation error.
func decodingError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field == "":
		return newValidationError("request body must be a JSON object")
	case errors.As(err, &typeErr):
		return newValidationError(fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()))
	case errors.As(err, &syntaxErr):
		return newValidationError(fmt.Sprintf("malformed json at offset %d", syntaxErr.Offset))
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return newValidationError("request body is empty or truncated")
	default:
		return newValidationError("malformed request body")
	}
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return missingFieldError(fe.Field()).Error()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag())
	}
}

// ParseSearchFilter builds a SearchFilter from the query parameters.
// Every parameter is optional. Price bounds must be valid numbers.
func ParseSearchFilter(q url.Values) (SearchFilter, error) {
	filter := SearchFilter{
		Title:  q.Get("title"),
		Author: q.Get("author"),
	}

	var details []string
	parseBound := func(name string) *float64 {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			details = append(details, name+" must be a valid number")
			return nil
		}
		return &v
	}

	filter.MinPrice = parseBound("min_price")
	filter.MaxPrice = parseBound("max_price")

	if len(details) != 0 {
		return SearchFilter{}, newValidationError(details...)
	}
	return filter, nil
}
