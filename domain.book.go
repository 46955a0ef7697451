package main

import "context"

// Book represents the client-provided fields of a book record.
type Book struct {
	Title       string  `json:"title" bson:"title"`
	Author      string  `json:"author" bson:"author"`
	Description string  `json:"description" bson:"description"`
	Price       float64 `json:"price" bson:"price"`
	Stock       int     `json:"stock" bson:"stock"`
}

// StoredBook is a book as persisted, with its store-assigned identifier.
type StoredBook struct {
	ID string `json:"id"`
	Book
}

// TotalStock is the result of summing the stock of all books.
type TotalStock struct {
	TotalBooks int64 `json:"total_books" bson:"total_books"`
}

// StockGroup is one entry of a grouped stock report. Key holds
// the author or the title depending on the report.
type StockGroup struct {
	Key   string `json:"_id" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// SearchFilter holds the optional criteria of a books search.
// Nil or empty fields do not constrain the result.
type SearchFilter struct {
	Title    string
	Author   string
	MinPrice *float64
	MaxPrice *float64
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	EnsureIndexes(ctx context.Context) error
	Add(ctx context.Context, book Book) (StoredBook, error)
	GetOne(ctx context.Context, id string) (StoredBook, error)
	Replace(ctx context.Context, id string, book Book) (StoredBook, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]StoredBook, error)
	Search(ctx context.Context, filter SearchFilter) ([]StoredBook, error)
}

// BookReporter defines the aggregate reports over the whole collection.
type BookReporter interface {
	TotalStock(ctx context.Context) (TotalStock, error)
	AuthorsWithMostStock(ctx context.Context, limit int) ([]StockGroup, error)
	TitlesWithLeastStock(ctx context.Context, limit int) ([]StockGroup, error)
}

// BookMirror defines the operations of the local copy of the books.
type BookMirror interface {
	Put(ctx context.Context, book StoredBook) error
	Remove(ctx context.Context, id string) error
	GetOne(ctx context.Context, id string) (StoredBook, error)
	GetAll(ctx context.Context) ([]StoredBook, error)
	Close() error
}
