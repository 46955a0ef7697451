package main

import (
	"context"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Add(ctx context.Context, book Book) (StoredBook, error)
	GetOne(ctx context.Context, id string) (StoredBook, error)
	Replace(ctx context.Context, id string, book Book) (StoredBook, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]StoredBook, error)
	Search(ctx context.Context, filter SearchFilter) ([]StoredBook, error)
	TotalStock(ctx context.Context) (TotalStock, error)
	AuthorsWithMostStock(ctx context.Context) ([]StockGroup, error)
	TitlesWithLeastStock(ctx context.Context) ([]StockGroup, error)
}

type BookService struct {
	logger   *zap.Logger
	config   *Config
	storage  BookStorage
	reporter BookReporter
	queue    Queuer
}

// NewBookService provides the book service. The queue is optional: when nil
// no change event is published.
func NewBookService(logger *zap.Logger, config *Config, storage BookStorage, reporter BookReporter, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:   logger,
		config:   config,
		storage:  storage,
		reporter: reporter,
		queue:    queue,
	}
}

// publish pushes a change event. A failure never fails the caller.
func (bs *BookService) publish(ctx context.Context, qid string, book StoredBook) {
	if bs.queue == nil {
		return
	}
	if err := bs.queue.Push(ctx, qid, book); err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", qid), zap.String("book.id", book.ID), zap.Error(err))
	}
}

func (bs *BookService) Add(ctx context.Context, book Book) (StoredBook, error) {
	stored, err := bs.storage.Add(ctx, book)
	if err != nil {
		return stored, err
	}
	bs.publish(ctx, CreateQueue, stored)
	return stored, nil
}

func (bs *BookService) GetOne(ctx context.Context, id string) (StoredBook, error) {
	return bs.storage.GetOne(ctx, id)
}

func (bs *BookService) Replace(ctx context.Context, id string, book Book) (StoredBook, error) {
	stored, err := bs.storage.Replace(ctx, id, book)
	if err != nil {
		return stored, err
	}
	bs.publish(ctx, UpdateQueue, stored)
	return stored, nil
}

func (bs *BookService) Delete(ctx context.Context, id string) error {
	if err := bs.storage.Delete(ctx, id); err != nil {
		return err
	}
	bs.publish(ctx, DeleteQueue, StoredBook{ID: id})
	return nil
}

func (bs *BookService) GetAll(ctx context.Context) ([]StoredBook, error) {
	return bs.storage.GetAll(ctx)
}

func (bs *BookService) Search(ctx context.Context, filter SearchFilter) ([]StoredBook, error) {
	return bs.storage.Search(ctx, filter)
}

func (bs *BookService) TotalStock(ctx context.Context) (TotalStock, error) {
	return bs.reporter.TotalStock(ctx)
}

func (bs *BookService) AuthorsWithMostStock(ctx context.Context) ([]StockGroup, error) {
	return bs.reporter.AuthorsWithMostStock(ctx, ReportsLimit)
}

func (bs *BookService) TitlesWithLeastStock(ctx context.Context) ([]StockGroup, error) {
	return bs.reporter.TitlesWithLeastStock(ctx, ReportsLimit)
}
