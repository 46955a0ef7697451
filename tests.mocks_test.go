package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	EnsureIndexesFunc func(ctx context.Context) error
	AddFunc           func(ctx context.Context, book Book) (StoredBook, error)
	GetOneFunc        func(ctx context.Context, id string) (StoredBook, error)
	ReplaceFunc       func(ctx context.Context, id string, book Book) (StoredBook, error)
	DeleteFunc        func(ctx context.Context, id string) error
	GetAllFunc        func(ctx context.Context) ([]StoredBook, error)
	SearchFunc        func(ctx context.Context, filter SearchFilter) ([]StoredBook, error)
}

// EnsureIndexes mocks the indexes creation by the repository.
func (m *MockBookStorage) EnsureIndexes(ctx context.Context) error {
	return m.EnsureIndexesFunc(ctx)
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, book Book) (StoredBook, error) {
	return m.AddFunc(ctx, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id string) (StoredBook, error) {
	return m.GetOneFunc(ctx, id)
}

// Replace mocks the behavior of updating a book by the repository.
func (m *MockBookStorage) Replace(ctx context.Context, id string, book Book) (StoredBook, error) {
	return m.ReplaceFunc(ctx, id, book)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]StoredBook, error) {
	return m.GetAllFunc(ctx)
}

// Search mocks the behavior of filtering books by the repository.
func (m *MockBookStorage) Search(ctx context.Context, filter SearchFilter) ([]StoredBook, error) {
	return m.SearchFunc(ctx, filter)
}

type MockBookReporter struct {
	TotalStockFunc           func(ctx context.Context) (TotalStock, error)
	AuthorsWithMostStockFunc func(ctx context.Context, limit int) ([]StockGroup, error)
	TitlesWithLeastStockFunc func(ctx context.Context, limit int) ([]StockGroup, error)
}

func (m *MockBookReporter) TotalStock(ctx context.Context) (TotalStock, error) {
	return m.TotalStockFunc(ctx)
}

func (m *MockBookReporter) AuthorsWithMostStock(ctx context.Context, limit int) ([]StockGroup, error) {
	return m.AuthorsWithMostStockFunc(ctx, limit)
}

func (m *MockBookReporter) TitlesWithLeastStock(ctx context.Context, limit int) ([]StockGroup, error) {
	return m.TitlesWithLeastStockFunc(ctx, limit)
}

// pushed is a change event recorded by MockQueuer.
type pushed struct {
	qid  string
	book StoredBook
}

// MockQueuer records pushed events and replays them on Pop.
type MockQueuer struct {
	mu      sync.Mutex
	events  []pushed
	PushErr error
}

func (m *MockQueuer) Push(_ context.Context, qid string, book StoredBook) error {
	if m.PushErr != nil {
		return m.PushErr
	}
	m.mu.Lock()
	m.events = append(m.events, pushed{qid, book})
	m.mu.Unlock()
	return nil
}

// Pop returns the oldest recorded event or blocks until ctx is done.
func (m *MockQueuer) Pop(ctx context.Context, _ ...string) (string, StoredBook, error) {
	m.mu.Lock()
	if len(m.events) != 0 {
		e := m.events[0]
		m.events = m.events[1:]
		m.mu.Unlock()
		return e.qid, e.book, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return "", StoredBook{}, ctx.Err()
}

func (m *MockQueuer) Events() []pushed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pushed(nil), m.events...)
}

// MockBookMirror is an in-memory BookMirror.
type MockBookMirror struct {
	mu    sync.Mutex
	books map[string]StoredBook
	Err   error
}

func NewMockBookMirror() *MockBookMirror {
	return &MockBookMirror{books: make(map[string]StoredBook)}
}

func (m *MockBookMirror) Put(_ context.Context, book StoredBook) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = book
	return nil
}

func (m *MockBookMirror) Remove(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

func (m *MockBookMirror) GetOne(_ context.Context, id string) (StoredBook, error) {
	if m.Err != nil {
		return StoredBook{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return b, ErrBookNotFound
	}
	return b, nil
}

func (m *MockBookMirror) GetAll(_ context.Context) ([]StoredBook, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	books := []StoredBook{}
	for _, b := range m.books {
		books = append(books, b)
	}
	return books, nil
}

func (m *MockBookMirror) Close() error {
	return nil
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// newTestAPIHandler builds an APIHandler over mocked dependencies.
func newTestAPIHandler(storage BookStorage, reporter BookReporter, queue Queuer, mirror BookMirror) *APIHandler {
	bs := NewBookService(zap.NewNop(), nil, storage, reporter, queue)
	clock := NewMockClocker()
	return NewAPIHandler(zap.NewNop(), nil, &Statistics{started: clock.Now()}, clock, NewMockUIDHandler("abc", false), bs, mirror)
}
