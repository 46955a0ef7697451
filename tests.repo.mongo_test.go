package main

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func startMongoDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("mongo", "6.0", nil)
	if err != nil {
		t.Fatalf("Failed to start mongo: %+v", err)
	}

	// build address the container is listening on
	uri := fmt.Sprintf("mongodb://%s", net.JoinHostPort("localhost", resource.GetPort("27017/tcp")))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, e := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if e != nil {
			return e
		}
		defer client.Disconnect(context.Background())
		return client.Ping(ctx, nil)
	})

	if err != nil {
		t.Fatalf("Failed to ping mongo: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return uri, destroyFunc
}

// newTestMongoStorage connects to the container and provides a storage
// over a fresh collection.
func newTestMongoStorage(t *testing.T, uri, collection string) *MongoBookStorage {
	t.Helper()
	config := &Config{Mongo: MongoConfig{URI: uri, OpsTimeout: 5 * time.Second}}
	client, err := GetMongoClient(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	ms := NewMongoBookStorage(zap.NewNop(), client.Database("bookstore_test").Collection(collection))
	require.NoError(t, ms.EnsureIndexes(context.Background()))
	return ms
}

//nolint:funlen
func TestMongoStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping docker based test in short mode")
	}
	uri, destroyFunc := startMongoDockerContainer(t)
	defer destroyFunc()
	ctx := context.Background()

	t.Run("Add Then Get Book", func(t *testing.T) {
		ms := newTestMongoStorage(t, uri, "add_get")
		book := Book{Title: "A", Author: "X", Description: "d", Price: 12.5, Stock: 3}
		stored, err := ms.Add(ctx, book)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.Equal(t, book, stored.Book)

		got, err := ms.GetOne(ctx, stored.ID)
		assert.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("Get Missing Book", func(t *testing.T) {
		ms := newTestMongoStorage(t, uri, "get_missing")
		_, err := ms.GetOne(ctx, "65a1f0c2e4b0a1b2c3d4e5f6")
		assert.ErrorIs(t, err, ErrBookNotFound)
		_, err = ms.GetOne(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidBookID)
	})

	t.Run("Replace Book", func(t *testing.T) {
		ms := newTestMongoStorage(t, uri, "replace")
		stored, err := ms.Add(ctx, Book{Title: "A", Author: "X", Price: 1, Stock: 1})
		require.NoError(t, err)

		updated := Book{Title: "B", Author: "Y", Description: "new", Price: 2, Stock: 0}
		got, err := ms.Replace(ctx, stored.ID, updated)
		require.NoError(t, err)
		assert.Equal(t, StoredBook{ID: stored.ID, Book: updated}, got)

		got, err = ms.GetOne(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got.Book)

		_, err = ms.Replace(ctx, "65a1f0c2e4b0a1b2c3d4e5f6", Book{Title: "ghost", Stock: 99})
		assert.ErrorIs(t, err, ErrBookNotFound)
		_, err = ms.Replace(ctx, "not-an-id", Book{Title: "ghost", Stock: 99})
		assert.ErrorIs(t, err, ErrInvalidBookID)

		// failed replacements neither insert nor alter any book.
		books, err := ms.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []StoredBook{{ID: stored.ID, Book: updated}}, books)
	})

	t.Run("Delete Book", func(t *testing.T) {
		ms := newTestMongoStorage(t, uri, "delete")
		stored, err := ms.Add(ctx, Book{Title: "A"})
		require.NoError(t, err)

		require.NoError(t, ms.Delete(ctx, stored.ID))
		_, err = ms.GetOne(ctx, stored.ID)
		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.ErrorIs(t, ms.Delete(ctx, stored.ID), ErrBookNotFound)
	})

	t.Run("Get All Books", func(t *testing.T) {
		ms := newTestMongoStorage(t, uri, "get_all")
		books, err := ms.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Len(t, books, 0)

		for _, title := range []string{"A", "B", "C"} {
			_, err = ms.Add(ctx, Book{Title: title})
			require.NoError(t, err)
		}
		books, err = ms.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 3)
	})

	t.Run("Search Books", func(t *testing.T) {
		ms := newTestMongoStorage(t, uri, "search")
		for _, b := range []Book{
			{Title: "Go in Action", Author: "Kennedy", Price: 15},
			{Title: "The Go Programming Language", Author: "Kernighan", Price: 25},
			{Title: "Rust in Action", Author: "McNamara", Price: 10},
			{Title: "Free Book", Author: "Nobody", Price: 0},
		} {
			_, err := ms.Add(ctx, b)
			require.NoError(t, err)
		}

		books, err := ms.Search(ctx, SearchFilter{Title: "GO"})
		require.NoError(t, err)
		assert.Len(t, books, 2)

		books, err = ms.Search(ctx, SearchFilter{MinPrice: float(10), MaxPrice: float(20)})
		require.NoError(t, err)
		assert.Len(t, books, 2)

		books, err = ms.Search(ctx, SearchFilter{MaxPrice: float(0)})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Free Book", books[0].Title)

		books, err = ms.Search(ctx, SearchFilter{Title: "action", Author: "ken"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Go in Action", books[0].Title)

		books, err = ms.Search(ctx, SearchFilter{Title: ".*"})
		require.NoError(t, err)
		assert.Len(t, books, 0)
	})

	t.Run("Stock Reports", func(t *testing.T) {
		ms := newTestMongoStorage(t, uri, "reports")
		total, err := ms.TotalStock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total.TotalBooks)

		groups, err := ms.AuthorsWithMostStock(ctx, ReportsLimit)
		require.NoError(t, err)
		assert.NotNil(t, groups)
		assert.Len(t, groups, 0)

		for _, b := range []Book{
			{Title: "A", Author: "X", Stock: 5},
			{Title: "B", Author: "X", Stock: 3},
			{Title: "C", Author: "Y", Stock: 10},
		} {
			_, err = ms.Add(ctx, b)
			require.NoError(t, err)
		}

		total, err = ms.TotalStock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(18), total.TotalBooks)

		groups, err = ms.AuthorsWithMostStock(ctx, ReportsLimit)
		require.NoError(t, err)
		assert.Equal(t, []StockGroup{{Key: "Y", Count: 10}, {Key: "X", Count: 8}}, groups)

		groups, err = ms.TitlesWithLeastStock(ctx, ReportsLimit)
		require.NoError(t, err)
		assert.Equal(t, []StockGroup{{Key: "B", Count: 3}, {Key: "A", Count: 5}, {Key: "C", Count: 10}}, groups)
	})
}
