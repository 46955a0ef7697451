package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltMirror returns a new mirror in a temporary path.
func newTestBoltMirror(t *testing.T) *boltBookMirror {
	t.Helper()
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	require.NoError(t, err)
	f.Close()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   f.Name(),
			Timeout:    5 * time.Second,
			BucketName: "test.books",
		},
	}

	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt mirror")

	bm := NewBoltBookMirror(zap.NewNop(), &testConfig.BoltDB, client).(*boltBookMirror)
	t.Cleanup(func() {
		_ = bm.Close()
		os.Remove(testConfig.BoltDB.FilePath)
	})
	return bm
}

// Ensure bolt mirror can insert then overwrite a book.
func TestBoltMirror_PutBook(t *testing.T) {
	bm := newTestBoltMirror(t)
	ctx := context.TODO()
	b := StoredBook{ID: "65a1f0c2e4b0a1b2c3d4e5f6", Book: Book{Title: "Bolt test book title", Stock: 2}}
	require.NoError(t, bm.Put(ctx, b))

	book, err := bm.GetOne(ctx, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, b, book)

	b.Stock = 7
	require.NoError(t, bm.Put(ctx, b))
	book, err = bm.GetOne(ctx, b.ID)
	assert.NoError(t, err)
	assert.Equal(t, 7, book.Stock)
}

// Ensure bolt mirror reports missing books.
func TestBoltMirror_GetMissingBook(t *testing.T) {
	bm := newTestBoltMirror(t)
	_, err := bm.GetOne(context.TODO(), "unknown")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

// Ensure bolt mirror can remove books and list the remaining ones.
func TestBoltMirror_RemoveAndGetAll(t *testing.T) {
	bm := newTestBoltMirror(t)
	ctx := context.TODO()

	books, err := bm.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Len(t, books, 0)

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, bm.Put(ctx, StoredBook{ID: id}))
	}
	require.NoError(t, bm.Remove(ctx, "2"))
	require.NoError(t, bm.Remove(ctx, "missing"))

	books, err = bm.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []StoredBook{{ID: "1"}, {ID: "3"}}, books)
}

// Ensure the mirror releases its database file once closed.
func TestBoltMirror_Close(t *testing.T) {
	var mirror BookMirror = newTestBoltMirror(t)
	require.NoError(t, mirror.Put(context.TODO(), StoredBook{ID: "1"}))
	require.NoError(t, mirror.Close())

	_, err := mirror.GetAll(context.TODO())
	assert.Error(t, err)
	assert.Error(t, mirror.Put(context.TODO(), StoredBook{ID: "2"}))
}
