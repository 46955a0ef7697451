package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var _ BookMirror = (*boltBookMirror)(nil)

type boltBookMirror struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltBookMirror provides an instance of bolt-based copy of the books.
func NewBoltBookMirror(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) BookMirror {
	return &boltBookMirror{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close releases the bolt database file of the mirror.
func (bm *boltBookMirror) Close() error {
	return bm.client.Close()
}

// Put inserts or overwrites the copy of a book.
func (bm *boltBookMirror) Put(_ context.Context, book StoredBook) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Put([]byte(book.ID), bookBytes)
	})
}

// GetOne retrieves the copy of a book based on its ID.
func (bm *boltBookMirror) GetOne(_ context.Context, id string) (StoredBook, error) {
	var book StoredBook
	tx, err := bm.client.Begin(false)
	if err != nil {
		return book, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(bm.config.BucketName)).Get([]byte(id))
	if result == nil {
		return book, ErrBookNotFound
	}
	err = json.Unmarshal(result, &book)
	return book, err
}

// Remove deletes the copy of a book. Removing a missing key is not an error.
func (bm *boltBookMirror) Remove(_ context.Context, id string) error {
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Delete([]byte(id))
	})
}

// GetAll retrieves all mirrored books ordered by id.
func (bm *boltBookMirror) GetAll(_ context.Context) ([]StoredBook, error) {
	tx, err := bm.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bm.config.BucketName)).Cursor()

	books := []StoredBook{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var book StoredBook
		if err = json.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}
