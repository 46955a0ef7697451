package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefined Queue IDs, one per kind of change.
const (
	CreateQueue = "book.created"
	UpdateQueue = "book.updated"
	DeleteQueue = "book.deleted"
)

// PopTimeout bounds each blocking pop so consumers can observe their context.
const PopTimeout = time.Second

// ErrNoEvent is returned by Pop when no event arrived within PopTimeout.
var ErrNoEvent = errors.New("queue: no event")

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// Queuer describes a queue of book changes.
type Queuer interface {
	Push(ctx context.Context, qid string, book StoredBook) error
	Pop(ctx context.Context, qids ...string) (string, StoredBook, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// GetRedisClient provides a ready to use redis client. The client is closed
// and nil is returned when the server does not answer the ping.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Push enqueues a book onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, book StoredBook) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, bookBytes).Err()
}

// Pop waits up to PopTimeout for a book on one of the queues and returns it
// with the id of the queue it came from.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, StoredBook, error) {
	var book StoredBook
	infos, err := q.client.BLPop(ctx, PopTimeout, qids...).Result()
	if errors.Is(err, redis.Nil) {
		return "", book, ErrNoEvent
	}
	if err != nil {
		return "", book, err
	}
	if len(infos) != 2 {
		return "", book, errors.New("queue: unexpected pop reply")
	}

	if err = json.Unmarshal([]byte(infos[1]), &book); err != nil {
		return infos[0], book, err
	}
	return infos[0], book, nil
}
