package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// mirrorConsumer applies queued book changes to the local mirror.
type mirrorConsumer struct {
	logger *zap.Logger
	queue  Queuer
	mirror BookMirror
}

func NewMirrorConsumer(logger *zap.Logger, q Queuer, mirror BookMirror) Consumer {
	return &mirrorConsumer{logger, q, mirror}
}

// Consume runs until ctx is done. Failures on single events are logged and skipped.
func (mc *mirrorConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, book, err := mc.queue.Pop(ctx, qids...)
		if ctx.Err() != nil {
			mc.logger.Info("consumer: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if errors.Is(err, ErrNoEvent) {
			continue
		}

		if err != nil {
			mc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(PopTimeout):
			}
			continue
		}

		mc.Apply(ctx, qid, book)
	}
}

// Apply reflects a single change on the mirror.
func (mc *mirrorConsumer) Apply(ctx context.Context, qid string, book StoredBook) {
	var err error
	switch qid {
	case CreateQueue, UpdateQueue:
		if err = mc.mirror.Put(ctx, book); err != nil {
			mc.logger.Error("consumer: failed to mirror book", zap.String("qid", qid), zap.String("book.id", book.ID), zap.Error(err))
		}
	case DeleteQueue:
		if err = mc.mirror.Remove(ctx, book.ID); err != nil {
			mc.logger.Error("consumer: failed to remove mirrored book", zap.String("book.id", book.ID), zap.Error(err))
		}
	default:
		mc.logger.Warn("consumer: received book on unknown queue id", zap.String("qid", qid), zap.String("book.id", book.ID))
	}
}
