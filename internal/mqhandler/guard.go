// Package mqhandler adapts domain services to RabbitMQ consumers.
package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"dealroom/pkg/util"
)

// Deduper is satisfied by *util.Deduper.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
	Release(ctx context.Context, handler, eventID string)
}

// RetryCounter is satisfied by *util.RetryCounter.
type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// DeadLetterPublisher is satisfied by *mq.Publisher.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, originalError, failedAt string) error
}

// Guard gives handlers at-most-once side effects per event id, bounded retries and dead-lettering.
type Guard struct {
	dedup      Deduper
	retries    RetryCounter
	dlq        DeadLetterPublisher
	maxRetries int64
	logger     *zap.Logger
}

func NewGuard(dedup Deduper, retries RetryCounter, dlq DeadLetterPublisher, maxRetries int64, logger *zap.Logger) *Guard {
	return &Guard{
		dedup:      dedup,
		retries:    retries,
		dlq:        dlq,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Run executes fn once per (handler, eventID). A nil return acks the delivery;
// an error nacks it for redelivery.
func (g *Guard) Run(ctx context.Context, handler, routingKey, eventID string, raw json.RawMessage, fn func(context.Context) error) error {
	log := g.logger.With(zap.String("handler", handler), zap.String("event_id", eventID))

	if !g.dedup.AcquireOnce(ctx, handler, eventID) {
		log.Info("Duplicate event skipped")
		return nil
	}

	retryKey := util.FormatRetryKey(handler, eventID)
	err := fn(ctx)
	if err == nil {
		if rerr := g.retries.Reset(ctx, retryKey); rerr != nil {
			log.Debug("Failed to reset retry counter", zap.Error(rerr))
		}
		return nil
	}

	// the next delivery must be allowed through
	g.dedup.Release(ctx, handler, eventID)

	retryable, errType := util.IsRetryableError(err)
	count, cerr := g.retries.IncrementAndGet(ctx, retryKey)
	if cerr != nil {
		log.Warn("Retry counter unavailable", zap.Error(cerr))
		count = 1
	}

	if util.ShouldRetry(count, g.maxRetries, retryable) {
		log.Warn("Handler failed, will retry",
			zap.String("error_type", errType),
			zap.Int64("attempt", count),
			zap.Error(err),
		)
		return err
	}

	log.Error("Handler failed, dead-lettering",
		zap.String("error_type", errType),
		zap.Bool("retryable", retryable),
		zap.Int64("attempt", count),
		zap.Error(err),
	)
	if dlqErr := g.dlq.PublishToDLQ(ctx, routingKey, raw, err.Error(), time.Now().UTC().Format(time.RFC3339)); dlqErr != nil {
		log.Error("Failed to publish to DLQ", zap.Error(dlqErr))
		return err
	}
	if rerr := g.retries.Reset(ctx, retryKey); rerr != nil {
		log.Debug("Failed to reset retry counter", zap.Error(rerr))
	}
	return nil
}
