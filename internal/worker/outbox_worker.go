package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/metrics"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

// OutboxStore is the part of the database the worker needs.
type OutboxStore interface {
	FetchPendingOutbox(ctx context.Context, limit int) ([]models.OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, id int64) error
	MarkOutboxRetry(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error
	MarkOutboxFailed(ctx context.Context, id int64, errMsg string) error
}

// OutboxWorker drains committed events from the outbox table into a Publisher.
type OutboxWorker struct {
	store         OutboxStore
	publisher     Publisher
	redis         *redis.Client
	retryPolicy   RetryPolicy
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	now           func() time.Time
	logger        *zerolog.Logger
}

// NewOutboxWorker builds a worker with sane defaults. redisClient is optional;
// when set, dead-lettered messages are also pushed to a Redis list for inspection.
func NewOutboxWorker(store OutboxStore, publisher Publisher, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *OutboxWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OutboxWorker{
		store:         store,
		publisher:     publisher,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		deadLetterKey: "pansiyon:outbox:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     50,
		now:           time.Now,
		logger:        logger,
	}
}

// WithPolling overrides the poll interval and batch size; zero values keep the defaults.
func (w *OutboxWorker) WithPolling(interval time.Duration, batchSize int) *OutboxWorker {
	if interval > 0 {
		w.pollInterval = interval
	}
	if batchSize > 0 {
		w.batchSize = batchSize
	}
	return w
}

// Start launches main loop; stops when ctx is done.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", w.pollInterval).Msg("outbox worker started")
	defer w.logger.Info().Msg("outbox worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		n, err := w.ProcessBatch(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("outbox fetch failed")
		}
		// A fully settled batch usually means more is waiting. Anything less waits
		// for the ticker so a failing store is not hammered with the same rows.
		if n == w.batchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch delivers up to one batch of due messages and returns how many it
// settled, i.e. whose new state was stored.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	messages, err := w.store.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	settled := 0
	for i := range messages {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if w.process(ctx, &messages[i]) {
			settled++
		}
	}
	return settled, nil
}

func (w *OutboxWorker) process(ctx context.Context, msg *models.OutboxMessage) bool {
	if err := w.publisher.Publish(ctx, msg); err != nil {
		return w.retryOrFail(ctx, msg, err)
	}

	metrics.IncOutbox("published")
	if err := w.store.MarkOutboxPublished(ctx, msg.ID); err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", msg.ID).Msg("mark published failed")
		return false
	}
	return true
}

func (w *OutboxWorker) retryOrFail(ctx context.Context, msg *models.OutboxMessage, cause error) bool {
	attempt := msg.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		metrics.IncOutbox("failed")
		w.logger.Error().Err(cause).
			Int64("outbox_id", msg.ID).
			Str("event", msg.EventType).
			Int("attempt", attempt).
			Msg("outbox message dead-lettered")
		if err := w.store.MarkOutboxFailed(ctx, msg.ID, cause.Error()); err != nil {
			w.logger.Error().Err(err).Int64("outbox_id", msg.ID).Msg("mark failed failed")
			return false
		}
		w.pushDeadLetter(ctx, msg)
		return true
	}

	metrics.IncOutbox("retry")
	next := w.now().Add(w.retryPolicy.NextDelay(attempt))
	w.logger.Warn().Err(cause).
		Int64("outbox_id", msg.ID).
		Int("attempt", attempt).
		Time("next_retry_at", next).
		Msg("outbox delivery failed, will retry")
	if err := w.store.MarkOutboxRetry(ctx, msg.ID, cause.Error(), next); err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", msg.ID).Msg("mark retry failed")
		return false
	}
	return true
}

func (w *OutboxWorker) pushDeadLetter(ctx context.Context, msg *models.OutboxMessage) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", msg.ID).Msg("encode deadletter failed")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", msg.ID).Msg("deadletter push failed")
	}
}
