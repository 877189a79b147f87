package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// runInTx retries fn once when the store reports a lock conflict.
func runInTx(ctx context.Context, store domain.Store, logger *zerolog.Logger, fn func(tx domain.Tx) error) error {
	err := store.RunInTx(ctx, fn)
	if errors.Is(err, domain.ErrTxConflict) {
		logger.Warn().Err(err).Msg("transaction conflict, retrying once")
		err = store.RunInTx(ctx, fn)
	}
	return err
}

// enqueue writes the event into the outbox of the running transaction.
func enqueue(ctx context.Context, tx domain.Tx, eventType string, aggregateID int64, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return tx.EnqueueOutbox(ctx, &models.OutboxMessage{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     raw,
	})
}

// publish notifies in-process subscribers after commit. Failures are logged only.
func publish(publisher domain.EventPublisher, logger *zerolog.Logger, eventType string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishJSON(eventType, payload); err != nil {
		logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func nopLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}
