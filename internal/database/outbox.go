package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const outboxColumns = `id, message_id, event_type, aggregate_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at`

// EnqueueOutbox stores msg in the same transaction as the state change it describes.
func (c conn) EnqueueOutbox(ctx context.Context, msg *models.OutboxMessage) error {
	now := time.Now().UTC()
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = models.OutboxPending
	}

	result, err := c.q.ExecContext(ctx,
		`INSERT INTO outbox (message_id, event_type, aggregate_id, payload, status, retry_count, last_error, created_at, next_retry_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.MessageID, msg.EventType, msg.AggregateID, msg.Payload, msg.Status,
		msg.RetryCount, msg.LastError, now, nullTime(msg.NextRetryAt),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox message: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	msg.ID = id
	msg.CreatedAt = now
	return nil
}

// FetchPendingOutbox returns due messages, oldest first.
func (db *DB) FetchPendingOutbox(ctx context.Context, limit int) ([]models.OutboxMessage, error) {
	return db.queryOutbox(ctx,
		`SELECT `+outboxColumns+` FROM outbox
         WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
         ORDER BY id ASC LIMIT ?`,
		models.OutboxPending, models.OutboxRetry, time.Now().UTC(), limit)
}

func (db *DB) MarkOutboxPublished(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, last_error = '', next_retry_at = NULL, processed_at = ? WHERE id = ?`,
		models.OutboxPublished, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	return nil
}

func (db *DB) MarkOutboxRetry(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`,
		models.OutboxRetry, errMsg, nextRetryAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to schedule outbox retry: %w", err)
	}
	return nil
}

func (db *DB) MarkOutboxFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, last_error = ?, next_retry_at = NULL, retry_count = retry_count + 1, processed_at = ? WHERE id = ?`,
		models.OutboxFailed, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return nil
}

func (db *DB) ListFailedOutbox(ctx context.Context) ([]models.OutboxMessage, error) {
	return db.queryOutbox(ctx,
		`SELECT `+outboxColumns+` FROM outbox WHERE status = ? ORDER BY id DESC`, models.OutboxFailed)
}

func (db *DB) queryOutbox(ctx context.Context, query string, args ...any) ([]models.OutboxMessage, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	messages := []models.OutboxMessage{}
	for rows.Next() {
		var (
			m                    models.OutboxMessage
			processed, nextRetry sql.NullTime
		)
		err := rows.Scan(
			&m.ID, &m.MessageID, &m.EventType, &m.AggregateID, &m.Payload, &m.Status,
			&m.RetryCount, &m.LastError, &m.CreatedAt, &processed, &nextRetry,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		if processed.Valid {
			t := processed.Time
			m.ProcessedAt = &t
		}
		if nextRetry.Valid {
			t := nextRetry.Time
			m.NextRetryAt = &t
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
