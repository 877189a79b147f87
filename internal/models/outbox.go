package models

import "time"

const (
	OutboxPending   = "pending"
	OutboxRetry     = "retry"
	OutboxPublished = "published"
	OutboxFailed    = "failed"
)

// OutboxMessage is a committed domain event waiting to be delivered to the broker.
type OutboxMessage struct {
	ID          int64      `json:"id"`
	MessageID   string     `json:"message_id"`
	EventType   string     `json:"event_type"`
	AggregateID int64      `json:"aggregate_id"`
	Payload     []byte     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}
