package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

// Publisher delivers one outbox message to the outside world.
type Publisher interface {
	Publish(ctx context.Context, msg *models.OutboxMessage) error
	Close() error
}

// AMQPPublisher sends outbox messages to a durable RabbitMQ queue through the
// default exchange. The connection is opened lazily and re-dialed after a failure.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url, queue string, logger *zerolog.Logger) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("broker url is required")
	}
	if queue == "" {
		queue = "pansiyon.events"
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AMQPPublisher{url: url, queue: queue, logger: logger}, nil
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	p.logger.Info().Str("queue", p.queue).Msg("broker connection established")
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg *models.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.MessageID,
		Type:         msg.EventType,
		Timestamp:    msg.CreatedAt.UTC(),
		Body:         msg.Payload,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.closeLocked()
		return fmt.Errorf("publish %s: %w", msg.EventType, err)
	}
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger *zerolog.Logger
}

func NewLogPublisher(logger *zerolog.Logger) *LogPublisher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, msg *models.OutboxMessage) error {
	p.logger.Info().
		Str("message_id", msg.MessageID).
		Str("event", msg.EventType).
		Int64("aggregate_id", msg.AggregateID).
		RawJSON("payload", msg.Payload).
		Time("created_at", msg.CreatedAt.In(time.UTC)).
		Msg("event published")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
