package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xambitlan/disclosure/internal/outbox/domain"
)

const confirmTimeout = 10 * time.Second

// ErrPublishNacked is returned when the broker rejects a message.
var ErrPublishNacked = errors.New("message rejected by broker")

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
}

// AMQPPublisher publishes outbox events to a topic exchange, routed by event
// type, and waits for the broker to confirm each one.
type AMQPPublisher struct {
	mu       sync.Mutex
	channel  Channel
	exchange string
	confirms chan amqp.Confirmation
	logger   *slog.Logger
}

// NewAMQPPublisher declares exchange and puts channel into confirm mode.
func NewAMQPPublisher(channel Channel, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	if err := channel.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	if err := channel.Confirm(false); err != nil {
		return nil, fmt.Errorf("failed to enable confirm mode: %w", err)
	}

	return &AMQPPublisher{
		channel:  channel,
		exchange: exchange,
		confirms: channel.NotifyPublish(make(chan amqp.Confirmation, 1)),
		logger:   logger,
	}, nil
}

// Process publishes event and blocks until it is confirmed. Publishes are
// serialized so each confirmation matches the message just sent.
func (p *AMQPPublisher) Process(ctx context.Context, event *domain.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         event.EventType,
		Timestamp:    event.CreatedAt,
		Body:         []byte(event.Payload),
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, event.EventType, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType, err)
	}

	select {
	case confirm, ok := <-p.confirms:
		if !ok {
			return errors.New("amqp channel closed while waiting for confirmation")
		}
		if !confirm.Ack {
			return ErrPublishNacked
		}
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for confirmation: %w", ctx.Err())
	case <-time.After(confirmTimeout):
		return errors.New("timeout waiting for confirmation")
	}

	if p.logger != nil {
		p.logger.Debug("event published",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
	}
	return nil
}

// DialAMQP opens a connection and a channel to url.
func DialAMQP(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return conn, channel, nil
}
