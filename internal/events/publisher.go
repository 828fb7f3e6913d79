package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers booking events to downstream consumers.
type Publisher interface {
	BookingCreated(ctx context.Context, event BookingCreated) error
	BookingDecided(ctx context.Context, event BookingDecided) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(context.Context, BookingCreated) error { return nil }
func (NoopPublisher) BookingDecided(context.Context, BookingDecided) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }

// AMQPPublisher publishes persistent JSON messages to durable queues on the default exchange.
type AMQPPublisher struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the booking queues.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	for _, q := range []string{QueueBookingCreated, QueueBookingDecided} {
		if _, err := ch.QueueDeclare(
			q,     // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("rabbitmq: declare queue %s failed: %w", q, err)
		}
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) BookingCreated(ctx context.Context, event BookingCreated) error {
	return p.publish(ctx, QueueBookingCreated, event)
}

func (p *AMQPPublisher) BookingDecided(ctx context.Context, event BookingDecided) error {
	return p.publish(ctx, QueueBookingDecided, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
	msg, err := newPublishing(event, time.Now().UTC())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		msg,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish to %s failed: %w", queue, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		slog.Warn("rabbitmq: channel close failed", "error", err)
	}
	return p.conn.Close()
}

func newPublishing(event any, ts time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
		Body:         body,
	}, nil
}
