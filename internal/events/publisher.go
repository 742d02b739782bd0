// File: internal/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookmarked_backend/internal/config"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	AccountCreated = "account.created"
	AccountDeleted = "account.deleted"
)

// Event describes a change in an account's lifecycle. Type doubles as the
// routing key on the exchange.
type Event struct {
	Type       string    `json:"type"`
	AccountID  uuid.UUID `json:"accountId"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, accountID uuid.UUID, email string) Event {
	return Event{Type: eventType, AccountID: accountID, Email: email, OccurredAt: time.Now().UTC()}
}

// Publisher delivers account lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                        { return nil }

// AMQPPublisher publishes JSON events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp declare exchange %q: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			MessageId:    uuid.NewString(),
			Timestamp:    event.OccurredAt,
		})
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NewPublisher returns an AMQP publisher when EVENTS_AMQP_URL is set and a
// NoopPublisher otherwise. The cleanup closes the broker connection.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (Publisher, func(), error) {
	if cfg.EventsAMQPURL == "" {
		logger.Info("EVENTS_AMQP_URL not set, account events will not be published")
		return NoopPublisher{}, func() {}, nil
	}
	pub, err := NewAMQPPublisher(cfg.EventsAMQPURL, cfg.EventsExchange)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Account event publisher connected", zap.String("exchange", cfg.EventsExchange))
	cleanup := func() {
		if err := pub.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	return pub, cleanup, nil
}
