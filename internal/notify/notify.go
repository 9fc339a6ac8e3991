// Package notify publishes payment outcomes to a topic exchange.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

// Routing keys
const (
	KeyPaymentPaid   = "payment.paid"
	KeyPaymentFailed = "payment.failed"
)

// PaymentEvent is the message body for both routing keys
type PaymentEvent struct {
	OrderID    string    `json:"orderId"`
	PaymentID  string    `json:"paymentId,omitempty"`
	OwnerEmail string    `json:"ownerEmail"`
	ListName   string    `json:"listName"`
	Flow       string    `json:"flow"`
	Amount     int64     `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher announces payment outcomes
type Publisher interface {
	PublishPaymentPaid(ctx context.Context, evt PaymentEvent) error
	PublishPaymentFailed(ctx context.Context, evt PaymentEvent) error
	Close() error
}

// New returns an AMQP publisher, or a no-op one when no broker is configured
func New(cfg *config.Config) (Publisher, error) {
	if cfg.Events.AMQPURL == "" {
		logger.Service("notify").Info("AMQP_URL not set, payment events are disabled")
		return NoopPublisher{}, nil
	}
	return NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON messages on a durable topic exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	log      *log.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := newAMQPPublisher(ch, exchange)
	p.conn = conn
	p.log.Info("Payment event publisher connected", "exchange", exchange)
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange, log: logger.Service("notify")}
}

func (p *AMQPPublisher) PublishPaymentPaid(ctx context.Context, evt PaymentEvent) error {
	return p.publish(ctx, KeyPaymentPaid, evt)
}

func (p *AMQPPublisher) PublishPaymentFailed(ctx context.Context, evt PaymentEvent) error {
	return p.publish(ctx, KeyPaymentFailed, evt)
}

func (p *AMQPPublisher) publish(ctx context.Context, key string, evt PaymentEvent) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    evt.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.log.Error("Failed to publish event", "key", key, "order_id", evt.OrderID, "error", err)
		return fmt.Errorf("publish %s: %w", key, err)
	}

	p.log.Debug("Event published", "key", key, "order_id", evt.OrderID)
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) PublishPaymentPaid(context.Context, PaymentEvent) error   { return nil }
func (NoopPublisher) PublishPaymentFailed(context.Context, PaymentEvent) error { return nil }
func (NoopPublisher) Close() error                                             { return nil }
