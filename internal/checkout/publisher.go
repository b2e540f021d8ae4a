package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

const (
	Topic                = "checkout-outbox"
	EventTypeOrderPlaced = "order_placed"
)

// OrderPlacedEvent is the payload published for every placed order.
type OrderPlacedEvent struct {
	OrderID     string                    `json:"order_id"`
	SessionID   string                    `json:"session_id"`
	Customer    domain.CheckoutForm       `json:"customer"`
	Items       []domain.CartSnapshotItem `json:"items"`
	TotalAmount int64                     `json:"total_amount"`
	TotalItems  int                       `json:"total_items"`
	Currency    string                    `json:"currency"`
	PlacedAt    time.Time                 `json:"placed_at"`
}

func newOrderPlacedEvent(c *domain.OrderConfirmation) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:     c.OrderID,
		SessionID:   c.SessionID,
		Customer:    c.Customer,
		Items:       c.Snapshot.Items,
		TotalAmount: c.Snapshot.TotalAmount,
		TotalItems:  c.Snapshot.TotalItems,
		Currency:    c.Snapshot.Currency,
		PlacedAt:    c.PlacedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderPlacedEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events to the checkout topic, keyed by order id.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs the event. Used when no broker is configured.
type LogPublisher struct {
	logger *log.Entry
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: log.WithField("component", "order-events")}
}

func (p *LogPublisher) Publish(_ context.Context, event OrderPlacedEvent) error {
	p.logger.WithFields(log.Fields{
		"order_id":     event.OrderID,
		"session_id":   event.SessionID,
		"total_amount": event.TotalAmount,
		"total_items":  event.TotalItems,
		"currency":     event.Currency,
	}).Info("order placed")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
