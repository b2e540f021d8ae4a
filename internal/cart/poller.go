package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

const CheckoutTopic = "checkout-outbox"

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Invalidator drops cached cart state for a session.
type Invalidator interface {
	InvalidateCart(sessionID string)
}

// Poller invalidates the cached cart named by each checkout event, so no
// instance keeps serving a cart from before the order. The ordered items are
// removed from the store by the checkout itself.
type Poller struct {
	invalidator Invalidator
	reader      messageReader
	retryDelay  time.Duration
	logger      *log.Entry
}

func NewPoller(invalidator Invalidator, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    CheckoutTopic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(invalidator, reader)
}

func newPoller(invalidator Invalidator, reader messageReader) *Poller {
	return &Poller{
		invalidator: invalidator,
		reader:      reader,
		retryDelay:  time.Second,
		logger:      log.WithField("component", "cart-poller"),
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.getMessageAndInvalidate(ctx); err != nil {
			select {
			case <-ctx.Done():
			case <-time.After(p.retryDelay):
			}
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.WithError(err).Error("error closing reader")
	}
}

// getMessageAndInvalidate only returns read errors; bad messages are logged and skipped.
func (p *Poller) getMessageAndInvalidate(ctx context.Context) error {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.WithError(err).Error("error reading message")
		}
		return err
	}

	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		p.logger.WithError(err).Error("error parsing message")
		return nil
	}
	if payload.SessionID == "" {
		p.logger.Warn("missing or invalid session_id")
		return nil
	}

	p.invalidator.InvalidateCart(payload.SessionID)
	p.logger.WithField("session_id", payload.SessionID).Debug("cart cache invalidated")
	return nil
}
