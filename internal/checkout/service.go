package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	ConfirmationMessage  = "Order Placed Successfully!"
	ConfirmationRedirect = "/"
)

// CartStore is what checkout needs from the cart.
type CartStore interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	RemoveOrderedItems(ctx context.Context, sessionID string, items []domain.CartSnapshotItem) error
}

type Service struct {
	carts     CartStore
	publisher Publisher
	metrics   *metrics.StoreMetrics
	now       func() time.Time
	newID     func() string
	logger    *log.Entry
}

func NewService(carts CartStore, publisher Publisher, m *metrics.StoreMetrics) *Service {
	return &Service{
		carts:     carts,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    log.WithField("component", "checkout"),
	}
}

// PlaceOrder validates the form, snapshots the cart, announces the order and
// takes the ordered items out of the cart. Items added while the order is being
// placed stay in the cart. Nothing is charged or stored.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, form domain.CheckoutForm) (*domain.OrderConfirmation, error) {
	if fields := form.Validate(); fields.Any() {
		s.metrics.RecordCheckoutRejected("invalid_form")
		return nil, &ValidationError{Fields: fields}
	}

	c, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.IsEmpty() {
		s.metrics.RecordCheckoutRejected("empty_cart")
		return nil, ErrEmptyCart
	}

	confirmation := &domain.OrderConfirmation{
		OrderID:    s.newID(),
		SessionID:  sessionID,
		Customer:   form,
		Snapshot:   domain.NewCartSnapshot(c),
		PlacedAt:   s.now(),
		Message:    ConfirmationMessage,
		RedirectTo: ConfirmationRedirect,
	}
	logger := s.logger.WithField("order_id", confirmation.OrderID)

	if err := s.publisher.Publish(ctx, newOrderPlacedEvent(confirmation)); err != nil {
		logger.WithError(err).Error("failed to publish order event")
	}

	// the order is already announced, so a failed clear does not undo it
	if err := s.carts.RemoveOrderedItems(ctx, sessionID, confirmation.Snapshot.Items); err != nil {
		logger.WithError(err).Error("failed to clear cart after checkout")
	}

	s.metrics.RecordOrderPlaced()
	logger.WithField("total_amount", confirmation.Snapshot.TotalAmount).Info("order placed")
	return confirmation, nil
}
