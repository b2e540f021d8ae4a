package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultQuantity is used when an add request does not name a quantity.
const DefaultQuantity = 1

// ProductLookup is the part of the catalog the cart needs.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// Summary is what the navigation badge shows.
type Summary struct {
	TotalItems     int    `json:"total_items"`
	TotalPrice     int64  `json:"total_price"`
	Currency       string `json:"currency"`
	FormattedTotal string `json:"formatted_total"`
}

type Service struct {
	repo            Repository
	cache           Cache
	products        ProductLookup
	metrics         *metrics.StoreMetrics
	displayCurrency string
	sfg             singleflight.Group // Prevents cache stampede
	logger          *log.Entry

	// cacheMu orders cache fills against invalidations; gen changes on every mutation
	// so a fill that raced with a write is dropped instead of caching a stale cart.
	cacheMu sync.Mutex
	gen     uint64
}

type Option func(*Service)

func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDisplayCurrency sets the currency used to format totals of an empty cart.
func WithDisplayCurrency(code string) Option {
	return func(s *Service) { s.displayCurrency = code }
}

func NewService(repo Repository, cache Cache, products ProductLookup, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		cache:           cache,
		products:        products,
		displayCurrency: "IDR",
		logger:          log.WithField("component", "cart"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart returns the session's cart. A session without a cart gets an empty one.
func (s *Service) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	gen := s.generation()

	// Use singleflight to prevent multiple concurrent cache misses for same key.
	// The key carries the generation so a read started after a write never joins
	// a flight that began before it.
	v, err, _ := s.sfg.Do(fmt.Sprintf("%s:%d", sessionID, gen), func() (interface{}, error) {
		c, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			s.metrics.RecordCacheLookup(true)
			return c, nil
		}
		s.metrics.RecordCacheLookup(false)

		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WithError(err).Warn("cache get error") // log cache error but continue
		}

		c, err = s.loadCart(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		s.fillCache(ctx, sessionID, c, gen)
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	// callers share the singleflight result
	return v.(*domain.Cart).Clone(), nil
}

func (s *Service) loadCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	c, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		return domain.NewCart(sessionID), nil
	}
	return c, err
}

// AddProduct looks the product up in the catalog and adds quantity units of it.
// A quantity of 0 means DefaultQuantity.
func (s *Service) AddProduct(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	if quantity == 0 {
		quantity = DefaultQuantity
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to validate product: %w", err)
	}

	if err := s.repo.AddItem(ctx, sessionID, domain.NewCartItem(product, quantity)); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Error("repo add item error")
		return nil, err
	}
	s.invalidateCache(sessionID)
	s.metrics.RecordItemsAdded(quantity)

	return s.loadCart(ctx, sessionID)
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	if err := s.repo.UpdateItemQuantity(ctx, sessionID, productID, quantity); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Error("repo update item quantity error")
		return nil, err
	}
	s.invalidateCache(sessionID)
	s.metrics.RecordQuantityUpdated()

	return s.loadCart(ctx, sessionID)
}

// RemoveItem deletes the product's line. Removing from a missing cart is a no-op.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error) {
	err := s.repo.RemoveItem(ctx, sessionID, productID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		s.logger.WithError(err).WithField("product_id", productID).Error("repo remove item error")
		return nil, err
	}
	s.invalidateCache(sessionID)
	s.metrics.RecordItemRemoved()

	return s.loadCart(ctx, sessionID)
}

// ClearCart empties the session's cart. A missing cart is already clear.
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	err := s.repo.DeleteCart(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		s.logger.WithError(err).Error("repo delete cart error")
		return err
	}
	s.invalidateCache(sessionID)
	s.metrics.RecordCartCleared()
	return nil
}

// RemoveOrderedItems takes the ordered quantities out of the cart. Lines added or
// topped up after the order was captured stay in the cart.
func (s *Service) RemoveOrderedItems(ctx context.Context, sessionID string, items []domain.CartSnapshotItem) error {
	quantities := make(map[int64]int, len(items))
	for _, item := range items {
		quantities[item.ProductID] += item.Quantity
	}

	err := s.repo.RemoveQuantities(ctx, sessionID, quantities)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		s.logger.WithError(err).Error("repo remove ordered items error")
		return err
	}
	s.invalidateCache(sessionID)
	s.metrics.RecordCartCleared()
	return nil
}

// InvalidateCart drops the cached copy of the session's cart and discards any
// cache fill that is still in flight.
func (s *Service) InvalidateCart(sessionID string) {
	s.invalidateCache(sessionID)
}

func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	c, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Summarize(c), nil
}

// Summarize computes the badge values of an already loaded cart.
func (s *Service) Summarize(c *domain.Cart) *Summary {
	currency := c.Currency()
	if currency == "" {
		currency = s.displayCurrency
	}
	total := c.TotalPrice()
	return &Summary{
		TotalItems:     c.TotalItems(),
		TotalPrice:     total,
		Currency:       currency,
		FormattedTotal: domain.FormatPrice(total, currency),
	}
}

func (s *Service) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.gen
}

func (s *Service) fillCache(ctx context.Context, sessionID string, c *domain.Cart, gen uint64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen != s.gen {
		return
	}
	if err := s.cache.Set(ctx, sessionID, c); err != nil {
		s.logger.WithError(err).Warn("cache set error")
	}
}

func (s *Service) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.gen++
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.WithError(err).Warn("cache invalidate error")
	}
}
