package cart

import (
	"context"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

// MemoryRepository keeps carts in process memory. It is the default store when
// no MongoDB is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]*domain.Cart)}
}

func (m *MemoryRepository) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return c.Clone(), nil
}

func (m *MemoryRepository) AddItem(_ context.Context, sessionID string, item domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[sessionID]
	if !ok {
		c = domain.NewCart(sessionID)
	}
	if err := c.Add(item, item.Quantity); err != nil {
		return err
	}
	m.carts[sessionID] = c
	return nil
}

func (m *MemoryRepository) UpdateItemQuantity(_ context.Context, sessionID string, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[sessionID]
	if !ok {
		return ErrItemNotFound
	}
	return c.SetQuantity(productID, quantity)
}

func (m *MemoryRepository) RemoveItem(_ context.Context, sessionID string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[sessionID]
	if !ok {
		return ErrCartNotFound
	}
	c.Remove(productID)
	return nil
}

func (m *MemoryRepository) RemoveQuantities(_ context.Context, sessionID string, quantities map[int64]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[sessionID]
	if !ok {
		return ErrCartNotFound
	}
	c.Subtract(quantities)
	if c.IsEmpty() {
		delete(m.carts, sessionID)
	}
	return nil
}

func (m *MemoryRepository) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.carts[sessionID]; !ok {
		return ErrCartNotFound
	}
	delete(m.carts, sessionID)
	return nil
}
