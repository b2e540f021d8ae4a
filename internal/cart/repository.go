package cart

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = domain.ErrItemNotFound
)

// Repository defines the cart storage operations.
// AddItem increments the quantity of a line that is already present.
// RemoveQuantities decrements lines by the given amounts, drops lines that reach
// zero and deletes the cart once it is empty.
type Repository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, sessionID string, productID int64, quantity int) error
	RemoveItem(ctx context.Context, sessionID string, productID int64) error
	RemoveQuantities(ctx context.Context, sessionID string, quantities map[int64]int) error
	DeleteCart(ctx context.Context, sessionID string) error
}
