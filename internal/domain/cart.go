package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than 0")
	ErrItemNotFound     = errors.New("item not found in cart")
	ErrCurrencyMismatch = errors.New("product currency differs from cart currency")
)

type Cart struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID string     `json:"session_id" bson:"session_id"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// CartItem keeps the product fields captured when the line was first added,
// so totals can be computed without asking the catalog again.
type CartItem struct {
	ProductID int64     `json:"product_id" bson:"product_id"`
	Name      string    `json:"name" bson:"name"`
	Slug      string    `json:"slug" bson:"slug"`
	ImageURL  string    `json:"image_url" bson:"image_url"`
	UnitPrice int64     `json:"unit_price" bson:"unit_price"`
	Currency  string    `json:"currency" bson:"currency"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`
}

func NewCart(sessionID string) *Cart {
	now := time.Now()
	return &Cart{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewCartItem builds a cart line from a catalog product.
func NewCartItem(p *Product, quantity int) CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		ImageURL:  p.ImageURL,
		UnitPrice: p.Price,
		Currency:  canonicalCurrency(p.Currency),
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
}

// Subtotal is the line price: unit price times quantity.
func (i CartItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Add puts quantity units of item into the cart. A product already in the cart
// has its quantity increased instead of getting a second line.
func (c *Cart) Add(item CartItem, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if cur := c.Currency(); cur != "" && !strings.EqualFold(item.Currency, cur) {
		return ErrCurrencyMismatch
	}

	now := time.Now()
	c.UpdatedAt = now
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += quantity
			return nil
		}
	}

	item.Quantity = quantity
	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}
	c.Items = append(c.Items, item)
	return nil
}

// SetQuantity overwrites the quantity of an existing line.
func (c *Cart) SetQuantity(productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrItemNotFound
}

// Remove deletes the line for productID and reports whether it was present.
func (c *Cart) Remove(productID int64) bool {
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Subtract takes the given quantities off the matching lines and drops lines
// that reach zero. Products not in the cart are ignored.
func (c *Cart) Subtract(quantities map[int64]int) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		item.Quantity -= quantities[item.ProductID]
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.UpdatedAt = time.Now()
}

func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

func (c *Cart) Find(productID int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// TotalPrice sums unit price times quantity over all lines.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// TotalItems sums the quantities of all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Currency returns the currency of the cart lines, or "" for an empty cart.
func (c *Cart) Currency() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].Currency
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Items != nil {
		cp.Items = make([]CartItem, len(c.Items))
		copy(cp.Items, c.Items)
	}
	return &cp
}
