package domain

import (
	"strings"
	"time"
)

// CheckoutForm is the customer information collected on the checkout page.
type CheckoutForm struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// FieldErrors flags each form field that failed validation.
type FieldErrors struct {
	Name  bool `json:"name"`
	Phone bool `json:"phone"`
	Email bool `json:"email"`
}

func (e FieldErrors) Any() bool {
	return e.Name || e.Phone || e.Email
}

// Validate requires a non-blank name and phone, and a non-blank email containing "@".
func (f CheckoutForm) Validate() FieldErrors {
	email := strings.TrimSpace(f.Email)
	return FieldErrors{
		Name:  strings.TrimSpace(f.Name) == "",
		Phone: strings.TrimSpace(f.Phone) == "",
		Email: email == "" || !strings.Contains(email, "@"),
	}
}

type CartSnapshotItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// CartSnapshot represents the full cart state at checkout time
type CartSnapshot struct {
	Items       []CartSnapshotItem `json:"items"`
	TotalAmount int64              `json:"total_amount"`
	TotalItems  int                `json:"total_items"`
	Currency    string             `json:"currency"`
	CapturedAt  time.Time          `json:"captured_at"`
}

func NewCartSnapshot(c *Cart) *CartSnapshot {
	snapshot := &CartSnapshot{
		Items:       make([]CartSnapshotItem, 0, len(c.Items)),
		TotalAmount: c.TotalPrice(),
		TotalItems:  c.TotalItems(),
		Currency:    c.Currency(),
		CapturedAt:  time.Now(),
	}
	for _, item := range c.Items {
		snapshot.Items = append(snapshot.Items, CartSnapshotItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return snapshot
}

type OrderConfirmation struct {
	OrderID    string        `json:"order_id"`
	SessionID  string        `json:"session_id"`
	Customer   CheckoutForm  `json:"customer"`
	Snapshot   *CartSnapshot `json:"snapshot"`
	PlacedAt   time.Time     `json:"placed_at"`
	Message    string        `json:"message"`
	RedirectTo string        `json:"redirect_to"`
}
