package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxItemQuantity = 99

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddProduct(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
	Summary(ctx context.Context, sessionID string) (*cart.Summary, error)
	Summarize(c *domain.Cart) *cart.Summary
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	ProductID          int64  `json:"product_id"`
	Name               string `json:"name"`
	Slug               string `json:"slug"`
	ImageURL           string `json:"image_url"`
	UnitPrice          int64  `json:"unit_price"`
	FormattedUnitPrice string `json:"formatted_unit_price"`
	Quantity           int    `json:"quantity"`
	Subtotal           int64  `json:"subtotal"`
	FormattedSubtotal  string `json:"formatted_subtotal"`
}

type CartResponseDTO struct {
	Items          []CartItemDTO `json:"items"`
	TotalItems     int           `json:"total_items"`
	TotalPrice     int64         `json:"total_price"`
	Currency       string        `json:"currency"`
	FormattedTotal string        `json:"formatted_total"`
}

func (h *CartHandler) toCartResponse(c *domain.Cart) CartResponseDTO {
	summary := h.carts.Summarize(c)
	items := make([]CartItemDTO, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartItemDTO{
			ProductID:          item.ProductID,
			Name:               item.Name,
			Slug:               item.Slug,
			ImageURL:           item.ImageURL,
			UnitPrice:          item.UnitPrice,
			FormattedUnitPrice: domain.FormatPrice(item.UnitPrice, item.Currency),
			Quantity:           item.Quantity,
			Subtotal:           item.Subtotal(),
			FormattedSubtotal:  domain.FormatPrice(item.Subtotal(), item.Currency),
		}
	}
	return CartResponseDTO{
		Items:          items,
		TotalItems:     summary.TotalItems,
		TotalPrice:     summary.TotalPrice,
		Currency:       summary.Currency,
		FormattedTotal: summary.FormattedTotal,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "cart session is missing")
		return
	}

	c, err := h.carts.GetCart(ctx, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.toCartResponse(c))
}

// Summary backs the cart badge in the navigation bar.
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "cart session is missing")
		return
	}

	summary, err := h.carts.Summary(ctx, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "cart session is missing")
		return
	}

	// Parse request body
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Validate request
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	quantity := cart.DefaultQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 || quantity > maxItemQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	c, err := h.carts.AddProduct(ctx, sessionID, req.ProductID, quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.toCartResponse(c))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "cart session is missing")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxItemQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	c, err := h.carts.UpdateQuantity(ctx, sessionID, productID, req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "cart session is missing")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	c, err := h.carts.RemoveItem(ctx, sessionID, productID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "cart session is missing")
		return
	}

	if err := h.carts.ClearCart(ctx, sessionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.toCartResponse(domain.NewCart(sessionID)))
}

// productIDParam reads {product_id} from the path, writing a 400 when it is not a positive integer.
func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
