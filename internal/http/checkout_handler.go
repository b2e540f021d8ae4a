package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
)

type CheckoutService interface {
	PlaceOrder(ctx context.Context, sessionID string, form domain.CheckoutForm) (*domain.OrderConfirmation, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CheckoutResponseDTO struct {
	OrderID        string                    `json:"order_id"`
	Message        string                    `json:"message"`
	RedirectTo     string                    `json:"redirect_to"`
	Items          []domain.CartSnapshotItem `json:"items"`
	TotalItems     int                       `json:"total_items"`
	TotalAmount    int64                     `json:"total_amount"`
	Currency       string                    `json:"currency"`
	FormattedTotal string                    `json:"formatted_total"`
	PlacedAt       time.Time                 `json:"placed_at"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "cart session is missing")
		return
	}

	var form domain.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	conf, err := h.checkout.PlaceOrder(ctx, sessionID, form)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID:        conf.OrderID,
		Message:        conf.Message,
		RedirectTo:     conf.RedirectTo,
		Items:          conf.Snapshot.Items,
		TotalItems:     conf.Snapshot.TotalItems,
		TotalAmount:    conf.Snapshot.TotalAmount,
		Currency:       conf.Snapshot.Currency,
		FormattedTotal: domain.FormatPrice(conf.Snapshot.TotalAmount, conf.Snapshot.Currency),
		PlacedAt:       conf.PlacedAt,
	})
}
