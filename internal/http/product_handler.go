package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ProductService is the read side of the catalog.
type ProductService interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

type ProductHandler struct {
	products ProductService
	timeout  time.Duration
}

func NewProductHandler(products ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

type ProductResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	Price          int64  `json:"price"`
	Currency       string `json:"currency"`
	FormattedPrice string `json:"formatted_price"`
	ImageURL       string `json:"image_url"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		Currency:       p.Currency,
		FormattedPrice: domain.FormatPrice(p.Price, p.Currency),
		ImageURL:       p.ImageURL,
	}
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.products.GetAllProducts(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = toProductResponse(p)
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/{ref}, where ref is a numeric id or a slug
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ref := chi.URLParam(r, "ref")
	if ref == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_ref", "product id or slug is required")
		return
	}

	var (
		p   *domain.Product
		err error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		if id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
			return
		}
		p, err = h.products.GetProduct(ctx, id)
	} else {
		p, err = h.products.GetProductBySlug(ctx, ref)
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(p))
}
