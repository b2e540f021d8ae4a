package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

type productsResponse struct {
	Products []*domain.Product `json:"products"`
}

// RemoteRepository reads products from an external catalog API.
type RemoteRepository struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	sfg     singleflight.Group
}

type RemoteOption func(*RemoteRepository)

func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteRepository) { r.client = c }
}

func NewRemoteRepository(baseURL string, opts ...RemoteOption) *RemoteRepository {
	r := &RemoteRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProductNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("catalog circuit breaker state changed")
		},
	})
	return r
}

func (r *RemoteRepository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	v, err, _ := r.sfg.Do("all", func() (interface{}, error) {
		body, err := r.fetch(ctx, "/products")
		if err != nil {
			return nil, err
		}
		var resp productsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode products failed: %w", err)
		}
		return resp.Products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

func (r *RemoteRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	body, err := r.fetch(ctx, "/products/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode product failed: %w", err)
	}
	return &p, nil
}

func (r *RemoteRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	body, err := r.fetch(ctx, "/products?slug="+url.QueryEscape(slug))
	if err != nil {
		return nil, err
	}
	var resp productsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode products failed: %w", err)
	}
	for _, p := range resp.Products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *RemoteRepository) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func (r *RemoteRepository) fetch(ctx context.Context, path string) ([]byte, error) {
	body, err := r.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build catalog request failed: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrProductNotFound
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read catalog response failed: %w", err)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return body, err
}
