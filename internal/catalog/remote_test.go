package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var remoteProducts = []*domain.Product{
	{ID: 1, Name: "Website Personal", Slug: "website-personal", Price: 60000, Currency: "IDR"},
	{ID: 2, Name: "Stock Foto Estetik", Slug: "stock-foto-estetik", Price: 30000, Currency: "IDR"},
}

func newCatalogServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		list := remoteProducts
		if slug := r.URL.Query().Get("slug"); slug != "" {
			list = nil
			for _, p := range remoteProducts {
				if p.Slug == slug {
					list = append(list, p)
				}
			}
		}
		_ = json.NewEncoder(w).Encode(productsResponse{Products: list})
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(remoteProducts[0])
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote_GetAllProducts(t *testing.T) {
	var calls atomic.Int32
	srv := newCatalogServer(t, &calls)
	repo := NewRemoteRepository(srv.URL + "/")

	products, err := repo.GetAllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Stock Foto Estetik", products[1].Name)
}

func TestRemote_GetProduct(t *testing.T) {
	var calls atomic.Int32
	srv := newCatalogServer(t, &calls)
	repo := NewRemoteRepository(srv.URL)

	p, err := repo.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), p.Price)

	_, err = repo.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRemote_GetProductBySlug(t *testing.T) {
	var calls atomic.Int32
	srv := newCatalogServer(t, &calls)
	repo := NewRemoteRepository(srv.URL)

	p, err := repo.GetProductBySlug(context.Background(), "stock-foto-estetik")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)

	_, err = repo.GetProductBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRemote_NotFoundDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := newCatalogServer(t, &calls)
	repo := NewRemoteRepository(srv.URL)

	for i := 0; i < 10; i++ {
		_, err := repo.GetProduct(context.Background(), 42)
		require.ErrorIs(t, err, ErrProductNotFound)
	}
	assert.Equal(t, int32(10), calls.Load())
}

func TestRemote_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	repo := NewRemoteRepository(srv.URL)

	for i := 0; i < 5; i++ {
		_, err := repo.GetProduct(context.Background(), 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCatalogUnavailable)
	}

	_, err := repo.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Equal(t, int32(5), calls.Load())
}
