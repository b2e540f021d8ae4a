package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T, migrationsPath string) *catalog.SQLiteRepository {
	// Use in-memory database for tests
	repo, err := catalog.NewSQLiteRepository(":memory:")
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations(migrationsPath))
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestGetAllProducts_Returns3AfterMigrations(t *testing.T) {
	repo := setupTestDB(t, "./migrations")

	products, err := repo.GetAllProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 3)
	assert.Equal(t, "Website Personal", products[0].Name)
	assert.Equal(t, int64(60000), products[0].Price)
	assert.Equal(t, "IDR", products[0].Currency)
	assert.Equal(t, "online-course", products[2].Slug)
}

func TestRunMigrations_Embedded(t *testing.T) {
	repo := setupTestDB(t, "")

	products, err := repo.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestRunMigrations_Twice(t *testing.T) {
	repo := setupTestDB(t, "")

	assert.NoError(t, repo.RunMigrations(""))
}

func TestGetAllProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetAllProducts(ctx)
	assert.ErrorContains(t, err, "failed to query products")
}

func TestGetProduct_ReturnsProduct(t *testing.T) {
	repo := setupTestDB(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	product, err := repo.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Stock Foto Estetik", product.Name)
	assert.Equal(t, int64(30000), product.Price)
	assert.False(t, product.CreatedAt.IsZero())
}

func TestGetProduct_IncorrectId_ReturnsNotFound(t *testing.T) {
	repo := setupTestDB(t, "")

	product, err := repo.GetProduct(context.Background(), -1)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestGetProductBySlug(t *testing.T) {
	repo := setupTestDB(t, "")

	product, err := repo.GetProductBySlug(context.Background(), "online-course")
	require.NoError(t, err)
	assert.Equal(t, int64(3), product.ID)

	_, err = repo.GetProductBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
