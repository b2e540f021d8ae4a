package cart

import (
	"context"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetCart_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	c, err := repo.GetCart(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, c)
}

func TestMemory_AddItem_NewCartAndIncrement(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 1, Quantity: 3, Currency: "IDR"}))
	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 1, Quantity: 2, Currency: "IDR"}))

	c, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", c.SessionID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestMemory_AddItem_InvalidQuantity(t *testing.T) {
	repo := NewMemoryRepository()

	err := repo.AddItem(context.Background(), "s1", domain.CartItem{ProductID: 1, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = repo.GetCart(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMemory_GetCart_ReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 1, Quantity: 1}))

	c, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	c.Items[0].Quantity = 100

	again, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMemory_UpdateItemQuantity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpdateItemQuantity(ctx, "s1", 1, 2), ErrItemNotFound)

	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 1, Quantity: 1}))
	require.NoError(t, repo.UpdateItemQuantity(ctx, "s1", 1, 7))
	assert.ErrorIs(t, repo.UpdateItemQuantity(ctx, "s1", 2, 7), ErrItemNotFound)

	c, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

func TestMemory_RemoveItem(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.RemoveItem(ctx, "s1", 1), ErrCartNotFound)

	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 1, Quantity: 1}))
	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 2, Quantity: 1}))
	require.NoError(t, repo.RemoveItem(ctx, "s1", 1))
	require.NoError(t, repo.RemoveItem(ctx, "s1", 1))

	c, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(2), c.Items[0].ProductID)
}

func TestMemory_DeleteCart(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.DeleteCart(ctx, "s1"), ErrCartNotFound)

	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 1, Quantity: 1}))
	require.NoError(t, repo.DeleteCart(ctx, "s1"))

	_, err := repo.GetCart(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMemory_RemoveQuantities(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.RemoveQuantities(ctx, "s1", map[int64]int{1: 1}), ErrCartNotFound)

	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 1, Quantity: 3}))
	require.NoError(t, repo.AddItem(ctx, "s1", domain.CartItem{ProductID: 2, Quantity: 1}))
	require.NoError(t, repo.RemoveQuantities(ctx, "s1", map[int64]int{1: 1, 2: 1}))

	c, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	require.NoError(t, repo.RemoveQuantities(ctx, "s1", map[int64]int{1: 2}))
	_, err = repo.GetCart(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
