package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		form CheckoutForm
		want FieldErrors
	}{
		{"valid", CheckoutForm{Name: "Budi", Phone: "0812", Email: "budi@example.com"}, FieldErrors{}},
		{"all empty", CheckoutForm{}, FieldErrors{Name: true, Phone: true, Email: true}},
		{"whitespace only", CheckoutForm{Name: "  ", Phone: "\t", Email: " "}, FieldErrors{Name: true, Phone: true, Email: true}},
		{"email without at", CheckoutForm{Name: "Budi", Phone: "0812", Email: "budi.example.com"}, FieldErrors{Email: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.form.Validate()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Any(), got.Any())
		})
	}
}

func TestNewCartSnapshot(t *testing.T) {
	c := NewCart("s1")
	require.NoError(t, c.Add(CartItem{ProductID: 1, Name: "Website Personal", UnitPrice: 60000, Currency: "IDR"}, 2))
	require.NoError(t, c.Add(CartItem{ProductID: 2, Name: "Stock Foto Estetik", UnitPrice: 30000, Currency: "IDR"}, 1))

	s := NewCartSnapshot(c)

	require.Len(t, s.Items, 2)
	assert.Equal(t, int64(120000), s.Items[0].Subtotal)
	assert.Equal(t, "Website Personal", s.Items[0].ProductName)
	assert.Equal(t, int64(150000), s.TotalAmount)
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, "IDR", s.Currency)
	assert.False(t, s.CapturedAt.IsZero())
}
