package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "Rp 60.000", FormatPrice(60000, "IDR"))
	assert.Equal(t, "Rp 110.000", FormatPrice(110000, "idr"))
	assert.Equal(t, "Rp 0", FormatPrice(0, "IDR"))
	assert.Equal(t, "$ 1,250.05", FormatPrice(125005, "USD"))
	assert.Equal(t, "-$ 0.50", FormatPrice(-50, "USD"))
}

func TestNormalizeCurrency(t *testing.T) {
	code, err := NormalizeCurrency("idr")
	require.NoError(t, err)
	assert.Equal(t, "IDR", code)

	_, err = NormalizeCurrency("rupiah")
	assert.Error(t, err)
}
