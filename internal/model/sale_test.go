package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformValid(t *testing.T) {
	for _, p := range Platforms {
		assert.True(t, p.Valid(), "expected %q to be valid", p)
	}
	for _, p := range []Platform{"", "etsy", "EBAY"} {
		assert.False(t, p.Valid(), "expected %q to be invalid", p)
	}
}

func TestSaleRevenueAndFees(t *testing.T) {
	s := Sale{
		SalePrice:    decimal.RequireFromString("25.50"),
		QuantitySold: 2,
		PlatformFees: decimal.RequireFromString("3.10"),
		ShippingCost: decimal.RequireFromString("2"),
		OtherFees:    decimal.Zero,
	}

	assert.True(t, s.Revenue().Equal(decimal.RequireFromString("51")), s.Revenue().String())
	assert.True(t, s.TotalFees().Equal(decimal.RequireFromString("5.10")), s.TotalFees().String())
}

func TestMoneyEncodesAsNumber(t *testing.T) {
	data, err := json.Marshal(Item{PurchasePrice: decimal.RequireFromString("10.5")})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.IsType(t, float64(0), raw["purchase_price"])
}
