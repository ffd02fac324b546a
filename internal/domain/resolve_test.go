package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSaleProduct(t *testing.T) {
	p := Product{ID: "p1", SKU: "MOUSE-1", SalePrice: decimal.NewFromInt(1500)}
	items := ExpandSale(Resolved{Kind: KindProduct, SKU: "MOUSE-1", Product: &p}, 3)

	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "MOUSE-1", items[0].SKU)
	assert.Equal(t, 3, items[0].Qty)
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(1500)))
}

func TestExpandSaleKit(t *testing.T) {
	k := Kit{
		ID:  "k1",
		SKU: "COMBO-1",
		Components: []KitComponent{
			{ProductID: "p1", SKU: "MOUSE-1", Qty: 2},
			{ProductID: "p2", SKU: "PAD-1", Qty: 1},
		},
	}
	items := ExpandSale(Resolved{Kind: KindKit, SKU: "COMBO-1", Kit: &k}, 3)

	require.Len(t, items, 2)
	assert.Equal(t, "MOUSE-1", items[0].SKU)
	assert.Equal(t, 6, items[0].Qty)
	assert.Equal(t, "PAD-1", items[1].SKU)
	assert.Equal(t, 3, items[1].Qty)
}

func TestExpandSaleUnregistered(t *testing.T) {
	items := ExpandSale(Resolved{Kind: KindUnregistered, SKU: "GHOST-1"}, 2)

	require.Len(t, items, 1)
	assert.Empty(t, items[0].ProductID)
	assert.Equal(t, "GHOST-1", items[0].SKU)
	assert.Equal(t, 2, items[0].Qty)
	assert.True(t, items[0].UnitPrice.IsZero())
}
