package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stock-keeping record. Available stock is derived, never
// stored: keeping total and reserved as the only two columns removes
// drift between mutually-redundant fields.
type Product struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	StockTotal    int             `json:"stock_total"`
	StockReserved int             `json:"stock_reserved"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	// Version guards stock writes: every mutation is a compare-and-swap
	// against the version read, bumped on success.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available is stock_total - stock_reserved, floored at zero.
func (p Product) Available() int {
	if a := p.StockTotal - p.StockReserved; a > 0 {
		return a
	}
	return 0
}

// NormalizeSKU is the canonical SKU form: trimmed, uppercased.
// All SKU matching is case-insensitive; storage keeps the normalized form.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// MovementKind tags a stock movement audit row.
type MovementKind string

const (
	MovementEntry    MovementKind = "ENTRY"
	MovementReserve  MovementKind = "RESERVE"
	MovementDispatch MovementKind = "DISPATCH"
	MovementClear    MovementKind = "CLEAR"
)

// StockMovement records one stock change on a product, with the totals
// before and after so the history is auditable without replay.
type StockMovement struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"product_id"`
	Kind        MovementKind `json:"kind"`
	Qty         int          `json:"qty"`
	StockBefore int          `json:"stock_before"`
	StockAfter  int          `json:"stock_after"`
	// ReferenceID points at the order or entry that caused the movement.
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
