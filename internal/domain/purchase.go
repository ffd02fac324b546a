package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder (OC) is a restock request to a supplier. Lines are
// consolidated by SKU at build time; the number is derived from the
// creation timestamp.
type PurchaseOrder struct {
	ID        string         `json:"id"`
	Number    string         `json:"number"`
	Supplier  string         `json:"supplier"`
	Lines     []PurchaseLine `json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
}

type PurchaseLine struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Qty      int             `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}
