package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a sales order moving through the fulfillment lifecycle.
// Items are fixed once the order is placed; only Status changes.
type Order struct {
	ID           string       `json:"id"`
	Status       Status       `json:"status"`
	ShippingType ShippingType `json:"shipping_type"`
	Items        []OrderItem  `json:"items"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// OrderItem references a product by id plus a denormalized SKU copy.
// ProductID is empty for unregistered-product sales: the order still
// carries a placeholder line with zero price.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id,omitempty"`
	SKU       string          `json:"sku"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Validate checks the invariants of a newly placed order.
func (o *Order) Validate() []error {
	var errs []error
	if !o.ShippingType.Valid() {
		errs = append(errs, ErrShippingInvalid)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, it := range o.Items {
		if it.Qty <= 0 {
			errs = append(errs, ErrQtyInvalid)
			break
		}
	}
	return errs
}
