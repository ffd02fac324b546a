package domain

import "github.com/shopspring/decimal"

// ResolvedKind tags what a SKU resolved to. Resolution happens once at
// lookup time; callers switch on the tag instead of re-probing stores.
type ResolvedKind string

const (
	KindProduct      ResolvedKind = "product"
	KindKit          ResolvedKind = "kit"
	KindUnregistered ResolvedKind = "unregistered"
)

// Resolved is the outcome of resolving a SKU against the catalog.
// Exactly one of Product/Kit is set, matching Kind; for unregistered
// SKUs both are nil and only SKU carries information.
type Resolved struct {
	Kind    ResolvedKind
	SKU     string
	Product *Product
	Kit     *Kit
}

// ExpandSale turns a sale of qty units of a resolved SKU into order
// items. A kit expands to one line per component (component qty × sale
// qty); a product to a single line; an unregistered SKU to a
// placeholder line with no product reference and zero price.
func ExpandSale(r Resolved, qty int) []OrderItem {
	switch r.Kind {
	case KindKit:
		items := make([]OrderItem, 0, len(r.Kit.Components))
		for _, c := range r.Kit.Components {
			items = append(items, OrderItem{
				ProductID: c.ProductID,
				SKU:       c.SKU,
				Qty:       c.Qty * qty,
			})
		}
		return items
	case KindProduct:
		return []OrderItem{{
			ProductID: r.Product.ID,
			SKU:       r.Product.SKU,
			Qty:       qty,
			UnitPrice: r.Product.SalePrice,
		}}
	default:
		return []OrderItem{{
			SKU:       r.SKU,
			Qty:       qty,
			UnitPrice: decimal.Zero,
		}}
	}
}
