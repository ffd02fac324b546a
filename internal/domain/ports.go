package domain

import "context"

// ProductRepo owns product records and their stock fields.
type ProductRepo interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	// GetBySKU matches the normalized (uppercased) SKU.
	GetBySKU(ctx context.Context, sku string) (Product, error)
	Create(ctx context.Context, p Product) error
	// SaveStock writes the mutable product fields (name, stock, prices)
	// with a compare-and-swap on p.Version; ErrVersionConflict on a lost race.
	SaveStock(ctx context.Context, p Product) error
	AppendMovement(ctx context.Context, m StockMovement) error
	// ClearAll removes every product record and returns the count.
	// Callers must have passed the confirmation gate first.
	ClearAll(ctx context.Context) (int, error)
}

// OrderRepo owns sales orders. Multi-row effects (reservation on
// create, stock decrement on dispatch) are atomic inside the repo.
type OrderRepo interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	// Create persists the order with its items and reserves stock for
	// every item that references a product, in one transaction.
	Create(ctx context.Context, o Order) error
	// SetStatus moves id from `from` to `to` only if the stored status
	// still equals `from`; otherwise ErrInvalidTransition.
	SetStatus(ctx context.Context, id string, from, to Status) error
	// Dispatch atomically decrements stock_total and stock_reserved for
	// every line item (floored at zero), records the movements and marks
	// the order dispatched. All-or-nothing.
	Dispatch(ctx context.Context, id string) (Order, error)
}

type KitRepo interface {
	List(ctx context.Context) ([]Kit, error)
	Get(ctx context.Context, id string) (Kit, error)
	GetBySKU(ctx context.Context, sku string) (Kit, error)
	Create(ctx context.Context, k Kit) error
	Update(ctx context.Context, k Kit) error
	Delete(ctx context.Context, id string) error
}

type PurchaseOrderRepo interface {
	List(ctx context.Context) ([]PurchaseOrder, error)
	Get(ctx context.Context, id string) (PurchaseOrder, error)
	Create(ctx context.Context, po PurchaseOrder) error
}
