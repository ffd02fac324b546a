// Package memory holds map-backed repositories for tests and local
// development. One mutex covers all entities so cross-entity
// operations (reserve on create, dispatch) stay consistent, mirroring
// what a database transaction gives the postgres implementation.
package memory

import (
	"sync"

	"github.com/mbenitez/stockroom/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	skuIndex  map[string]string // normalized SKU -> product id
	orders    map[string]domain.Order
	kits      map[string]domain.Kit
	purchases map[string]domain.PurchaseOrder
	movements []domain.StockMovement
}

func NewStore() *Store {
	return &Store{
		products:  make(map[string]domain.Product),
		skuIndex:  make(map[string]string),
		orders:    make(map[string]domain.Order),
		kits:      make(map[string]domain.Kit),
		purchases: make(map[string]domain.PurchaseOrder),
	}
}

func (s *Store) Products() domain.ProductRepo        { return &productRepo{s} }
func (s *Store) Orders() domain.OrderRepo            { return &orderRepo{s} }
func (s *Store) Kits() domain.KitRepo                { return &kitRepo{s} }
func (s *Store) Purchases() domain.PurchaseOrderRepo { return &purchaseRepo{s} }

// Movements returns a copy of the audit trail, oldest first.
func (s *Store) Movements() []domain.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}
