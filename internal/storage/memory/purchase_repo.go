package memory

import (
	"context"
	"sort"

	"github.com/mbenitez/stockroom/internal/domain"
)

type purchaseRepo struct{ s *Store }

func (r *purchaseRepo) List(ctx context.Context) ([]domain.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.PurchaseOrder, 0, len(r.s.purchases))
	for _, po := range r.s.purchases {
		out = append(out, po)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *purchaseRepo) Get(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	po, ok := r.s.purchases[id]
	if !ok {
		return domain.PurchaseOrder{}, domain.ErrPurchaseOrderNotFound
	}
	return po, nil
}

func (r *purchaseRepo) Create(ctx context.Context, po domain.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.purchases[po.ID]; exists {
		return domain.ErrAlreadyExists
	}
	r.s.purchases[po.ID] = po
	return nil
}
