package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mbenitez/stockroom/internal/domain"
)

type orderRepo struct{ s *Store }

func (r *orderRepo) List(ctx context.Context) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *orderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (r *orderRepo) Create(ctx context.Context, o domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.orders[o.ID]; exists {
		return domain.ErrAlreadyExists
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	for _, it := range o.Items {
		if it.ProductID == "" {
			continue
		}
		p, ok := r.s.products[it.ProductID]
		if !ok {
			continue
		}
		before := p.StockTotal
		p.StockReserved += it.Qty
		p.Version++
		p.UpdatedAt = now
		r.s.products[p.ID] = p
		r.s.movements = append(r.s.movements, domain.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			Kind:        domain.MovementReserve,
			Qty:         it.Qty,
			StockBefore: before,
			StockAfter:  before,
			ReferenceID: o.ID,
			CreatedAt:   now,
		})
	}

	r.s.orders[o.ID] = o
	return nil
}

func (r *orderRepo) SetStatus(ctx context.Context, id string, from, to domain.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.s.orders[id] = o
	return nil
}

func (r *orderRepo) Dispatch(ctx context.Context, id string) (domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	switch o.Status {
	case domain.StatusPrepared:
	case domain.StatusDispatched:
		return domain.Order{}, domain.ErrOrderFinal
	default:
		return domain.Order{}, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	for _, it := range o.Items {
		if it.ProductID == "" {
			continue
		}
		p, ok := r.s.products[it.ProductID]
		if !ok {
			continue
		}
		before := p.StockTotal
		p.StockTotal = max(0, p.StockTotal-it.Qty)
		p.StockReserved = max(0, p.StockReserved-it.Qty)
		p.Version++
		p.UpdatedAt = now
		r.s.products[p.ID] = p
		r.s.movements = append(r.s.movements, domain.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			Kind:        domain.MovementDispatch,
			Qty:         it.Qty,
			StockBefore: before,
			StockAfter:  p.StockTotal,
			ReferenceID: o.ID,
			CreatedAt:   now,
		})
	}

	o.Status = domain.StatusDispatched
	o.UpdatedAt = now
	r.s.orders[id] = o
	return o, nil
}
