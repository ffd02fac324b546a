package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mbenitez/stockroom/internal/domain"
)

type productRepo struct{ s *Store }

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *productRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.skuIndex[domain.NormalizeSKU(sku)]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return r.s.products[id], nil
}

func (r *productRepo) Create(ctx context.Context, p domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; exists {
		return domain.ErrAlreadyExists
	}
	if _, exists := r.s.skuIndex[p.SKU]; exists {
		return domain.ErrAlreadyExists
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = p
	r.s.skuIndex[p.SKU] = p.ID
	return nil
}

func (r *productRepo) SaveStock(ctx context.Context, p domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if current.Version != p.Version {
		return fmt.Errorf("save stock %s: %w", p.SKU, domain.ErrVersionConflict)
	}
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	p.CreatedAt = current.CreatedAt
	r.s.products[p.ID] = p
	return nil
}

func (r *productRepo) AppendMovement(ctx context.Context, m domain.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.s.movements = append(r.s.movements, m)
	return nil
}

func (r *productRepo) ClearAll(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := len(r.s.products)
	r.s.products = make(map[string]domain.Product)
	r.s.skuIndex = make(map[string]string)
	return n, nil
}
