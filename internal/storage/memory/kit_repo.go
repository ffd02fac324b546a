package memory

import (
	"context"
	"sort"
	"time"

	"github.com/mbenitez/stockroom/internal/domain"
)

type kitRepo struct{ s *Store }

func (r *kitRepo) List(ctx context.Context) ([]domain.Kit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Kit, 0, len(r.s.kits))
	for _, k := range r.s.kits {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *kitRepo) Get(ctx context.Context, id string) (domain.Kit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	k, ok := r.s.kits[id]
	if !ok {
		return domain.Kit{}, domain.ErrKitNotFound
	}
	return k, nil
}

func (r *kitRepo) GetBySKU(ctx context.Context, sku string) (domain.Kit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := domain.NormalizeSKU(sku)
	for _, k := range r.s.kits {
		if k.SKU == want {
			return k, nil
		}
	}
	return domain.Kit{}, domain.ErrKitNotFound
}

func (r *kitRepo) Create(ctx context.Context, k domain.Kit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.kits[k.ID]; exists {
		return domain.ErrAlreadyExists
	}
	for _, existing := range r.s.kits {
		if existing.SKU == k.SKU {
			return domain.ErrAlreadyExists
		}
	}
	now := time.Now().UTC()
	k.CreatedAt, k.UpdatedAt = now, now
	r.s.kits[k.ID] = k
	return nil
}

func (r *kitRepo) Update(ctx context.Context, k domain.Kit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.kits[k.ID]
	if !ok {
		return domain.ErrKitNotFound
	}
	k.CreatedAt = current.CreatedAt
	k.UpdatedAt = time.Now().UTC()
	r.s.kits[k.ID] = k
	return nil
}

// Delete removes the kit only; product stock is untouched.
func (r *kitRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.kits[id]; !ok {
		return domain.ErrKitNotFound
	}
	delete(r.s.kits, id)
	return nil
}
