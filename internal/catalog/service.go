// Package catalog owns products and kits: stock entry, CRUD and SKU
// resolution into the tagged Product/Kit/Unregistered variant.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/mbenitez/stockroom/internal/domain"
	"github.com/mbenitez/stockroom/internal/events"
	kafkax "github.com/mbenitez/stockroom/internal/kafka"
	"github.com/mbenitez/stockroom/internal/metrics"
)

// entry retries absorb a concurrent stock write racing our CAS.
const entryAttempts = 3

type Service struct {
	Products    domain.ProductRepo
	Kits        domain.KitRepo
	Producer    events.Publisher
	Metrics     *metrics.Metrics
	Log         *log.Entry
	ServiceName string
}

type EntryInput struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Qty      int             `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// Enter registers incoming stock. An existing product (case-insensitive
// SKU match) accumulates: stock_total rises by qty, reserved stays, so
// available rises by qty. An unknown SKU creates the product with the
// normalized (uppercased) SKU.
func (s *Service) Enter(ctx context.Context, in EntryInput) (domain.Product, error) {
	sku := domain.NormalizeSKU(in.SKU)
	if sku == "" {
		return domain.Product{}, domain.ErrSKURequired
	}
	if in.Qty <= 0 {
		return domain.Product{}, domain.ErrQtyInvalid
	}

	var p domain.Product
	var err error
	for attempt := 0; attempt < entryAttempts; attempt++ {
		p, err = s.enterOnce(ctx, sku, in)
		if !errors.Is(err, domain.ErrVersionConflict) {
			break
		}
	}
	if err != nil {
		return domain.Product{}, err
	}

	if err := s.Products.AppendMovement(ctx, domain.StockMovement{
		ID:          uuid.NewString(),
		ProductID:   p.ID,
		Kind:        domain.MovementEntry,
		Qty:         in.Qty,
		StockBefore: p.StockTotal - in.Qty,
		StockAfter:  p.StockTotal,
	}); err != nil {
		s.logger().WithError(err).WithField("sku", sku).Warn("append entry movement")
	}
	s.Metrics.ObserveStockEntry()
	s.publishEntered(p, in.Qty)
	return p, nil
}

func (s *Service) enterOnce(ctx context.Context, sku string, in EntryInput) (domain.Product, error) {
	p, err := s.Products.GetBySKU(ctx, sku)
	switch {
	case err == nil:
		p.StockTotal += in.Qty
		if !in.UnitCost.IsZero() {
			p.CostPrice = in.UnitCost
		}
		if err := s.Products.SaveStock(ctx, p); err != nil {
			return domain.Product{}, err
		}
		p.Version++
		return p, nil
	case errors.Is(err, domain.ErrProductNotFound):
		p = domain.Product{
			ID:         uuid.NewString(),
			SKU:        sku,
			Name:       in.Name,
			StockTotal: in.Qty,
			CostPrice:  in.UnitCost,
		}
		if p.Name == "" {
			p.Name = sku
		}
		if err := s.Products.Create(ctx, p); err != nil {
			return domain.Product{}, err
		}
		return p, nil
	default:
		return domain.Product{}, fmt.Errorf("lookup %s: %w", sku, err)
	}
}

func (s *Service) logger() *log.Entry {
	if s.Log != nil {
		return s.Log
	}
	return log.WithField("component", "catalog")
}

func (s *Service) publishEntered(p domain.Product, qty int) {
	if s.Producer == nil {
		return
	}
	ev := events.New(events.EventStockEntered, s.ServiceName, p.ID, events.StockEnteredPayload{
		ProductID: p.ID,
		SKU:       p.SKU,
		Qty:       qty,
		NewTotal:  p.StockTotal,
	})
	s.Producer.Publish(events.PartitionKey(p.ID), kafkax.MustMarshal(ev),
		events.Headers(events.EventStockEntered)...)
}

// Resolve classifies a SKU exactly once: product first, then kit, then
// unregistered. Callers switch on the returned tag.
func (s *Service) Resolve(ctx context.Context, sku string) (domain.Resolved, error) {
	norm := domain.NormalizeSKU(sku)
	if norm == "" {
		return domain.Resolved{}, domain.ErrSKURequired
	}

	p, err := s.Products.GetBySKU(ctx, norm)
	if err == nil {
		return domain.Resolved{Kind: domain.KindProduct, SKU: norm, Product: &p}, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return domain.Resolved{}, err
	}

	k, err := s.Kits.GetBySKU(ctx, norm)
	if err == nil {
		return domain.Resolved{Kind: domain.KindKit, SKU: norm, Kit: &k}, nil
	}
	if !errors.Is(err, domain.ErrKitNotFound) {
		return domain.Resolved{}, err
	}

	return domain.Resolved{Kind: domain.KindUnregistered, SKU: norm}, nil
}

// KitAvailability derives how many complete kits current available
// stock can assemble. A component pointing at a missing product is
// logged and contributes zero rather than silently vanishing.
func (s *Service) KitAvailability(ctx context.Context, kitID string) (int, error) {
	k, err := s.Kits.Get(ctx, kitID)
	if err != nil {
		return 0, err
	}

	avail := make(map[string]int, len(k.Components))
	for _, c := range k.Components {
		p, err := s.Products.Get(ctx, c.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger().WithFields(log.Fields{"kit": k.SKU, "component_sku": c.SKU}).
				Warn("kit component references missing product")
			continue
		}
		if err != nil {
			return 0, err
		}
		avail[c.ProductID] = p.Available()
	}
	return k.Availability(avail), nil
}

// ClearAllStock deletes every product. Refused unless the operator
// typed the exact confirmation phrase (case-sensitive for this gate).
func (s *Service) ClearAllStock(ctx context.Context, confirm string) (int, error) {
	if !domain.StockClearGate.Match(confirm) {
		return 0, domain.ErrConfirmationMismatch
	}
	n, err := s.Products.ClearAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger().WithField("deleted", n).Warn("bulk stock clear executed")
	return n, nil
}

// ---- kit CRUD ----

func (s *Service) ListKits(ctx context.Context) ([]domain.Kit, error) { return s.Kits.List(ctx) }

func (s *Service) GetKit(ctx context.Context, id string) (domain.Kit, error) {
	return s.Kits.Get(ctx, id)
}

func (s *Service) CreateKit(ctx context.Context, k domain.Kit) (domain.Kit, error) {
	k.SKU = domain.NormalizeSKU(k.SKU)
	if errs := k.Validate(); len(errs) > 0 {
		return domain.Kit{}, errs[0]
	}
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	for i := range k.Components {
		k.Components[i].SKU = domain.NormalizeSKU(k.Components[i].SKU)
	}
	if err := s.Kits.Create(ctx, k); err != nil {
		return domain.Kit{}, err
	}
	return k, nil
}

func (s *Service) UpdateKit(ctx context.Context, k domain.Kit) (domain.Kit, error) {
	k.SKU = domain.NormalizeSKU(k.SKU)
	if errs := k.Validate(); len(errs) > 0 {
		return domain.Kit{}, errs[0]
	}
	for i := range k.Components {
		k.Components[i].SKU = domain.NormalizeSKU(k.Components[i].SKU)
	}
	if err := s.Kits.Update(ctx, k); err != nil {
		return domain.Kit{}, err
	}
	return k, nil
}

func (s *Service) DeleteKit(ctx context.Context, id string) error { return s.Kits.Delete(ctx, id) }

// UpdateInput carries the editable product fields. Stock is never
// edited directly; it only moves through entries and orders.
type UpdateInput struct {
	Name      string          `json:"name"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

func (s *Service) UpdateProduct(ctx context.Context, sku string, in UpdateInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.ErrNameRequired
	}
	for attempt := 0; attempt < entryAttempts; attempt++ {
		p, err := s.Products.GetBySKU(ctx, sku)
		if err != nil {
			return domain.Product{}, err
		}
		p.Name = in.Name
		p.CostPrice = in.CostPrice
		p.SalePrice = in.SalePrice
		err = s.Products.SaveStock(ctx, p)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return domain.Product{}, err
		}
		p.Version++
		return p, nil
	}
	return domain.Product{}, domain.ErrVersionConflict
}

// ---- products passthrough ----

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.Products.List(ctx)
}

func (s *Service) GetProductBySKU(ctx context.Context, sku string) (domain.Product, error) {
	return s.Products.GetBySKU(ctx, sku)
}
