// Package purchasing builds and stores purchase orders (OC) sent to
// suppliers for restock.
package purchasing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mbenitez/stockroom/internal/domain"
)

type Service struct {
	Repo domain.PurchaseOrderRepo
	Log  *log.Entry
	// Now is injectable for deterministic order numbers in tests.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type CreateInput struct {
	Supplier string                `json:"supplier"`
	Lines    []domain.PurchaseLine `json:"lines"`
}

// Create consolidates the requested lines by SKU (repeated SKUs are
// summed), derives the order number from the creation timestamp and
// persists the document.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.PurchaseOrder, error) {
	if strings.TrimSpace(in.Supplier) == "" {
		return domain.PurchaseOrder{}, domain.ErrSupplierRequired
	}
	if len(in.Lines) == 0 {
		return domain.PurchaseOrder{}, domain.ErrLinesRequired
	}
	for _, l := range in.Lines {
		if domain.NormalizeSKU(l.SKU) == "" {
			return domain.PurchaseOrder{}, domain.ErrSKURequired
		}
		if l.Qty <= 0 {
			return domain.PurchaseOrder{}, domain.ErrQtyInvalid
		}
	}

	now := s.now()
	po := domain.PurchaseOrder{
		ID:        uuid.NewString(),
		Number:    Number(now),
		Supplier:  strings.TrimSpace(in.Supplier),
		Lines:     Consolidate(in.Lines),
		CreatedAt: now,
	}
	if err := s.Repo.Create(ctx, po); err != nil {
		return domain.PurchaseOrder{}, err
	}
	return po, nil
}

func (s *Service) List(ctx context.Context) ([]domain.PurchaseOrder, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	return s.Repo.Get(ctx, id)
}

// Number derives the OC number from the creation timestamp.
func Number(t time.Time) string {
	return "OC-" + t.UTC().Format("20060102-150405")
}

// Consolidate merges lines with the same (normalized) SKU, summing
// quantities; the last non-empty name and non-zero cost win. Output is
// SKU-ascending for a deterministic document.
func Consolidate(lines []domain.PurchaseLine) []domain.PurchaseLine {
	bySKU := map[string]domain.PurchaseLine{}
	for _, l := range lines {
		sku := domain.NormalizeSKU(l.SKU)
		agg := bySKU[sku]
		agg.SKU = sku
		agg.Qty += l.Qty
		if l.Name != "" {
			agg.Name = l.Name
		}
		if !l.UnitCost.IsZero() {
			agg.UnitCost = l.UnitCost
		}
		bySKU[sku] = agg
	}

	out := make([]domain.PurchaseLine, 0, len(bySKU))
	for _, l := range bySKU {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// Document renders the purchase order content as plain text. Layout is
// not load-bearing, only the content: number, supplier, lines.
func Document(po domain.PurchaseOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", po.Number)
	fmt.Fprintf(&b, "Proveedor: %s\n", po.Supplier)
	fmt.Fprintf(&b, "Fecha: %s\n\n", po.CreatedAt.UTC().Format("2006-01-02"))
	for _, l := range po.Lines {
		fmt.Fprintf(&b, "%s\t%s\t%d\n", l.SKU, l.Name, l.Qty)
	}
	return b.String()
}
