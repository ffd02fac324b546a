package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/stockroom/internal/domain"
	"github.com/mbenitez/stockroom/internal/storage/memory"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore()
	return &Service{
		Repo: store.Purchases(),
		Now:  func() time.Time { return time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC) },
	}
}

func TestNumber(t *testing.T) {
	at := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "OC-20260828-153000", Number(at))

	// non-UTC times normalize
	loc := time.FixedZone("ART", -3*60*60)
	assert.Equal(t, "OC-20260828-153000", Number(time.Date(2026, 8, 28, 12, 30, 0, 0, loc)))
}

func TestConsolidate(t *testing.T) {
	lines := []domain.PurchaseLine{
		{SKU: "mouse-1", Name: "Mouse", Qty: 2, UnitCost: decimal.NewFromInt(100)},
		{SKU: "PAD-1", Name: "Pad", Qty: 1},
		{SKU: "MOUSE-1", Qty: 3},
	}

	got := Consolidate(lines)
	require.Len(t, got, 2)

	assert.Equal(t, "MOUSE-1", got[0].SKU)
	assert.Equal(t, 5, got[0].Qty)
	assert.Equal(t, "Mouse", got[0].Name)
	assert.True(t, got[0].UnitCost.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, "PAD-1", got[1].SKU)
	assert.Equal(t, 1, got[1].Qty)
}

func TestCreate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, CreateInput{
		Supplier: "  Insumos SRL  ",
		Lines: []domain.PurchaseLine{
			{SKU: "mouse-1", Name: "Mouse", Qty: 2},
			{SKU: "MOUSE-1", Qty: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "OC-20260828-153000", po.Number)
	assert.Equal(t, "Insumos SRL", po.Supplier)
	require.Len(t, po.Lines, 1)
	assert.Equal(t, "MOUSE-1", po.Lines[0].SKU)
	assert.Equal(t, 5, po.Lines[0].Qty)

	stored, err := svc.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, po.Number, stored.Number)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Supplier: "  ", Lines: []domain.PurchaseLine{{SKU: "A", Qty: 1}}})
	assert.ErrorIs(t, err, domain.ErrSupplierRequired)

	_, err = svc.Create(ctx, CreateInput{Supplier: "X"})
	assert.ErrorIs(t, err, domain.ErrLinesRequired)

	_, err = svc.Create(ctx, CreateInput{Supplier: "X", Lines: []domain.PurchaseLine{{SKU: " ", Qty: 1}}})
	assert.ErrorIs(t, err, domain.ErrSKURequired)

	_, err = svc.Create(ctx, CreateInput{Supplier: "X", Lines: []domain.PurchaseLine{{SKU: "A", Qty: 0}}})
	assert.ErrorIs(t, err, domain.ErrQtyInvalid)
}

func TestDocument(t *testing.T) {
	po := domain.PurchaseOrder{
		Number:    "OC-20260828-153000",
		Supplier:  "Insumos SRL",
		CreatedAt: time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC),
		Lines: []domain.PurchaseLine{
			{SKU: "MOUSE-1", Name: "Mouse", Qty: 5},
			{SKU: "PAD-1", Name: "Pad", Qty: 1},
		},
	}

	doc := Document(po)
	assert.Contains(t, doc, "OC-20260828-153000\n")
	assert.Contains(t, doc, "Proveedor: Insumos SRL\n")
	assert.Contains(t, doc, "Fecha: 2026-08-28\n")
	assert.Contains(t, doc, "MOUSE-1\tMouse\t5\n")
	assert.Contains(t, doc, "PAD-1\tPad\t1\n")
}
