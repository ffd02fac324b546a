package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/stockroom/internal/domain"
	"github.com/mbenitez/stockroom/internal/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return &Service{Products: store.Products(), Kits: store.Kits()}, store
}

func TestEnterCreatesProduct(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	p, err := svc.Enter(ctx, EntryInput{SKU: "mouse-1", Name: "Mouse", Qty: 5, UnitCost: decimal.NewFromInt(100)})
	require.NoError(t, err)

	assert.Equal(t, "MOUSE-1", p.SKU)
	assert.Equal(t, "Mouse", p.Name)
	assert.Equal(t, 5, p.StockTotal)
	assert.Equal(t, 0, p.StockReserved)
	assert.Equal(t, 5, p.Available())

	moves := store.Movements()
	require.Len(t, moves, 1)
	assert.Equal(t, domain.MovementEntry, moves[0].Kind)
	assert.Equal(t, 0, moves[0].StockBefore)
	assert.Equal(t, 5, moves[0].StockAfter)
}

func TestEnterAccumulatesExisting(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Name: "Mouse", Qty: 5})
	require.NoError(t, err)

	// same SKU, different casing: must hit the same product
	p, err := svc.Enter(ctx, EntryInput{SKU: "mouse-1", Qty: 3})
	require.NoError(t, err)

	assert.Equal(t, 8, p.StockTotal)
	assert.Equal(t, 0, p.StockReserved)
	assert.Equal(t, 8, p.Available())
	assert.Equal(t, "Mouse", p.Name)

	all, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnterLeavesReservedUntouched(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Qty: 10})
	require.NoError(t, err)

	p, err := store.Products().GetBySKU(ctx, "MOUSE-1")
	require.NoError(t, err)
	p.StockReserved = 4
	require.NoError(t, store.Products().SaveStock(ctx, p))

	got, err := svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Qty: 6})
	require.NoError(t, err)
	assert.Equal(t, 16, got.StockTotal)
	assert.Equal(t, 4, got.StockReserved)
	assert.Equal(t, 12, got.Available())
}

func TestEnterDefaultsNameToSKU(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Enter(context.Background(), EntryInput{SKU: "pad-9", Qty: 1})
	require.NoError(t, err)
	assert.Equal(t, "PAD-9", p.Name)
}

func TestEnterValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Enter(ctx, EntryInput{SKU: "  ", Qty: 1})
	assert.ErrorIs(t, err, domain.ErrSKURequired)

	_, err = svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Qty: 0})
	assert.ErrorIs(t, err, domain.ErrQtyInvalid)

	_, err = svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Qty: -2})
	assert.ErrorIs(t, err, domain.ErrQtyInvalid)
}

func TestResolve(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Qty: 1})
	require.NoError(t, err)
	_, err = svc.CreateKit(ctx, domain.Kit{
		SKU:  "combo-1",
		Name: "Combo",
		Components: []domain.KitComponent{
			{ProductID: "p1", SKU: "MOUSE-1", Qty: 1},
		},
	})
	require.NoError(t, err)

	r, err := svc.Resolve(ctx, "mouse-1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindProduct, r.Kind)
	require.NotNil(t, r.Product)
	assert.Equal(t, "MOUSE-1", r.Product.SKU)

	r, err = svc.Resolve(ctx, "COMBO-1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindKit, r.Kind)
	require.NotNil(t, r.Kit)

	r, err = svc.Resolve(ctx, "ghost-1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindUnregistered, r.Kind)
	assert.Equal(t, "GHOST-1", r.SKU)
	assert.Nil(t, r.Product)
	assert.Nil(t, r.Kit)

	_, err = svc.Resolve(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrSKURequired)
}

func TestKitAvailability(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	a, err := svc.Enter(ctx, EntryInput{SKU: "A", Qty: 10})
	require.NoError(t, err)
	b, err := svc.Enter(ctx, EntryInput{SKU: "B", Qty: 9})
	require.NoError(t, err)

	kit, err := svc.CreateKit(ctx, domain.Kit{
		SKU:  "COMBO-1",
		Name: "Combo",
		Components: []domain.KitComponent{
			{ProductID: a.ID, SKU: a.SKU, Qty: 2},
			{ProductID: b.ID, SKU: b.SKU, Qty: 3},
		},
	})
	require.NoError(t, err)

	// min(10/2, 9/3) = 3
	n, err := svc.KitAvailability(ctx, kit.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// reserved stock does not assemble kits: A available drops to 4
	pa, err := store.Products().GetBySKU(ctx, "A")
	require.NoError(t, err)
	pa.StockReserved = 6
	require.NoError(t, store.Products().SaveStock(ctx, pa))

	n, err = svc.KitAvailability(ctx, kit.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestKitAvailabilityMissingComponent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	kit, err := svc.CreateKit(ctx, domain.Kit{
		SKU:  "COMBO-2",
		Name: "Combo",
		Components: []domain.KitComponent{
			{ProductID: "deleted-product", SKU: "GONE-1", Qty: 1},
		},
	})
	require.NoError(t, err)

	n, err := svc.KitAvailability(ctx, kit.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestClearAllStockGate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Qty: 5})
	require.NoError(t, err)

	_, err = svc.ClearAllStock(ctx, "eliminar stock")
	assert.ErrorIs(t, err, domain.ErrConfirmationMismatch)
	_, err = svc.ClearAllStock(ctx, "")
	assert.ErrorIs(t, err, domain.ErrConfirmationMismatch)

	all, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err := svc.ClearAllStock(ctx, "ELIMINAR STOCK")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Enter(ctx, EntryInput{SKU: "MOUSE-1", Qty: 5})
	require.NoError(t, err)

	p, err := svc.UpdateProduct(ctx, "mouse-1", UpdateInput{
		Name:      "Gaming Mouse",
		CostPrice: decimal.NewFromInt(800),
		SalePrice: decimal.NewFromInt(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, "Gaming Mouse", p.Name)
	assert.True(t, p.SalePrice.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 5, p.StockTotal)

	_, err = svc.UpdateProduct(ctx, "MOUSE-1", UpdateInput{})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = svc.UpdateProduct(ctx, "GHOST-1", UpdateInput{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestKitCRUDNormalizesSKUs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	k, err := svc.CreateKit(ctx, domain.Kit{
		SKU:  " combo-1 ",
		Name: "Combo",
		Components: []domain.KitComponent{
			{ProductID: "p1", SKU: "mouse-1", Qty: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "COMBO-1", k.SKU)
	assert.Equal(t, "MOUSE-1", k.Components[0].SKU)

	_, err = svc.CreateKit(ctx, domain.Kit{SKU: "X", Name: "no components"})
	assert.ErrorIs(t, err, domain.ErrComponentsRequired)
}
