package fulfillment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/stockroom/internal/catalog"
	"github.com/mbenitez/stockroom/internal/domain"
	"github.com/mbenitez/stockroom/internal/storage/memory"
)

func newService(t *testing.T) (*Service, *catalog.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	cat := &catalog.Service{Products: store.Products(), Kits: store.Kits()}
	svc := &Service{
		Orders:   store.Orders(),
		Products: store.Products(),
		Resolver: cat,
	}
	return svc, cat, store
}

func enter(t *testing.T, cat *catalog.Service, sku string, qty int) domain.Product {
	t.Helper()
	p, err := cat.Enter(context.Background(), catalog.EntryInput{SKU: sku, Qty: qty})
	require.NoError(t, err)
	return p
}

func TestCreateSaleProduct(t *testing.T) {
	svc, cat, store := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 10)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "mouse-1", Qty: 4, ShippingType: domain.ShippingFlex})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.ShippingFlex, o.ShippingType)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "MOUSE-1", o.Items[0].SKU)
	assert.Equal(t, 4, o.Items[0].Qty)

	// placing the sale reserves stock; total is untouched
	p, err := store.Products().GetBySKU(ctx, "MOUSE-1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockTotal)
	assert.Equal(t, 4, p.StockReserved)
	assert.Equal(t, 6, p.Available())
}

func TestCreateSaleKitExpands(t *testing.T) {
	svc, cat, _ := newService(t)
	ctx := context.Background()
	a := enter(t, cat, "A", 20)
	b := enter(t, cat, "B", 20)

	_, err := cat.CreateKit(ctx, domain.Kit{
		SKU:  "COMBO-1",
		Name: "Combo",
		Components: []domain.KitComponent{
			{ProductID: a.ID, SKU: a.SKU, Qty: 2},
			{ProductID: b.ID, SKU: b.SKU, Qty: 1},
		},
	})
	require.NoError(t, err)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "combo-1", Qty: 3})
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "A", o.Items[0].SKU)
	assert.Equal(t, 6, o.Items[0].Qty)
	assert.Equal(t, "B", o.Items[1].SKU)
	assert.Equal(t, 3, o.Items[1].Qty)
}

func TestCreateSaleUnregisteredAccepted(t *testing.T) {
	svc, _, _ := newService(t)

	o, err := svc.CreateSale(context.Background(), SaleInput{SKU: "GHOST-1", Qty: 2})
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	assert.Empty(t, o.Items[0].ProductID)
	assert.Equal(t, "GHOST-1", o.Items[0].SKU)
	assert.True(t, o.Items[0].UnitPrice.IsZero())
}

func TestCreateSaleValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 0})
	assert.ErrorIs(t, err, domain.ErrQtyInvalid)

	_, err = svc.CreateSale(ctx, SaleInput{SKU: "  ", Qty: 1})
	assert.ErrorIs(t, err, domain.ErrSKURequired)
}

func TestAdvanceHappyPath(t *testing.T) {
	svc, cat, store := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 10)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 4})
	require.NoError(t, err)

	o, err = svc.Advance(ctx, o.ID, domain.StatusInPreparation)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInPreparation, o.Status)

	o, err = svc.Advance(ctx, o.ID, domain.StatusPrepared)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPrepared, o.Status)

	o, err = svc.Advance(ctx, o.ID, domain.StatusDispatched)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDispatched, o.Status)

	// dispatch consumed both total and reservation
	p, err := store.Products().GetBySKU(ctx, "MOUSE-1")
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockTotal)
	assert.Equal(t, 0, p.StockReserved)
}

func TestAdvanceRejectsSkipsAndBackwards(t *testing.T) {
	svc, cat, _ := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 10)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 1})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, o.ID, domain.StatusPrepared)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// jump straight to dispatch: refused because the order is not PREPARED
	_, err = svc.Advance(ctx, o.ID, domain.StatusDispatched)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Advance(ctx, o.ID, domain.StatusInPreparation)
	require.NoError(t, err)

	_, err = svc.Advance(ctx, o.ID, domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Advance(ctx, o.ID, domain.Status("SHIPPED"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAdvanceAfterDispatchIsFinal(t *testing.T) {
	svc, cat, _ := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 10)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 1})
	require.NoError(t, err)
	_, err = svc.Advance(ctx, o.ID, domain.StatusInPreparation)
	require.NoError(t, err)
	_, err = svc.Advance(ctx, o.ID, domain.StatusPrepared)
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)

	_, err = svc.Advance(ctx, o.ID, domain.StatusInPreparation)
	assert.ErrorIs(t, err, domain.ErrOrderFinal)
	_, err = svc.Dispatch(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderFinal)
}

func TestDispatchFloorsStockAtZero(t *testing.T) {
	svc, cat, store := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 3)

	// oversell: qty exceeds total
	o, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 5})
	require.NoError(t, err)
	_, err = svc.Advance(ctx, o.ID, domain.StatusInPreparation)
	require.NoError(t, err)
	_, err = svc.Advance(ctx, o.ID, domain.StatusPrepared)
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)

	p, err := store.Products().GetBySKU(ctx, "MOUSE-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockTotal)
	assert.Equal(t, 0, p.StockReserved)
}

func TestDispatchRecordsMovements(t *testing.T) {
	svc, cat, store := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 10)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 4})
	require.NoError(t, err)
	_, err = svc.Advance(ctx, o.ID, domain.StatusInPreparation)
	require.NoError(t, err)
	_, err = svc.Advance(ctx, o.ID, domain.StatusPrepared)
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)

	var kinds []domain.MovementKind
	for _, m := range store.Movements() {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []domain.MovementKind{
		domain.MovementEntry, domain.MovementReserve, domain.MovementDispatch,
	}, kinds)
}

func TestPickingListAggregates(t *testing.T) {
	svc, cat, _ := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 50)
	enter(t, cat, "PAD-1", 50)

	o1, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 2})
	require.NoError(t, err)
	o2, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 5})
	require.NoError(t, err)
	o3, err := svc.CreateSale(ctx, SaleInput{SKU: "PAD-1", Qty: 1})
	require.NoError(t, err)

	pl, err := svc.PickingList(ctx, []string{o1.ID, o2.ID, o3.ID})
	require.NoError(t, err)

	assert.Equal(t, []PickingRow{
		{SKU: "MOUSE-1", Qty: 7},
		{SKU: "PAD-1", Qty: 1},
	}, pl.Rows)
	assert.Empty(t, pl.Unresolved)
	assert.Equal(t, "MOUSE-1\t7\nPAD-1\t1\n", pl.Text())
}

func TestPickingListUnknownOrder(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.PickingList(context.Background(), []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestSufficiency(t *testing.T) {
	svc, cat, _ := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 4)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 5})
	require.NoError(t, err)

	// 4 total with 5 reserved by this sale leaves available 0 < required 5
	rep, err := svc.Sufficiency(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, rep.Fulfillable)
	require.Len(t, rep.Shortages, 1)
	assert.Equal(t, "MOUSE-1", rep.Shortages[0].SKU)
	assert.Equal(t, 5, rep.Shortages[0].Required)
}

func TestSufficiencyFulfillable(t *testing.T) {
	svc, cat, _ := newService(t)
	ctx := context.Background()
	enter(t, cat, "MOUSE-1", 10)

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "MOUSE-1", Qty: 5})
	require.NoError(t, err)

	// 10 total, 5 reserved by this sale: available 5 covers required 5
	rep, err := svc.Sufficiency(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, rep.Fulfillable)
	assert.Empty(t, rep.Shortages)
}

func TestSufficiencyUnresolvedItem(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	o, err := svc.CreateSale(ctx, SaleInput{SKU: "GHOST-1", Qty: 2})
	require.NoError(t, err)

	rep, err := svc.Sufficiency(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, rep.Fulfillable)
	assert.Equal(t, []string{"GHOST-1"}, rep.Unresolved)
}
