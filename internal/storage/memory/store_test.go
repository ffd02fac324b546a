package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/stockroom/internal/domain"
)

func TestSaveStockVersionConflict(t *testing.T) {
	store := NewStore()
	repo := store.Products()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.Product{ID: "p1", SKU: "MOUSE-1", StockTotal: 5}))

	a, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	b, err := repo.Get(ctx, "p1")
	require.NoError(t, err)

	// first writer wins and bumps the version
	a.StockTotal = 8
	require.NoError(t, repo.SaveStock(ctx, a))

	// second writer holds the stale version and must lose
	b.StockTotal = 9
	err = repo.SaveStock(ctx, b)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.StockTotal)
	assert.Equal(t, int64(1), got.Version)
}

func TestCreateDuplicateSKU(t *testing.T) {
	store := NewStore()
	repo := store.Products()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.Product{ID: "p1", SKU: "MOUSE-1"}))
	err := repo.Create(ctx, domain.Product{ID: "p2", SKU: "MOUSE-1"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestSetStatusRequiresExpectedFrom(t *testing.T) {
	store := NewStore()
	orders := store.Orders()
	ctx := context.Background()

	require.NoError(t, orders.Create(ctx, domain.Order{
		ID:           "o1",
		Status:       domain.StatusPending,
		ShippingType: domain.ShippingOther,
		Items:        []domain.OrderItem{{SKU: "A", Qty: 1}},
	}))

	// stale expected status loses the race
	err := orders.SetStatus(ctx, "o1", domain.StatusInPreparation, domain.StatusPrepared)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, orders.SetStatus(ctx, "o1", domain.StatusPending, domain.StatusInPreparation))
	o, err := orders.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInPreparation, o.Status)
}

func TestDispatchRequiresPrepared(t *testing.T) {
	store := NewStore()
	orders := store.Orders()
	ctx := context.Background()

	require.NoError(t, orders.Create(ctx, domain.Order{
		ID:           "o1",
		Status:       domain.StatusPending,
		ShippingType: domain.ShippingOther,
		Items:        []domain.OrderItem{{SKU: "A", Qty: 1}},
	}))

	_, err := orders.Dispatch(ctx, "o1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = orders.Dispatch(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
