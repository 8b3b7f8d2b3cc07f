package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnit-storefront/internal/repository"
)

func newTestCartService(t *testing.T) CartService {
	t.Helper()
	db := setupTestDB(t)
	products := repository.NewProductRepository(db)
	require.NoError(t, products.Seed(context.Background()))
	return NewCartService(repository.NewMemoryCartRepository(), products)
}

func TestCartService_AddPricesFromCatalog(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "nordic-floor-lamp")
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "user-1", "nordic-floor-lamp")
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Count)
	assert.True(t, decimal.NewFromInt(640).Equal(view.Subtotal))
	assert.True(t, decimal.NewFromInt(50).Equal(view.DeliveryFee))
	assert.True(t, decimal.NewFromInt(690).Equal(view.Total))

	_, err = svc.AddItem(ctx, "user-1", "no-such-product")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCartService_QuantityAndRemoval(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)

	view, err := svc.UpdateQuantity(ctx, "user-1", "soft-boucle-sofa", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Count, "quantity floor is one")

	view, err = svc.UpdateQuantity(ctx, "user-1", "soft-boucle-sofa", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)
	assert.True(t, view.DeliveryFee.IsZero())

	_, err = svc.UpdateQuantity(ctx, "user-1", "nordic-floor-lamp", 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	view, err = svc.RemoveItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.RemoveItem(ctx, "user-1", "soft-boucle-sofa")
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_CartsArePerUser(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)

	other, err := svc.Get(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	require.NoError(t, svc.Clear(ctx, "user-1"))
	items, err := svc.ForUser("user-1").Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_RemoveOrderedKeepsLaterAdds(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)
	ordered, err := svc.ForUser("user-1").Items(ctx)
	require.NoError(t, err)

	// a second sofa and a lamp land while the order is being placed
	_, err = svc.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", "nordic-floor-lamp")
	require.NoError(t, err)

	require.NoError(t, svc.ForUser("user-1").RemoveOrdered(ctx, ordered))

	view, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 1, view.Items[0].Quantity)
}
