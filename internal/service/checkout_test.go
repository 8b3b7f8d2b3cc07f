package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnit-storefront/internal/checkout"
	"furnit-storefront/internal/logger"
	"furnit-storefront/internal/model"
	"furnit-storefront/internal/repository"
)

type recordingNotifier struct {
	mu     sync.Mutex
	placed []string
}

func (n *recordingNotifier) OrderPlaced(order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order.ID)
}

type checkoutFixture struct {
	svc      CheckoutService
	carts    CartService
	orders   OrderService
	notifier *recordingNotifier
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	db := setupTestDB(t)
	products := repository.NewProductRepository(db)
	require.NoError(t, products.Seed(context.Background()))

	f := &checkoutFixture{
		carts:    NewCartService(repository.NewMemoryCartRepository(), products),
		orders:   NewOrderService(db, repository.NewOrderRepository(db), repository.NewOutboxRepository(db), false),
		notifier: &recordingNotifier{},
	}
	f.svc = NewCheckoutService(f.carts, f.orders, f.notifier, 5*time.Second, logger.Discard())
	return f
}

func ptr[T any](v T) *T {
	return &v
}

func deliveryIn(days int) string {
	return time.Now().AddDate(0, 0, days).Format(checkout.DateLayout)
}

func TestCheckoutService_StartNeedsCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Start(context.Background(), "user-1")
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestCheckoutService_FullFlow(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)

	view, err := f.svc.Start(ctx, "user-1")
	require.NoError(t, err)
	id := view.ID
	assert.Equal(t, 1, view.Step)
	assert.True(t, view.Totals.DeliveryFee.IsZero())

	view, err = f.svc.Advance(ctx, "user-1", id)
	var verr *checkout.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, checkout.MsgFullNameRequired, view.Error)

	steps := []checkout.Update{
		{FullName: ptr("Jean Uwase"), Email: ptr("jean@test.com"), Phone: ptr("0788123456")},
		{Address: ptr("KG 11 Ave, House 4"), District: ptr("Kicukiro"), Sector: ptr("Kanombe"), DeliveryDate: ptr(deliveryIn(2))},
		{PaymentMethod: ptr(model.PaymentMethodBankTransfer), BankAccount: ptr("1234567890")},
	}
	for _, u := range steps {
		_, err = f.svc.Update(ctx, "user-1", id, u)
		require.NoError(t, err)
		_, err = f.svc.Advance(ctx, "user-1", id)
		require.NoError(t, err)
	}

	view, err = f.svc.Submit(ctx, "user-1", id)
	require.NoError(t, err)
	assert.True(t, view.Success)
	assert.NotEmpty(t, view.OrderID)
	assert.True(t, view.Totals.Total.Equal(view.Totals.Subtotal))

	cart, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	orders, err := f.orders.ListOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, view.OrderID, orders[0].ID)
	assert.Equal(t, "Bank of Kigali - 1234567890", orders[0].PaymentDetails)
	assert.Equal(t, []string{view.OrderID}, f.notifier.placed)
}

func TestCheckoutService_SessionsAreOwned(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)
	view, err := f.svc.Start(ctx, "user-1")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "user-2", view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Get(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCheckoutService_SessionExpires(t *testing.T) {
	f := newCheckoutFixture(t)
	clock := newClock()
	f.svc.(*checkoutServiceImpl).now = clock.Now
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)
	view, err := f.svc.Start(ctx, "user-1")
	require.NoError(t, err)

	clock.Advance(SessionTTL + time.Minute)

	_, err = f.svc.Get(ctx, "user-1", view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCheckoutService_CheckFieldAndRetreat(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "user-1", "soft-boucle-sofa")
	require.NoError(t, err)
	view, err := f.svc.Start(ctx, "user-1")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "user-1", view.ID, checkout.Update{FullName: ptr("Jean")})
	require.NoError(t, err)
	view, err = f.svc.CheckField(ctx, "user-1", view.ID, checkout.FieldFullName)
	require.NoError(t, err)
	assert.NotEmpty(t, view.FieldErrors[checkout.FieldFullName])

	_, err = f.svc.Retreat(ctx, "user-1", view.ID)
	assert.ErrorIs(t, err, checkout.ErrInvalidTransition)

	_, err = f.svc.Update(ctx, "user-1", view.ID, checkout.Update{District: ptr("Musanze")})
	assert.ErrorIs(t, err, checkout.ErrUnknownDistrict)
}
