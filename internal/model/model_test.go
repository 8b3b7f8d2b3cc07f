package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusProcessing, OrderStatusProcessing, false},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatus("lost"), OrderStatusShipped, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestDeliveryFee_Threshold(t *testing.T) {
	assert.True(t, DeliveryFee(decimal.NewFromInt(999)).Equal(FlatDeliveryFee))
	assert.True(t, DeliveryFee(decimal.NewFromInt(1000)).Equal(FlatDeliveryFee), "threshold itself still pays")
	assert.True(t, DeliveryFee(decimal.RequireFromString("1000.01")).IsZero())
}

func TestComputeTotals(t *testing.T) {
	items := []CartItem{
		{ProductID: "nordic-floor-lamp", Price: decimal.NewFromInt(320), Quantity: 2},
		{ProductID: "oak-side-table", Price: decimal.RequireFromString("149.50"), Quantity: 1},
	}

	totals := ComputeTotals(items)

	assert.Equal(t, "789.5", totals.Subtotal.String())
	assert.True(t, totals.DeliveryFee.Equal(FlatDeliveryFee))
	assert.Equal(t, "839.5", totals.Total.String())

	empty := ComputeTotals(nil)
	assert.True(t, empty.Subtotal.IsZero())
	assert.True(t, empty.Total.Equal(FlatDeliveryFee))
}

func TestResetToken_Expired(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tok := &ResetToken{ExpiresAt: now}

	assert.False(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(time.Nanosecond)))
}

func TestPaymentMethod_Label(t *testing.T) {
	assert.Equal(t, "Mobile Money", PaymentMethodMobileMoney.Label())
	assert.Equal(t, "Bank Transfer", PaymentMethodBankTransfer.Label())
	assert.False(t, PaymentMethod("cash").Valid())
}
