package email

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnit-storefront/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("http://localhost:5173/", fixedNow)
	require.NoError(t, err)
	return r
}

func testOrder() *model.Order {
	notes := "Leave at the gate"
	return &model.Order{
		ID:               "ord-1",
		CustomerName:     "Jean Uwase",
		CustomerEmail:    "jean@test.com",
		DeliveryAddress:  "KG 11 Ave, House 4",
		DeliveryCity:     "Kigali",
		DeliveryDistrict: "Gasabo",
		DeliverySector:   "Remera",
		DeliveryDate:     time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		DeliveryTime:     model.TimeBandMorning,
		PaymentMethod:    model.PaymentMethodMobileMoney,
		OrderNotes:       &notes,
		Subtotal:         decimal.NewFromInt(1200),
		DeliveryFee:      decimal.Zero,
		Total:            decimal.NewFromInt(1200),
		Items: []model.OrderItem{
			{ProductID: "sofa-1", Name: "Velvet <Sofa>", Price: decimal.NewFromInt(600), Quantity: 2},
		},
		CreatedAt: fixedNow(),
	}
}

func TestRenderer_OrderConfirmation(t *testing.T) {
	msg, err := newTestRenderer(t).OrderConfirmation(testOrder())
	require.NoError(t, err)

	assert.Equal(t, "jean@test.com", msg.To)
	assert.Equal(t, "Order Confirmation - #ord-1", msg.Subject)

	assert.Contains(t, msg.HTML, "Hi Jean Uwase,")
	assert.Contains(t, msg.HTML, "Velvet &lt;Sofa&gt; x 2")
	assert.Contains(t, msg.HTML, "$1200.00")
	assert.Contains(t, msg.HTML, "FREE")
	assert.Contains(t, msg.HTML, "Mobile Money")
	assert.Contains(t, msg.HTML, "Leave at the gate")
	assert.Contains(t, msg.HTML, "http://localhost:5173/dashboard")
	assert.Contains(t, msg.HTML, "&copy; 2026 Furnit")

	assert.Contains(t, msg.Text, "Velvet <Sofa> x 2 - $1200.00")
	assert.Contains(t, msg.Text, "Delivery Date: 5/3/2026 (morning)")
	assert.Contains(t, msg.Text, "Payment Method: Mobile Money")
}

func TestRenderer_OrderConfirmationFlatFeeBankTransfer(t *testing.T) {
	order := testOrder()
	order.Subtotal = decimal.NewFromInt(1000)
	order.DeliveryFee = decimal.NewFromInt(50)
	order.Total = decimal.NewFromInt(1050)
	order.PaymentMethod = model.PaymentMethodBankTransfer
	order.OrderNotes = nil

	msg, err := newTestRenderer(t).OrderConfirmation(order)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "Delivery: $50.00")
	assert.Contains(t, msg.Text, "Total: $1050.00")
	assert.Contains(t, msg.Text, "Bank Transfer")
	assert.NotContains(t, msg.Text, "Notes:")
}

func TestRenderer_PasswordReset(t *testing.T) {
	r := newTestRenderer(t)

	msg, err := r.PasswordReset("exists@test.com", "abc123")
	require.NoError(t, err)

	assert.Equal(t, "Reset Your Password - Furnit", msg.Subject)
	assert.Equal(t, "http://localhost:5173/reset-password?token=abc123", r.ResetLink("abc123"))
	assert.Contains(t, msg.HTML, "http://localhost:5173/reset-password?token=abc123")
	assert.Contains(t, msg.Text, "http://localhost:5173/reset-password?token=abc123")
	assert.Contains(t, msg.Text, "expire in 1 hour")
}

func TestRenderer_AccountNotices(t *testing.T) {
	r := newTestRenderer(t)

	welcome, err := r.Welcome("new@test.com", "Aline")
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Furnit!", welcome.Subject)
	assert.Contains(t, welcome.HTML, "Welcome, Aline!")
	assert.Contains(t, welcome.Text, "Free Shipping on orders over $1000.00")
	assert.Contains(t, welcome.Text, "http://localhost:5173/products")

	changed, err := r.PasswordChanged("new@test.com", "Aline")
	require.NoError(t, err)
	assert.Equal(t, "Password Changed Successfully - Furnit", changed.Subject)
	assert.Contains(t, changed.Text, "http://localhost:5173/login")
	assert.Contains(t, changed.HTML, SupportAddress)
}
