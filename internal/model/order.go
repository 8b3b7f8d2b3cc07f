package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether fulfillment may move an order from s to next.
// Statuses only move forward; cancellation is allowed from any non-terminal status.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	return ok && to > from
}

type TimeBand string

const (
	TimeBandMorning   TimeBand = "morning"
	TimeBandAfternoon TimeBand = "afternoon"
	TimeBandEvening   TimeBand = "evening"
)

func (b TimeBand) Valid() bool {
	switch b {
	case TimeBandMorning, TimeBandAfternoon, TimeBandEvening:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodMobileMoney  PaymentMethod = "momo"
	PaymentMethodBankTransfer PaymentMethod = "bank"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodMobileMoney || m == PaymentMethodBankTransfer
}

// Label is the human readable name used in emails.
func (m PaymentMethod) Label() string {
	if m == PaymentMethodMobileMoney {
		return "Mobile Money"
	}
	return "Bank Transfer"
}

type Order struct {
	ID                  string          `gorm:"primaryKey;size:36;not null" json:"id"`
	UserID              string          `gorm:"size:64;index;not null" json:"user_id"`
	CustomerName        string          `gorm:"size:128;not null" json:"customer_name"`
	CustomerEmail       string          `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone       string          `gorm:"size:16;not null" json:"customer_phone"`
	DeliveryAddress     string          `gorm:"size:255;not null" json:"delivery_address"`
	DeliveryCity        string          `gorm:"size:64;not null" json:"delivery_city"`
	DeliveryDistrict    string          `gorm:"size:64;not null" json:"delivery_district"`
	DeliverySector      string          `gorm:"size:64;not null" json:"delivery_sector"`
	DeliveryDate        time.Time       `gorm:"not null" json:"delivery_date"`
	DeliveryTime        TimeBand        `gorm:"size:16;not null" json:"delivery_time"`
	SpecialInstructions *string         `gorm:"size:1024" json:"special_instructions"`
	PaymentMethod       PaymentMethod   `gorm:"size:8;not null" json:"payment_method"`
	PaymentDetails      string          `gorm:"size:128;not null" json:"payment_details"`
	OrderNotes          *string         `gorm:"size:1024" json:"order_notes"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DeliveryFee         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"delivery_fee"`
	Total               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status              OrderStatus     `gorm:"size:16;index;not null" json:"status"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   string          `gorm:"size:36;index;not null" json:"-"`
	ProductID string          `gorm:"size:64;not null" json:"id"`
	Name      string          `gorm:"size:128;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image     string          `gorm:"size:512" json:"image"`
	Category  string          `gorm:"size:64" json:"category"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
