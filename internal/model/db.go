package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `gorm:"primaryKey;size:64;not null" json:"id"`
	Name      string          `gorm:"size:128;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image     string          `gorm:"size:512" json:"image"`
	Category  string          `gorm:"size:64;index;not null" json:"category"`
	CreatedAt time.Time       `json:"-"`
}

func (p *Product) ToCartItem() CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Quantity:  1,
	}
}

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusFailed  OutboxStatus = "FAILED"
	OutboxStatusDead    OutboxStatus = "DEAD"
)

const OutboxKindOrderConfirmation = "order-confirmation"

// OutboxMessage is a notification intent written alongside the order it belongs to.
type OutboxMessage struct {
	ID            string       `gorm:"primaryKey;size:36;not null"`
	Kind          string       `gorm:"size:32;index;not null"`
	AggregateID   string       `gorm:"size:36;index;not null"` // order id
	Payload       []byte       `gorm:"not null"`
	Status        OutboxStatus `gorm:"size:16;index;not null"`
	Attempts      int          `gorm:"not null;default:0"`
	NextAttemptAt time.Time    `gorm:"index;not null"`
	LastError     string       `gorm:"size:1024"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
