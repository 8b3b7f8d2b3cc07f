package model

import "github.com/shopspring/decimal"

type CartItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) ToOrderItem() OrderItem {
	return OrderItem{
		ProductID: i.ProductID,
		Name:      i.Name,
		Price:     i.Price,
		Image:     i.Image,
		Category:  i.Category,
		Quantity:  i.Quantity,
	}
}
