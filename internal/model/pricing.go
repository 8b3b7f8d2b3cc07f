package model

import "github.com/shopspring/decimal"

var (
	FreeDeliveryThreshold = decimal.NewFromInt(1000)
	FlatDeliveryFee       = decimal.NewFromInt(50)
)

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// DeliveryFee is free strictly above the threshold, flat otherwise.
func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return FlatDeliveryFee
}

func ComputeTotals(items []CartItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	fee := DeliveryFee(subtotal)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}
