// Package cart keeps the cart invariants: one line per product and a quantity floor of one.
package cart

import (
	"github.com/shopspring/decimal"

	"furnit-storefront/internal/model"
)

type Cart struct {
	items []model.CartItem
}

// New copies items, merging duplicate product lines and lifting quantities below one.
func New(items []model.CartItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i := c.index(item.ProductID); i >= 0 {
			c.items[i].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

// Add puts one unit of product in the cart.
func (c *Cart) Add(product *model.Product) {
	if i := c.index(product.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, product.ToCartItem())
}

// UpdateQuantity applies delta; a change that would leave the line below one is ignored.
func (c *Cart) UpdateQuantity(productID string, delta int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	next := c.items[i].Quantity + delta
	if next < 1 {
		return false
	}
	c.items[i].Quantity = next
	return true
}

func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Deduct takes ordered quantities out of the cart; a line that runs out is dropped.
// Units added after the order was taken stay in the cart.
func (c *Cart) Deduct(ordered []model.CartItem) {
	for _, item := range ordered {
		i := c.index(item.ProductID)
		if i < 0 {
			continue
		}
		if c.items[i].Quantity <= item.Quantity {
			c.items = append(c.items[:i], c.items[i+1:]...)
			continue
		}
		c.items[i].Quantity -= item.Quantity
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Count is the number of units, not lines.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Items() []model.CartItem {
	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Subtotal() decimal.Decimal {
	return c.Totals().Subtotal
}

func (c *Cart) Totals() model.Totals {
	return model.ComputeTotals(c.items)
}

func (c *Cart) index(productID string) int {
	for i, item := range c.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
