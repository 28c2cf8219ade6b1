// Package cart holds the shopping cart state: a list of game snapshots with
// quantities, mirrored to a key-value slot after every change.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/game_store/internal/models"
)

// Item is a game snapshot taken when it was added, plus a quantity >= 1.
type Item struct {
	models.Game
	Quantity int `json:"quantity"`
}

// Cart keeps at most one Item per game id. The zero value is an empty cart.
// It is not safe for concurrent use; Container serialises access.
type Cart struct {
	items []Item
}

func New(items ...Item) *Cart {
	c := &Cart{}
	c.Merge(items)
	return c
}

func (c *Cart) index(id uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add increments the quantity of g, appending it with quantity 1 when absent.
func (c *Cart) Add(g models.Game) {
	if i := c.index(g.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, Item{Game: g, Quantity: 1})
}

// Remove drops the entry for id. Removing an absent id does nothing.
func (c *Cart) Remove(id uuid.UUID) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// SetQuantity replaces the quantity for id; n <= 0 removes the entry.
func (c *Cart) SetQuantity(id uuid.UUID, n int) {
	if n <= 0 {
		c.Remove(id)
		return
	}
	if i := c.index(id); i >= 0 {
		c.items[i].Quantity = n
	}
}

func (c *Cart) Clear() { c.items = nil }

// Merge folds items into the cart, adding quantities for games already present.
func (c *Cart) Merge(items []Item) {
	for _, it := range items {
		if it.Quantity <= 0 || it.ID == uuid.Nil {
			continue
		}
		if i := c.index(it.ID); i >= 0 {
			c.items[i].Quantity += it.Quantity
			continue
		}
		c.items = append(c.items, it)
	}
}

func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of price x quantity, rounded to cents.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

func (c *Cart) clone() *Cart {
	return &Cart{items: c.Items()}
}
