package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

// View is the JSON shape of a cart returned to clients.
type View struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

// Container binds a Cart to one slot of a Store. Every change is written
// to the slot before it becomes visible; a failed write leaves the cart as it was.
type Container struct {
	mu    sync.Mutex
	store Store
	key   string
	cart  *Cart
}

// Open rehydrates the cart stored under key. Undecodable state is logged
// and replaced by an empty cart.
func Open(ctx context.Context, store Store, key string) (*Container, error) {
	raw, err := store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}

	return &Container{store: store, key: key, cart: New(decode(ctx, key, raw)...)}, nil
}

// Take removes the slot under key and returns the items it held.
func Take(ctx context.Context, store Store, key string) ([]Item, error) {
	raw, err := store.Take(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("take cart %s: %w", key, err)
	}
	return New(decode(ctx, key, raw)...).Items(), nil
}

// Put writes items to the slot under key, replacing what was there.
func Put(ctx context.Context, store Store, key string, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}

func decode(ctx context.Context, key string, raw []byte) []Item {
	if len(raw) == 0 {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		logging.FromContext(ctx).Warn("cart_rehydrate_failed", "cart_key", key, "error", err)
		return nil
	}
	return items
}

func (c *Container) Key() string { return c.key }

func (c *Container) mutate(ctx context.Context, fn func(*Cart)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cart.clone()
	fn(next)

	data, err := json.Marshal(next.Items())
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.store.Save(ctx, c.key, data); err != nil {
		return fmt.Errorf("save cart %s: %w", c.key, err)
	}
	c.cart = next
	return nil
}

func (c *Container) Add(ctx context.Context, g models.Game) error {
	return c.mutate(ctx, func(ct *Cart) { ct.Add(g) })
}

func (c *Container) Remove(ctx context.Context, id uuid.UUID) error {
	return c.mutate(ctx, func(ct *Cart) { ct.Remove(id) })
}

func (c *Container) SetQuantity(ctx context.Context, id uuid.UUID, n int) error {
	return c.mutate(ctx, func(ct *Cart) { ct.SetQuantity(id, n) })
}

func (c *Container) Clear(ctx context.Context) error {
	return c.mutate(ctx, func(ct *Cart) { ct.Clear() })
}

func (c *Container) Merge(ctx context.Context, items []Item) error {
	return c.mutate(ctx, func(ct *Cart) { ct.Merge(items) })
}

func (c *Container) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Items()
}

func (c *Container) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Items:      c.cart.Items(),
		TotalItems: c.cart.TotalItems(),
		TotalPrice: c.cart.TotalPrice().InexactFloat64(),
	}
}
