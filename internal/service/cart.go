package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/game_store/internal/cart"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

type CartService struct {
	Store     cart.Store
	Catalog   *CatalogService
	Purchases *PurchaseService
}

func UserCartKey(userID string) string { return "user:" + userID }

func AnonCartKey(cartID string) string { return "anon:" + cartID }

// Open returns the cart owned by userID, or by the anonymous cartID when
// userID is empty. An anonymous cart is claimed from the store and folded
// into the user's cart; it goes back to its slot if the merge cannot be saved.
func (s *CartService) Open(ctx context.Context, userID, cartID string) (*cart.Container, error) {
	l := logging.FromContext(ctx).With("svc", "cart.open")

	if userID == "" {
		if cartID == "" {
			return nil, fmt.Errorf("cart owner is required: %w", ErrValidation)
		}
		return cart.Open(ctx, s.Store, AnonCartKey(cartID))
	}

	own, err := cart.Open(ctx, s.Store, UserCartKey(userID))
	if err != nil {
		return nil, err
	}
	if cartID == "" {
		return own, nil
	}

	anonKey := AnonCartKey(cartID)
	items, err := cart.Take(ctx, s.Store, anonKey)
	if err != nil {
		l.Warn("cart_merge_skipped", "reason", "cannot load anonymous cart", "error", err)
		return own, nil
	}
	if len(items) == 0 {
		return own, nil
	}
	if err := own.Merge(ctx, items); err != nil {
		if restoreErr := cart.Put(ctx, s.Store, anonKey, items); restoreErr != nil {
			l.Error("cart_restore_failed", "cart_key", anonKey, "error", restoreErr)
		}
		return nil, err
	}
	l.Info("cart_merged", "user_id", userID, "items", len(items))
	return own, nil
}

// AddGame puts one copy of an in-stock game into the cart.
func (s *CartService) AddGame(ctx context.Context, c *cart.Container, gameID uuid.UUID) error {
	g, err := s.Catalog.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if !g.InStock {
		return fmt.Errorf("game is out of stock: %w", ErrConflict)
	}
	return c.Add(ctx, *g)
}

// Checkout turns the cart into a pending purchase and empties it.
func (s *CartService) Checkout(ctx context.Context, c *cart.Container, userID uuid.UUID) (*models.Purchase, error) {
	l := logging.FromContext(ctx).With("svc", "cart.checkout", "user_id", userID.String())

	items := c.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrValidation)
	}

	in := make([]ItemInput, 0, len(items))
	for _, it := range items {
		in = append(in, ItemInput{
			GameID:   it.ID.String(),
			Title:    it.Title,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	p, err := s.Purchases.Create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := c.Clear(ctx); err != nil {
		l.Warn("cart_clear_failed", "purchase_id", p.ID.String(), "error", err)
	}
	return p, nil
}
