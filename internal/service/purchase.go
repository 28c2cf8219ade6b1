package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/queue"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

type PurchaseService struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Receipts queue.Publisher
	Now      func() time.Time
}

type ItemInput struct {
	GameID   string  `json:"gameId"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (s *PurchaseService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Total sums price times quantity, rounded to cents.
func Total(items []models.PurchaseItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

func buildItems(in []ItemInput) ([]models.PurchaseItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("at least one item is required: %w", ErrValidation)
	}
	items := make([]models.PurchaseItem, 0, len(in))
	for i, it := range in {
		id, err := uuid.Parse(strings.TrimSpace(it.GameID))
		if err != nil || id == uuid.Nil {
			return nil, fmt.Errorf("item %d: invalid gameId: %w", i, ErrValidation)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("item %d: quantity must be at least 1: %w", i, ErrValidation)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("item %d: price cannot be negative: %w", i, ErrValidation)
		}
		items = append(items, models.PurchaseItem{
			GameID:   id,
			Title:    strings.TrimSpace(it.Title),
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return items, nil
}

// Create records a pending purchase for userID. The total is always
// computed here; clients cannot supply it.
func (s *PurchaseService) Create(ctx context.Context, userID uuid.UUID, in []ItemInput) (*models.Purchase, error) {
	l := logging.FromContext(ctx).With("svc", "purchase.create", "user_id", userID.String())

	items, err := buildItems(in)
	if err != nil {
		return nil, err
	}

	p := &models.Purchase{
		UserID:      userID,
		Items:       items,
		TotalAmount: Total(items).InexactFloat64(),
		Status:      models.PurchasePending,
	}
	if err := s.Repo.CreatePurchase(ctx, p); err != nil {
		l.Error("purchase_create_failed", "status", 500, "error", err)
		return nil, err
	}

	now := s.now()
	publish(ctx, s.Events, events.TopicPurchases, p.ID.String(), events.NewPurchaseEvent(p, now))
	if s.Receipts != nil {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.Receipts.PublishReceipt(rctx, queue.NewReceipt(p, now)); err != nil {
			l.Warn("receipt_enqueue_failed", "purchase_id", p.ID.String(), "error", err)
		}
	}
	return p, nil
}

// List returns the purchases of userParam, or of the caller when it is empty.
// Only admins may look at another user's purchases.
func (s *PurchaseService) List(ctx context.Context, callerID uuid.UUID, isAdmin bool, userParam string) ([]models.Purchase, error) {
	target := callerID
	if userParam = strings.TrimSpace(userParam); userParam != "" {
		id, err := uuid.Parse(userParam)
		if err != nil {
			return nil, fmt.Errorf("invalid userId: %w", ErrValidation)
		}
		target = id
	}
	if target != callerID && !isAdmin {
		return nil, fmt.Errorf("cannot list purchases of another user: %w", ErrForbidden)
	}
	return s.Repo.ListPurchasesByUser(ctx, target)
}
