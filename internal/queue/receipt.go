// Package queue moves purchase receipts over RabbitMQ.
package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/game_store/internal/models"
)

const PurchaseQueue = "purchase.created"

type ReceiptLine struct {
	GameID   uuid.UUID `json:"gameId"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	Subtotal float64   `json:"subtotal"`
}

// Receipt is a snapshot of a purchase at checkout time.
type Receipt struct {
	PurchaseID  uuid.UUID     `json:"purchaseId"`
	UserID      uuid.UUID     `json:"userId"`
	Items       []ReceiptLine `json:"items"`
	TotalAmount float64       `json:"totalAmount"`
	Status      string        `json:"status"`
	CapturedAt  time.Time     `json:"capturedAt"`
}

func NewReceipt(p *models.Purchase, now time.Time) Receipt {
	lines := make([]ReceiptLine, 0, len(p.Items))
	for _, it := range p.Items {
		sub := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		lines = append(lines, ReceiptLine{
			GameID:   it.GameID,
			Title:    it.Title,
			Price:    it.Price,
			Quantity: it.Quantity,
			Subtotal: sub.InexactFloat64(),
		})
	}
	return Receipt{
		PurchaseID:  p.ID,
		UserID:      p.UserID,
		Items:       lines,
		TotalAmount: p.TotalAmount,
		Status:      p.Status,
		CapturedAt:  now.UTC(),
	}
}

// Line renders the receipt as one human-readable log line.
func (r Receipt) Line() string {
	parts := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		parts = append(parts, fmt.Sprintf("%q x%d @ %.2f", it.Title, it.Quantity, it.Price))
	}
	return fmt.Sprintf("[%s] Purchase %s | purchase_id=%s | user_id=%s | total=%.2f | items=[%s]\n",
		r.CapturedAt.Format(time.RFC3339), r.Status, r.PurchaseID, r.UserID, r.TotalAmount, strings.Join(parts, ", "))
}
