package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/game_store/internal/models"
)

const (
	TopicGames     = "game_events"
	TopicUsers     = "user_events"
	TopicPurchases = "purchase_events"
)

const (
	GameCreated     = "game_created"
	GameUpdated     = "game_updated"
	GameDeleted     = "game_deleted"
	UserRegistered  = "user_registered"
	PurchaseCreated = "purchase_created"
)

// GameEvent carries the full game for created/updated and only the id for deleted.
type GameEvent struct {
	Type       string       `json:"type"`
	GameID     uuid.UUID    `json:"gameId"`
	Game       *models.Game `json:"game,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurredAt"`
}

type PurchaseEvent struct {
	Type        string    `json:"type"`
	PurchaseID  uuid.UUID `json:"purchaseId"`
	UserID      uuid.UUID `json:"userId"`
	TotalAmount float64   `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewGameEvent(typ string, g *models.Game, now time.Time) GameEvent {
	ev := GameEvent{Type: typ, GameID: g.ID, OccurredAt: now.UTC()}
	if typ != GameDeleted {
		ev.Game = g
	}
	return ev
}

func NewPurchaseEvent(p *models.Purchase, now time.Time) PurchaseEvent {
	n := 0
	for _, it := range p.Items {
		n += it.Quantity
	}
	return PurchaseEvent{
		Type:        PurchaseCreated,
		PurchaseID:  p.ID,
		UserID:      p.UserID,
		TotalAmount: p.TotalAmount,
		ItemCount:   n,
		Status:      p.Status,
		OccurredAt:  now.UTC(),
	}
}
