package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseCancelled = "cancelled"
)

type Purchase struct {
	ID          uuid.UUID      `gorm:"type:varchar(36);primaryKey"                       json:"id"`
	UserID      uuid.UUID      `gorm:"type:varchar(36);index;not null"                   json:"userId"`
	Items       []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount float64        `gorm:"not null"                                          json:"totalAmount"`
	Status      string         `gorm:"type:varchar(16);not null"                         json:"status"`
	CreatedAt   time.Time      `gorm:"index"                                             json:"createdAt"`
	UpdatedAt   time.Time      `                                                         json:"updatedAt"`
}

type PurchaseItem struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"        json:"-"`
	PurchaseID uuid.UUID `gorm:"type:varchar(36);index;not null" json:"-"`
	GameID     uuid.UUID `gorm:"type:varchar(36);not null"       json:"gameId"`
	Title      string    `gorm:"not null"                        json:"title"`
	Price      float64   `gorm:"not null"                        json:"price"`
	Quantity   int       `gorm:"not null;check:quantity > 0"     json:"quantity"`
}

func (p *Purchase) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PurchasePending
	}
	return nil
}
