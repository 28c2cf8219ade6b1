package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/models"
)

// CreatePurchase inserts the purchase and its items in one statement group.
func (r *GormRepo) CreatePurchase(ctx context.Context, p *models.Purchase) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) ListPurchasesByUser(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	purchases := make([]models.Purchase, 0)
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}
