package repository

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

// CreateOrder persists an order together with its lines.
func CreateOrder(ctx context.Context, db *gorm.DB, order *models.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

// OrdersForProfile returns a profile's orders newest first, each with its
// lines and their item data.
func OrdersForProfile(ctx context.Context, db *gorm.DB, profileID string) ([]models.Order, error) {
	var orders []models.Order
	err := db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Item").
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
