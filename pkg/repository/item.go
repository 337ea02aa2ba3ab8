package repository

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

func FindItem(ctx context.Context, db *gorm.DB, id uint) (*models.Item, error) {
	var item models.Item
	if err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns all items ordered by the given column. Callers must
// validate orderBy against the sortable-column allow-list; it is spliced
// into the query verbatim.
func ListItems(ctx context.Context, db *gorm.DB, orderBy string) ([]models.Item, error) {
	var items []models.Item
	if err := db.WithContext(ctx).Order(orderBy).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
