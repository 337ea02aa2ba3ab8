package repository

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertCartLine adds one unit of an item to a user's cart. The increment
// runs inside the upsert so concurrent adds both land instead of one
// overwriting the other's read-modify-write.
func UpsertCartLine(ctx context.Context, db *gorm.DB, userID string, itemID uint) error {
	line := models.CartLine{UserID: userID, ItemID: itemID, Quantity: 1}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", 1),
		}),
	}).Create(&line).Error
}

// DecrementCartLine removes one unit of an item from a user's cart and
// deletes the line when its quantity reaches zero. Returns
// gorm.ErrRecordNotFound when no line exists for (user, item).
func DecrementCartLine(ctx context.Context, db *gorm.DB, userID string, itemID uint) error {
	res := db.WithContext(ctx).Model(&models.CartLine{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND quantity <= 0", userID, itemID).
		Delete(&models.CartLine{}).Error
}

// CartLinesFor returns the user's cart lines with item data, ordered by
// item name for stable presentation.
func CartLinesFor(ctx context.Context, db *gorm.DB, userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := db.WithContext(ctx).
		Preload("Item").
		Joins("JOIN items ON items.id = cart_lines.item_id").
		Where("cart_lines.user_id = ?", userID).
		Order("items.name").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// DeleteCartLines removes exactly the given lines by primary key. Checkout
// clears the cart through this so a line added concurrently after the
// snapshot read is not swept away with it.
func DeleteCartLines(ctx context.Context, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.CartLine{}).Error
}
