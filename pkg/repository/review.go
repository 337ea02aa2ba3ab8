package repository

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertReview creates the user's review of an item, or overwrites the
// rating and text of the existing one. The conflict target is the
// (user, item) unique index, so a resubmission never adds a second row.
func UpsertReview(ctx context.Context, db *gorm.DB, review *models.Review) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     review.Rating,
			"text":       review.Text,
			"updated_at": time.Now(),
		}),
	}).Create(review).Error
}

func ReviewsForItem(ctx context.Context, db *gorm.DB, itemID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
