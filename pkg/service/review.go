package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var maxRating = decimal.NewFromInt(5)

type ReviewService struct {
	db     *gorm.DB
	audit  AuditStore
	logger *zap.Logger
}

func NewReviewService(db *gorm.DB, audit AuditStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{db: db, audit: audit, logger: logger}
}

// Submit records the user's review of an item. Ratings outside [0, 5] fail
// validation; bounds are inclusive. A resubmission overwrites the existing
// review instead of adding a row.
func (s *ReviewService) Submit(ctx context.Context, userID string, itemID uint, rating decimal.Decimal, text string) error {
	if rating.IsNegative() || rating.GreaterThan(maxRating) {
		return validationError("rating", fmt.Sprintf("must be between 0 and 5, got %s", rating))
	}

	if _, err := repository.FindItem(ctx, s.db, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
		}
		return fmt.Errorf("failed to load item %d: %w", itemID, err)
	}

	review := &models.Review{
		UserID: userID,
		ItemID: itemID,
		Rating: rating,
		Text:   text,
	}
	if err := repository.UpsertReview(ctx, s.db, review); err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}

	s.logger.Info("Review submitted",
		zap.String("user_id", userID),
		zap.Uint("item_id", itemID),
		zap.String("rating", rating.String()))

	if s.audit != nil {
		go func() {
			err := s.audit.CreateAuditLog(context.Background(), &repository.AuditLog{
				Action:   "submit_review",
				UserID:   userID,
				EntityID: fmt.Sprintf("%d", itemID),
				Data:     bson.M{"rating": rating.String()},
			})
			if err != nil {
				s.logger.Warn("Failed to write audit log",
					zap.String("action", "submit_review"), zap.Error(err))
			}
		}()
	}

	return nil
}

// ReviewsFor lists an item's reviews. Unknown item fails with ErrNotFound.
func (s *ReviewService) ReviewsFor(ctx context.Context, itemID uint) ([]models.Review, error) {
	if _, err := repository.FindItem(ctx, s.db, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}

	reviews, err := repository.ReviewsForItem(ctx, s.db, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return reviews, nil
}
