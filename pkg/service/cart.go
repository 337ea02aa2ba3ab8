package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CartService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCartService(db *gorm.DB, logger *zap.Logger) *CartService {
	return &CartService{db: db, logger: logger}
}

// CartEntry is one cart line projected for presentation.
type CartEntry struct {
	Item     models.Item     `json:"item"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Entries []CartEntry     `json:"entries"`
	Total   decimal.Decimal `json:"total"`
}

// Add puts one unit of the item into the user's cart. Repeated adds
// accumulate quantity on the single (user, item) line.
func (s *CartService) Add(ctx context.Context, userID string, itemID uint) error {
	if _, err := repository.FindItem(ctx, s.db, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
		}
		return fmt.Errorf("failed to load item %d: %w", itemID, err)
	}

	if err := repository.UpsertCartLine(ctx, s.db, userID, itemID); err != nil {
		return fmt.Errorf("failed to add item %d to cart: %w", itemID, err)
	}

	s.logger.Info("Item added to cart",
		zap.String("user_id", userID),
		zap.Uint("item_id", itemID))
	return nil
}

// RemoveOne takes one unit of the item out of the user's cart, deleting the
// line when the last unit goes.
func (s *CartService) RemoveOne(ctx context.Context, userID string, itemID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.DecrementCartLine(ctx, tx, userID, itemID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no cart line for item %d: %w", itemID, ErrNotFound)
		}
		return fmt.Errorf("failed to remove item %d from cart: %w", itemID, err)
	}

	s.logger.Info("Item removed from cart",
		zap.String("user_id", userID),
		zap.Uint("item_id", itemID))
	return nil
}

// View returns the user's cart with per-line subtotals and the grand total.
// An empty cart is a success with no entries.
func (s *CartService) View(ctx context.Context, userID string) (*CartView, error) {
	lines, err := repository.CartLinesFor(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	view := &CartView{
		Entries: make([]CartEntry, 0, len(lines)),
		Total:   decimal.Zero,
	}
	for _, line := range lines {
		subtotal := line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Entries = append(view.Entries, CartEntry{
			Item:     line.Item,
			Quantity: line.Quantity,
			Subtotal: subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}

	return view, nil
}
