package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService struct {
	db     *gorm.DB
	audit  AuditStore
	logger *zap.Logger
}

func NewOrderService(db *gorm.DB, audit AuditStore, logger *zap.Logger) *OrderService {
	return &OrderService{db: db, audit: audit, logger: logger}
}

type OrderLineView struct {
	Item     models.Item     `json:"item"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type OrderView struct {
	ID          string             `json:"id"`
	Status      models.OrderStatus `json:"status"`
	StatusLabel string             `json:"status_label"`
	CreatedAt   time.Time          `json:"created_at"`
	Lines       []OrderLineView    `json:"lines"`
	Total       decimal.Decimal    `json:"total"`
}

// Checkout snapshots the user's cart into a new order and clears the cart,
// all inside one transaction. A cart with no lines fails with ErrEmptyCart.
func (s *OrderService) Checkout(ctx context.Context, userID string) (*OrderView, error) {
	var view *OrderView

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := repository.CartLinesFor(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		profile, err := repository.ProfileForUser(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
			}
			return fmt.Errorf("failed to load profile: %w", err)
		}

		order := &models.Order{
			ID:        uuid.NewString(),
			ProfileID: profile.ID,
			Status:    string(models.StatusProcessing),
			CreatedAt: time.Now(),
		}
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			order.Lines = append(order.Lines, models.OrderLine{
				ItemID:   line.ItemID,
				Quantity: line.Quantity,
			})
			lineIDs = append(lineIDs, line.ID)
		}

		if err := repository.CreateOrder(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		// Clear only the lines the order was cut from; an add that lands
		// after the snapshot read stays in the cart.
		if err := repository.DeleteCartLines(ctx, tx, lineIDs); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		view = orderViewFromLines(order, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout complete",
		zap.String("user_id", userID),
		zap.String("order_id", view.ID),
		zap.Int("line_count", len(view.Lines)),
		zap.String("total", view.Total.String()))

	if s.audit != nil {
		go func() {
			err := s.audit.CreateAuditLog(context.Background(), &repository.AuditLog{
				Action:   "checkout",
				UserID:   userID,
				EntityID: view.ID,
				Data:     bson.M{"total": view.Total.String(), "line_count": len(view.Lines)},
			})
			if err != nil {
				s.logger.Warn("Failed to write audit log",
					zap.String("action", "checkout"), zap.Error(err))
			}
		}()
	}

	return view, nil
}

// OrdersFor returns the user's order history, newest first, with per-line
// subtotals and totals.
func (s *OrderService) OrdersFor(ctx context.Context, userID string) ([]OrderView, error) {
	profile, err := repository.ProfileForUser(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	orders, err := repository.OrdersForProfile(ctx, s.db, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, *orderView(&orders[i]))
	}
	return views, nil
}

// orderViewFromLines builds the checkout receipt from the cart lines the
// order was cut from, so the totals shown come from the same transaction.
func orderViewFromLines(order *models.Order, lines []models.CartLine) *OrderView {
	status := models.ParseOrderStatus(order.Status)
	view := &OrderView{
		ID:          order.ID,
		Status:      status,
		StatusLabel: status.Label(),
		CreatedAt:   order.CreatedAt,
		Lines:       make([]OrderLineView, 0, len(lines)),
		Total:       decimal.Zero,
	}
	for _, line := range lines {
		subtotal := line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Lines = append(view.Lines, OrderLineView{
			Item:     line.Item,
			Quantity: line.Quantity,
			Subtotal: subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}
	return view
}

func orderView(order *models.Order) *OrderView {
	status := models.ParseOrderStatus(order.Status)
	view := &OrderView{
		ID:          order.ID,
		Status:      status,
		StatusLabel: status.Label(),
		CreatedAt:   order.CreatedAt,
		Lines:       make([]OrderLineView, 0, len(order.Lines)),
		Total:       decimal.Zero,
	}
	for _, line := range order.Lines {
		subtotal := line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Lines = append(view.Lines, OrderLineView{
			Item:     line.Item,
			Quantity: line.Quantity,
			Subtotal: subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}
	return view
}
