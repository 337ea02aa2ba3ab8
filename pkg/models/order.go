package models

import (
	"time"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"

	// StatusInvalid is the defensive default for unrecognized stored values.
	StatusInvalid OrderStatus = "invalid"
)

// ParseOrderStatus maps a stored status string onto the enum, falling back
// to StatusInvalid for anything unrecognized.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case StatusProcessing, StatusShipped, StatusDelivered:
		return OrderStatus(s)
	default:
		return StatusInvalid
	}
}

func (s OrderStatus) Label() string {
	switch s {
	case StatusProcessing:
		return "Processing"
	case StatusShipped:
		return "Shipped"
	case StatusDelivered:
		return "Delivered"
	default:
		return "Invalid"
	}
}

// Order is the immutable snapshot of a cart taken at checkout. Only the
// status column changes after creation, and only through fulfillment.
type Order struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProfileID string      `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Status    string      `gorm:"type:varchar(20);not null;default:'processing'" json:"status"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderLine struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID  string `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ItemID   uint   `gorm:"not null" json:"item_id"`
	Quantity int    `gorm:"not null" json:"quantity"`
	Item     Item   `gorm:"foreignKey:ItemID" json:"item"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}
