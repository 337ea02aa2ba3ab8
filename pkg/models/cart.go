package models

import (
	"time"
)

// CartLine is one (user, item) row of a cart. The composite unique index is
// what lets add-to-cart run as an atomic upsert; a quantity below 1 never
// persists because the line is deleted when it would drop to zero.
type CartLine struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_item" json:"user_id"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"item_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Item      Item      `gorm:"foreignKey:ItemID" json:"item"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}
