package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Review holds one user's rating of one item. The composite unique index
// backs the at-most-one-review-per-user-per-item rule; resubmission updates
// the row in place.
type Review struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_user_item" json:"user_id"`
	ItemID    uint            `gorm:"not null;uniqueIndex:idx_review_user_item" json:"item_id"`
	Rating    decimal.Decimal `gorm:"type:decimal(2,1);not null" json:"rating"`
	Text      string          `gorm:"type:varchar(500)" json:"text,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}
