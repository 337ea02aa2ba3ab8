package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(120);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:1" json:"stock"`
	Description string          `gorm:"type:varchar(430)" json:"description"`
	Picture     string          `gorm:"type:varchar(255)" json:"picture"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

func (i *Item) InStock() bool {
	return i.Stock > 0
}

// ImageURL returns the static path the frontend serves item pictures from.
func (i *Item) ImageURL() string {
	if i.Picture == "" {
		return ""
	}
	return fmt.Sprintf("/static/items/%s", i.Picture)
}
