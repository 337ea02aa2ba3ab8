package models

import (
	"time"
)

// Profile holds the non-authentication data attached 1:1 to a user account.
// It anchors the user's addresses and orders.
type Profile struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Addresses []Address  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"addresses"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

type AddressKind string

const (
	AddressHome  AddressKind = "home"
	AddressWork  AddressKind = "work"
	AddressOther AddressKind = "other"
)

type Address struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID string      `gorm:"type:varchar(36);not null;index" json:"profile_id"`
	Kind      AddressKind `gorm:"type:varchar(10);not null;default:'home'" json:"kind"`
	Line1     string      `gorm:"type:varchar(50);not null" json:"line1"`
	Line2     string      `gorm:"type:varchar(50)" json:"line2,omitempty"`
	City      string      `gorm:"type:varchar(50);not null" json:"city"`
	Country   string      `gorm:"type:varchar(50);not null" json:"country"`
	ZipCode   string      `gorm:"type:varchar(8);not null" json:"zip_code"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}
