package repository

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

func CreateUser(ctx context.Context, db *gorm.DB, user *models.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func FindUserByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateProfile(ctx context.Context, db *gorm.DB, profile *models.Profile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func SaveProfile(ctx context.Context, db *gorm.DB, profile *models.Profile) error {
	return db.WithContext(ctx).Save(profile).Error
}

// ProfileForUser returns the user's profile with its addresses.
func ProfileForUser(ctx context.Context, db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := db.WithContext(ctx).
		Preload("Addresses").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func CreateAddress(ctx context.Context, db *gorm.DB, address *models.Address) error {
	return db.WithContext(ctx).Create(address).Error
}
