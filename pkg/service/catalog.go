package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sortableColumns is the allow-list for catalog sorting. Request input
// never reaches the query unless it maps through here.
var sortableColumns = map[string]string{
	"name":  "name",
	"price": "price",
	"stock": "stock",
}

type CatalogService struct {
	db          *gorm.DB
	cache       *repository.RedisRepository
	defaultSort string
	logger      *zap.Logger
}

func NewCatalogService(db *gorm.DB, cache *repository.RedisRepository, defaultSort string, logger *zap.Logger) *CatalogService {
	if _, ok := sortableColumns[defaultSort]; !ok {
		defaultSort = "name"
	}
	return &CatalogService{
		db:          db,
		cache:       cache,
		defaultSort: defaultSort,
		logger:      logger,
	}
}

// List returns all items ordered by sortKey. Unknown or empty keys fall
// back to the configured default.
func (s *CatalogService) List(ctx context.Context, sortKey string) ([]models.Item, error) {
	column, ok := sortableColumns[sortKey]
	if !ok {
		column = s.defaultSort
	}
	items, err := repository.ListItems(ctx, s.db, column)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Get returns one item by id, going through the redis cache when present.
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Item, error) {
	if s.cache != nil {
		if item, err := s.cache.GetItemCache(ctx, id); err == nil {
			return item, nil
		}
	}

	item, err := repository.FindItem(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load item %d: %w", id, err)
	}

	if s.cache != nil {
		if err := s.cache.CacheItem(ctx, item); err != nil {
			s.logger.Warn("Failed to cache item", zap.Uint("item_id", id), zap.Error(err))
		}
	}

	return item, nil
}
