package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/go-redis/redis/v8"
)

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// Session is one logged-in browser session, keyed by its opaque token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (r *RedisRepository) SaveSession(ctx context.Context, session *Session, ttl time.Duration) error {
	return r.SetJSON(ctx, sessionKey(session.Token), session, ttl)
}

func (r *RedisRepository) SessionByToken(ctx context.Context, token string) (*Session, error) {
	var session Session
	if err := r.GetJSON(ctx, sessionKey(token), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *RedisRepository) DeleteSession(ctx context.Context, token string) error {
	return r.Del(ctx, sessionKey(token))
}

// Item detail cache for the catalog's hot path.

func itemKey(id uint) string {
	return fmt.Sprintf("item:%d", id)
}

func (r *RedisRepository) CacheItem(ctx context.Context, item *models.Item) error {
	return r.SetJSON(ctx, itemKey(item.ID), item, 30*time.Minute)
}

func (r *RedisRepository) GetItemCache(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.GetJSON(ctx, itemKey(id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *RedisRepository) InvalidateItem(ctx context.Context, id uint) error {
	return r.Del(ctx, itemKey(id))
}
