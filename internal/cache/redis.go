package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	deliveryOptionsKey = "catalog:delivery_options"
	versionTTL         = 24 * time.Hour
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.getJSON(ctx, cacheKey(userID), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Version returns the user's invalidation counter, 0 when never invalidated.
func (r RedisCache) Version(ctx context.Context, userID string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

// Set stores the cart only while the user's version still equals version.
// A Delete between the caller's read and this write yields ErrStaleFill.
func (r RedisCache) Set(ctx context.Context, userID string, cart *domain.Cart, version int64) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	vkey := versionKey(userID)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get failed: %w", err)
		}
		if current != version {
			return ErrStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(userID), payload, r.ttl())
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleFill
	}
	return err
}

// Delete drops the cached cart and bumps the version in one transaction so
// no fill started before it can land after it.
func (r RedisCache) Delete(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Expire(ctx, versionKey(userID), versionTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) GetOptions(ctx context.Context) ([]domain.DeliveryOption, error) {
	var options []domain.DeliveryOption
	if err := r.getJSON(ctx, deliveryOptionsKey, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (r RedisCache) SetOptions(ctx context.Context, options []domain.DeliveryOption) error {
	return r.setJSON(ctx, deliveryOptionsKey, options)
}

// InvalidateOptions drops the cached delivery options after a seed.
func (r RedisCache) InvalidateOptions(ctx context.Context) error {
	if err := r.client.Del(ctx, deliveryOptionsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) getJSON(ctx context.Context, key string, v any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r RedisCache) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// ttl adds up to five minutes of jitter to the base expiry.
func (r RedisCache) ttl() time.Duration {
	return r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func versionKey(userID string) string {
	return fmt.Sprintf("cart:%s:version", userID)
}
