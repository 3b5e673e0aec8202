package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_cart/storefront/internal/checkout"
)

const DefaultSessionTTL = 2 * time.Hour

// RedisSessionStore keeps checkout sessions as JSON documents. Writes are
// optimistic: Save only succeeds when nobody saved the session since it was
// read.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) Create(ctx context.Context, s *checkout.Session) error {
	s.Version = 1
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	ok, err := r.client.SetNX(ctx, sessionKey(s.ID), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: session %s already exists", checkout.ErrSessionConflict, s.ID)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, checkout.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var s checkout.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *checkout.Session) error {
	key := sessionKey(s.ID)
	expected := s.Version

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return checkout.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get failed: %w", err)
		}
		var stored struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("unmarshal session failed: %w", err)
		}
		if stored.Version != expected {
			return checkout.ErrSessionConflict
		}

		s.Version = expected + 1
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal session failed: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = checkout.ErrSessionConflict
	}
	if err != nil {
		s.Version = expected
		return err
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("checkout:session:%s", id)
}
