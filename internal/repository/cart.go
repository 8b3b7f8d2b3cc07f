package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"furnit-storefront/internal/model"
)

// CartTTL bounds how long an untouched cart survives in redis.
const CartTTL = 7 * 24 * time.Hour

// CartRepository is the storage port carts are loaded from and saved to.
// Load returns an empty slice, not an error, for a user without a cart.
type CartRepository interface {
	Load(ctx context.Context, userID string) ([]model.CartItem, error)
	Save(ctx context.Context, userID string, items []model.CartItem) error
	Delete(ctx context.Context, userID string) error
}

type redisCartRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client) CartRepository {
	return &redisCartRepo{
		client: client,
		ttl:    CartTTL,
	}
}

func (r *redisCartRepo) Load(ctx context.Context, userID string) ([]model.CartItem, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []model.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return items, nil
}

func (r *redisCartRepo) Save(ctx context.Context, userID string, items []model.CartItem) error {
	if len(items) == 0 {
		return r.Delete(ctx, userID)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *redisCartRepo) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

type memoryCartRepo struct {
	mu    sync.RWMutex
	carts map[string][]model.CartItem
}

func NewMemoryCartRepository() CartRepository {
	return &memoryCartRepo{carts: make(map[string][]model.CartItem)}
}

func (r *memoryCartRepo) Load(_ context.Context, userID string) ([]model.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.CartItem, len(r.carts[userID]))
	copy(items, r.carts[userID])
	return items, nil
}

func (r *memoryCartRepo) Save(_ context.Context, userID string, items []model.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(items) == 0 {
		delete(r.carts, userID)
		return nil
	}
	stored := make([]model.CartItem, len(items))
	copy(stored, items)
	r.carts[userID] = stored
	return nil
}

func (r *memoryCartRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
