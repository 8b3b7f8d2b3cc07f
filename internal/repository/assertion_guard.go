package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AssertionGuard remembers consumed assertion ids until they would have expired anyway.
type AssertionGuard interface {
	// MarkUsed returns true only for the first caller presenting id.
	MarkUsed(ctx context.Context, id string, until time.Time) (bool, error)
}

type memoryAssertionGuard struct {
	mu   sync.Mutex
	used map[string]time.Time
	now  func() time.Time
}

func NewMemoryAssertionGuard(now func() time.Time) AssertionGuard {
	if now == nil {
		now = time.Now
	}
	return &memoryAssertionGuard{
		used: make(map[string]time.Time),
		now:  now,
	}
}

func (g *memoryAssertionGuard) MarkUsed(_ context.Context, id string, until time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, exp := range g.used {
		if now.After(exp) {
			delete(g.used, key)
		}
	}

	if _, ok := g.used[id]; ok {
		return false, nil
	}
	g.used[id] = until
	return true, nil
}

type redisAssertionGuard struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisAssertionGuard(client *redis.Client, now func() time.Time) AssertionGuard {
	if now == nil {
		now = time.Now
	}
	return &redisAssertionGuard{client: client, now: now}
}

func (g *redisAssertionGuard) MarkUsed(ctx context.Context, id string, until time.Time) (bool, error) {
	ttl := until.Sub(g.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := g.client.SetNX(ctx, fmt.Sprintf("assertion:%s", id), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx assertion: %w", err)
	}
	return ok, nil
}
