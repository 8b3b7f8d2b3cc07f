package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnit-storefront/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

// resetTokenStores runs the same contract against every implementation.
func resetTokenStores(t *testing.T, clock *fakeClock) map[string]ResetTokenRepository {
	client, _ := setupTestRedis(t)
	return map[string]ResetTokenRepository{
		"memory": NewMemoryResetTokenRepository(clock.Now),
		"redis":  NewRedisResetTokenRepository(client, clock.Now),
	}
}

func TestResetTokenRepository_PutGet(t *testing.T) {
	clock := newClock()
	for name, repo := range resetTokenStores(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := &model.ResetToken{Email: "exists@test.com", UserID: "u-1", ExpiresAt: clock.Now().Add(time.Hour)}

			require.NoError(t, repo.Put(ctx, "hash-1", record))

			got, err := repo.Get(ctx, "hash-1")
			require.NoError(t, err)
			assert.Equal(t, "exists@test.com", got.Email)
			assert.Equal(t, "u-1", got.UserID)
			assert.True(t, record.ExpiresAt.Equal(got.ExpiresAt))

			// Get is read-only
			_, err = repo.Get(ctx, "hash-1")
			assert.NoError(t, err)
		})
	}
}

func TestResetTokenRepository_Missing(t *testing.T) {
	clock := newClock()
	for name, repo := range resetTokenStores(t, clock) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrTokenNotFound)

			_, err = repo.Take(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrTokenNotFound)
		})
	}
}

func TestResetTokenRepository_ExpiredIsPurgedOnAccess(t *testing.T) {
	clock := newClock()
	for name, repo := range resetTokenStores(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := &model.ResetToken{Email: "a@b.co", UserID: "u", ExpiresAt: clock.Now().Add(-time.Second)}
			require.NoError(t, repo.Put(ctx, "old", record))

			_, err := repo.Get(ctx, "old")
			assert.ErrorIs(t, err, ErrTokenExpired)

			_, err = repo.Get(ctx, "old")
			assert.ErrorIs(t, err, ErrTokenNotFound)
		})
	}
}

func TestResetTokenRepository_TakeIsSingleUse(t *testing.T) {
	clock := newClock()
	for name, repo := range resetTokenStores(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := &model.ResetToken{Email: "a@b.co", UserID: "u", ExpiresAt: clock.Now().Add(time.Hour)}
			require.NoError(t, repo.Put(ctx, "once", record))

			got, err := repo.Take(ctx, "once")
			require.NoError(t, err)
			assert.Equal(t, "a@b.co", got.Email)

			_, err = repo.Take(ctx, "once")
			assert.ErrorIs(t, err, ErrTokenNotFound)
			_, err = repo.Get(ctx, "once")
			assert.ErrorIs(t, err, ErrTokenNotFound)
		})
	}
}

func TestResetTokenRepository_ConcurrentTake(t *testing.T) {
	clock := newClock()
	for name, repo := range resetTokenStores(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := &model.ResetToken{Email: "a@b.co", UserID: "u", ExpiresAt: clock.Now().Add(time.Hour)}
			require.NoError(t, repo.Put(ctx, "race", record))

			var wins int32
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := repo.Take(ctx, "race"); err == nil {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), wins)
		})
	}
}

func TestResetTokenRepository_Delete(t *testing.T) {
	clock := newClock()
	for name, repo := range resetTokenStores(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := &model.ResetToken{Email: "a@b.co", UserID: "u", ExpiresAt: clock.Now().Add(time.Hour)}
			require.NoError(t, repo.Put(ctx, "del", record))
			require.NoError(t, repo.Delete(ctx, "del"))

			_, err := repo.Get(ctx, "del")
			assert.ErrorIs(t, err, ErrTokenNotFound)
		})
	}
}

func TestMemoryResetTokenRepository_Sweep(t *testing.T) {
	clock := newClock()
	repo := NewMemoryResetTokenRepository(clock.Now)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "fresh", &model.ResetToken{ExpiresAt: clock.Now().Add(time.Hour)}))
	require.NoError(t, repo.Put(ctx, "stale", &model.ResetToken{ExpiresAt: clock.Now().Add(time.Minute)}))

	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, repo.sweep())
	assert.Equal(t, 1, repo.Len())
}

func TestRedisResetTokenRepository_KeyTTL(t *testing.T) {
	clock := newClock()
	client, mr := setupTestRedis(t)
	repo := NewRedisResetTokenRepository(client, clock.Now)

	record := &model.ResetToken{Email: "a@b.co", ExpiresAt: clock.Now().Add(time.Hour)}
	require.NoError(t, repo.Put(context.Background(), "ttl", record))

	assert.Equal(t, time.Hour+expiredGrace, mr.TTL(resetTokenKey("ttl")))
	assert.False(t, mr.Exists("ttl"), "raw key must be namespaced")
}
