package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"furnit-storefront/internal/model"
)

// expiredGrace keeps a record readable shortly past its expiry so a late request
// is answered "expired" rather than "invalid".
const expiredGrace = 10 * time.Minute

type redisResetTokenRepo struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisResetTokenRepository(client *redis.Client, now func() time.Time) ResetTokenRepository {
	if now == nil {
		now = time.Now
	}
	return &redisResetTokenRepo{
		client: client,
		now:    now,
	}
}

func (r *redisResetTokenRepo) Put(ctx context.Context, hash string, record *model.ResetToken) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal reset token: %w", err)
	}

	ttl := record.ExpiresAt.Sub(r.now())
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, resetTokenKey(hash), data, ttl+expiredGrace).Err(); err != nil {
		return fmt.Errorf("redis set reset token: %w", err)
	}
	return nil
}

func (r *redisResetTokenRepo) Get(ctx context.Context, hash string) (*model.ResetToken, error) {
	data, err := r.client.Get(ctx, resetTokenKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get reset token: %w", err)
	}

	record, err := decodeResetToken(data)
	if err != nil {
		return nil, err
	}
	if record.Expired(r.now()) {
		if err := r.Delete(ctx, hash); err != nil {
			return nil, err
		}
		return nil, ErrTokenExpired
	}
	return record, nil
}

// Take relies on GETDEL so the read and the removal are one atomic step on the server.
func (r *redisResetTokenRepo) Take(ctx context.Context, hash string) (*model.ResetToken, error) {
	data, err := r.client.GetDel(ctx, resetTokenKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel reset token: %w", err)
	}

	record, err := decodeResetToken(data)
	if err != nil {
		return nil, err
	}
	if record.Expired(r.now()) {
		return nil, ErrTokenExpired
	}
	return record, nil
}

func (r *redisResetTokenRepo) Delete(ctx context.Context, hash string) error {
	if err := r.client.Del(ctx, resetTokenKey(hash)).Err(); err != nil {
		return fmt.Errorf("redis delete reset token: %w", err)
	}
	return nil
}

func decodeResetToken(data []byte) (*model.ResetToken, error) {
	var record model.ResetToken
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal reset token: %w", err)
	}
	return &record, nil
}

func resetTokenKey(hash string) string {
	return fmt.Sprintf("reset:%s", hash)
}
