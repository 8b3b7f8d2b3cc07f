package repository

import (
	"context"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"furnit-storefront/internal/model"
)

const maxLastErrorBytes = 1024

type OutboxRepository interface {
	Enqueue(ctx context.Context, tx *gorm.DB, msg *model.OutboxMessage) error
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*model.OutboxMessage, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, attempts int, status model.OutboxStatus, nextAttemptAt time.Time, lastErr string) error
}

type outboxRepositoryImpl struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepositoryImpl{db: db}
}

func (r *outboxRepositoryImpl) Enqueue(ctx context.Context, tx *gorm.DB, msg *model.OutboxMessage) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(msg).Error
}

func (r *outboxRepositoryImpl) FetchDue(ctx context.Context, now time.Time, limit int) ([]*model.OutboxMessage, error) {
	var msgs []*model.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.OutboxStatus{model.OutboxStatusPending, model.OutboxStatusFailed}).
		Where("next_attempt_at <= ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&msgs).Error

	if err != nil {
		return nil, err
	}

	return msgs, nil
}

// MarkSent removes the message; delivered intents are not kept.
func (r *outboxRepositoryImpl) MarkSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.OutboxMessage{}).Error
}

func (r *outboxRepositoryImpl) MarkFailed(ctx context.Context, id string, attempts int, status model.OutboxStatus, nextAttemptAt time.Time, lastErr string) error {
	lastErr = truncateUTF8(lastErr, maxLastErrorBytes)
	return r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt,
			"last_error":      lastErr,
			"updated_at":      time.Now(),
		}).Error
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
