package repository

import (
	"context"
	"errors"

	"furnit-storefront/internal/model"
)

var (
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenExpired  = errors.New("reset token expired")
)

// ResetTokenRepository maps a token hash to its reset record.
//
// Get treats an expired record as absent: it removes it and returns ErrTokenExpired.
// Take is an atomic Get followed by Delete; of two concurrent Takes on one hash at most one succeeds.
type ResetTokenRepository interface {
	Put(ctx context.Context, hash string, record *model.ResetToken) error
	Get(ctx context.Context, hash string) (*model.ResetToken, error)
	Take(ctx context.Context, hash string) (*model.ResetToken, error)
	Delete(ctx context.Context, hash string) error
}
