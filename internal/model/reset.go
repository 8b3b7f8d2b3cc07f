package model

import "time"

// ResetToken is the stored side of a password reset: keyed by the token hash, never the raw token.
type ResetToken struct {
	Email     string    `json:"email"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
