// Package assertion issues the short-lived "password change authorized" grant handed out after a
// reset token is consumed, and lets the credential updater redeem it exactly once.
package assertion

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"furnit-storefront/internal/repository"
)

// TTL matches the reset token lifetime.
const TTL = time.Hour

const (
	issuer   = "furnit-mailer"
	audience = "credential-update"
)

var (
	ErrInvalidAssertion = errors.New("invalid password-change assertion")
	ErrAssertionUsed    = errors.New("password-change assertion already used")
)

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (c *Claims) Email() string {
	return c.Subject
}

type Issuer interface {
	Issue(email, userID string) (string, error)
	Consume(ctx context.Context, raw string) (*Claims, error)
}

type issuerImpl struct {
	secret []byte
	guard  repository.AssertionGuard
	now    func() time.Time
}

func NewIssuer(secret string, guard repository.AssertionGuard, now func() time.Time) Issuer {
	if now == nil {
		now = time.Now
	}
	return &issuerImpl{
		secret: []byte(secret),
		guard:  guard,
		now:    now,
	}
}

func (i *issuerImpl) Issue(email, userID string) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// Consume verifies signature, issuer, audience and expiry, then burns the jti.
func (i *issuerImpl) Consume(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidAssertion
	}

	first, err := i.guard.MarkUsed(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return nil, fmt.Errorf("mark assertion used: %w", err)
	}
	if !first {
		return nil, ErrAssertionUsed
	}

	return claims, nil
}

// EphemeralSecret is used when no signing secret is configured; assertions then die with the process.
func EphemeralSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate assertion secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
