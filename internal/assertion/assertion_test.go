package assertion

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnit-storefront/internal/repository"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestIssuer(secret string) (Issuer, *clock) {
	c := &clock{now: time.Now().Truncate(time.Second)}
	return NewIssuer(secret, repository.NewMemoryAssertionGuard(c.Now), c.Now), c
}

func TestIssuer_IssueAndConsume(t *testing.T) {
	issuer, _ := newTestIssuer("secret")

	raw, err := issuer.Issue("exists@test.com", "u-1")
	require.NoError(t, err)

	claims, err := issuer.Consume(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "exists@test.com", claims.Email())
	assert.Equal(t, "u-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestIssuer_ConsumeOnce(t *testing.T) {
	issuer, _ := newTestIssuer("secret")
	raw, err := issuer.Issue("exists@test.com", "u-1")
	require.NoError(t, err)

	_, err = issuer.Consume(context.Background(), raw)
	require.NoError(t, err)

	_, err = issuer.Consume(context.Background(), raw)
	assert.ErrorIs(t, err, ErrAssertionUsed)
}

func TestIssuer_ConcurrentConsumeHasOneWinner(t *testing.T) {
	issuer, _ := newTestIssuer("secret")
	raw, err := issuer.Issue("exists@test.com", "u-1")
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := issuer.Consume(context.Background(), raw); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer, c := newTestIssuer("secret")
	raw, err := issuer.Issue("exists@test.com", "u-1")
	require.NoError(t, err)

	c.Advance(TTL + time.Minute)

	_, err = issuer.Consume(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	issuer, _ := newTestIssuer("secret")
	other, _ := newTestIssuer("another-secret")

	raw, err := other.Issue("exists@test.com", "u-1")
	require.NoError(t, err)

	_, err = issuer.Consume(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidAssertion)

	_, err = issuer.Consume(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestEphemeralSecret(t *testing.T) {
	a, err := EphemeralSecret()
	require.NoError(t, err)
	b, err := EphemeralSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
