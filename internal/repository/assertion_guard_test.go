package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertionGuard_FirstUseWins(t *testing.T) {
	clock := newClock()
	client, _ := setupTestRedis(t)

	guards := map[string]AssertionGuard{
		"memory": NewMemoryAssertionGuard(clock.Now),
		"redis":  NewRedisAssertionGuard(client, clock.Now),
	}

	for name, guard := range guards {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			until := clock.Now().Add(time.Hour)

			first, err := guard.MarkUsed(ctx, "jti-1", until)
			require.NoError(t, err)
			assert.True(t, first)

			second, err := guard.MarkUsed(ctx, "jti-1", until)
			require.NoError(t, err)
			assert.False(t, second)

			other, err := guard.MarkUsed(ctx, "jti-2", until)
			require.NoError(t, err)
			assert.True(t, other)
		})
	}
}
