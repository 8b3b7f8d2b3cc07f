package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnit-storefront/internal/model"
)

func TestCartRepository(t *testing.T) {
	client, mr := setupTestRedis(t)
	repos := map[string]CartRepository{
		"memory": NewMemoryCartRepository(),
		"redis":  NewRedisCartRepository(client),
	}

	items := []model.CartItem{
		{ProductID: "velvet-armchair", Name: "Velvet Armchair", Price: decimal.NewFromInt(1100), Quantity: 2},
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := repo.Load(ctx, "user-1")
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, repo.Save(ctx, "user-1", items))

			loaded, err := repo.Load(ctx, "user-1")
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			assert.Equal(t, "velvet-armchair", loaded[0].ProductID)
			assert.Equal(t, 2, loaded[0].Quantity)
			assert.True(t, decimal.NewFromInt(1100).Equal(loaded[0].Price))

			require.NoError(t, repo.Delete(ctx, "user-1"))
			loaded, err = repo.Load(ctx, "user-1")
			require.NoError(t, err)
			assert.Empty(t, loaded)
		})
	}

	t.Run("redis ttl", func(t *testing.T) {
		require.NoError(t, repos["redis"].Save(context.Background(), "user-2", items))
		assert.Equal(t, CartTTL, mr.TTL(cartKey("user-2")))
	})

	t.Run("saving empty cart deletes it", func(t *testing.T) {
		require.NoError(t, repos["redis"].Save(context.Background(), "user-3", items))
		require.NoError(t, repos["redis"].Save(context.Background(), "user-3", nil))
		assert.False(t, mr.Exists(cartKey("user-3")))
	})
}

func TestRedisCartRepository_InvalidJSON(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewRedisCartRepository(client)

	require.NoError(t, mr.Set(cartKey("broken"), "{not json"))

	_, err := repo.Load(context.Background(), "broken")
	assert.Error(t, err)
}
