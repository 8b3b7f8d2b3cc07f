package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx))
	// seeding twice must not fail on the primary key
	require.NoError(t, repo.Seed(ctx))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 12)

	chairs, err := repo.List(ctx, "Chairs")
	require.NoError(t, err)
	assert.Len(t, chairs, 3)

	sofa, err := repo.FindByID(ctx, "soft-boucle-sofa")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2400).Equal(sofa.Price))

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
