package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upload-service/internal/config"
	"upload-service/internal/models"
)

func TestDisabledCacheIsNoOp(t *testing.T) {
	cache := NewOutcomeCache(&config.RedisConfig{})

	ctx := context.Background()
	require.NoError(t, cache.SaveOutcome(ctx, &models.ProcessingOutcome{ObjectKey: "images/u1/k.png"}))

	outcome, err := cache.GetOutcome(ctx, "images/u1/k.png")
	require.NoError(t, err)
	assert.Nil(t, outcome, "a disabled cache never hits")

	require.NoError(t, cache.Delete(ctx, "images/u1/k.png"))
	require.NoError(t, cache.Close())
}

func TestNilCacheIsSafe(t *testing.T) {
	var cache *OutcomeCache

	ctx := context.Background()
	require.NoError(t, cache.SaveOutcome(ctx, &models.ProcessingOutcome{}))
	outcome, err := cache.GetOutcome(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, outcome)
	require.NoError(t, cache.Close())
}
