package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/pkg/cache"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

func TestMemoryCacheRoundTripAndPatternDelete(t *testing.T) {
	repo := NewMemoryCacheRepository(cache.NewMemory(time.Minute))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "content:public:artikel", []string{"a"}, time.Minute))
	require.NoError(t, repo.Set(ctx, "content:public:gallery", []string{"g"}, time.Minute))
	require.NoError(t, repo.Set(ctx, "events:all", []string{"e"}, time.Minute))

	var got []string
	require.NoError(t, repo.Get(ctx, "content:public:artikel", &got))
	assert.Equal(t, []string{"a"}, got)

	require.NoError(t, repo.DeleteByPattern(ctx, "content:public:*"))

	err := repo.Get(ctx, "content:public:gallery", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	require.NoError(t, repo.Get(ctx, "events:all", &got))
	assert.Equal(t, []string{"e"}, got)
}

func TestRedisCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewRedisCacheRepository(nil, DefaultCacheKeyPrefix, nil)
	var dest []string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", "v", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}
