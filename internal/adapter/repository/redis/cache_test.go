package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/usecase"
)

func TestCache_SetAndGet(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "summary:owner-1:gen", []byte("abc.1"), time.Minute))

	val, err := cache.Get(ctx, "summary:owner-1:gen")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc.1"), val)
}

func TestCache_MissingKey(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewCache(client)

	_, err := cache.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, usecase.ErrCacheMiss)
}

func TestCache_TTLExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, usecase.ErrCacheMiss)
}

func TestCache_DeleteAndPrefix(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("kakeibo:cache:k"))

	require.NoError(t, cache.Delete(ctx, "k"))
	assert.False(t, mr.Exists("kakeibo:cache:k"))
}

func TestCache_ServesSummaryCache(t *testing.T) {
	client, _ := newTestRedisClient(t)
	metrics := usecase.NopMetrics{}
	summaries := usecase.NewSummaryCache(NewCache(client), time.Minute, metrics, nopLogger())
	ctx := context.Background()

	// Invalidate on an empty store must start a fresh generation.
	summaries.Invalidate(ctx, "owner-1")

	val, err := NewCache(client).Get(ctx, "summary:owner-1:gen")
	require.NoError(t, err)
	assert.NotEmpty(t, val)
}
