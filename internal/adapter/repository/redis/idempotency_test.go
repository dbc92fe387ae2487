package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/usecase"
)

func TestIdempotencyStore_ClaimsNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)

	exists, resp, err := store.CheckAndSet(context.Background(), "owner-1:key", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, resp)

	stored, err := mr.Get(store.prefix + "owner-1:key")
	require.NoError(t, err)
	assert.Equal(t, usecase.IdempotencyInFlight, stored)
}

func TestIdempotencyStore_SecondClaimSeesInFlight(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, usecase.IdempotencyInFlight, string(resp))
}

func TestIdempotencyStore_UpdateThenReplay(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "key", []byte(`{"id":"tx-1"}`), time.Minute))

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.JSONEq(t, `{"id":"tx-1"}`, string(resp))
}

func TestIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "key"))

	exists, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIdempotencyStore_ExpiredKeyIsReclaimed(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	exists, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
}
