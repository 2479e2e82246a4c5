package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(srv.Close)

	store, err := NewRedisStore("redis://"+srv.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, srv
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, 0)

	h, err := store.Put(ctx, []byte{0x52, 0x49, 0x46, 0x46})
	require.NoError(t, err)

	got, err := store.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x52, 0x49, 0x46, 0x46}, got)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Delete(ctx, h))
	_, err = store.Get(ctx, h)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedisStore(t, time.Minute)

	h, err := store.Put(ctx, []byte("expiring"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, srv.TTL(redisKey(h)))

	srv.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, h)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("not a url", 0)
	assert.Error(t, err)
}
