package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	h, err := s.Put(ctx, []byte("processed"))
	require.NoError(t, err)
	require.NotEmpty(t, h)

	got, err := s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("processed"), got)

	// Reads are repeatable until removal.
	got, err = s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("processed"), got)

	require.NoError(t, s.Delete(ctx, h))
	_, err = s.Get(ctx, h)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUnknownHandle(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCopiesBuffers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	src := []byte("abc")
	h, err := s.Put(ctx, src)
	require.NoError(t, err)
	src[0] = 'x'

	got, err := s.Get(ctx, h)
	require.NoError(t, err)
	got[1] = 'y'

	again, err := s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStoreConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	const callers = 64

	handles := make([]Handle, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := s.Put(ctx, []byte(fmt.Sprintf("payload-%d", i)))
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	seen := make(map[Handle]bool, callers)
	for i, h := range handles {
		require.False(t, seen[h], "duplicate handle %s", h)
		seen[h] = true

		got, err := s.Get(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("payload-%d", i), string(got))
	}

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, callers, n)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewMemoryStore(WithTTL(time.Minute), WithClock(clock))

	old, err := s.Put(ctx, []byte("old"))
	require.NoError(t, err)

	now = now.Add(90 * time.Second)
	fresh, err := s.Put(ctx, []byte("fresh"))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Sweep(now))

	_, err = s.Get(ctx, old)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, fresh)
	assert.NoError(t, err)
}

func TestMemoryStoreSweepDisabledWithoutTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Put(ctx, []byte("kept"))
	require.NoError(t, err)

	assert.Zero(t, s.Sweep(time.Now().Add(24*time.Hour)))
	n, _ := s.Len(ctx)
	assert.Equal(t, 1, n)
}
