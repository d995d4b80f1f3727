package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*MemoryStore, *time.Time) {
	t.Helper()
	store, err := NewMemoryStore(16)
	require.NoError(t, err)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestMemoryStoreExpiry(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 30*time.Second))

	data, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	*now = now.Add(31 * time.Second)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreFlushTag(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute, "comments"))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute, "comments"))
	require.NoError(t, store.Set(ctx, "other", []byte("3"), time.Minute, "users"))

	require.NoError(t, store.Flush(ctx, "comments"))

	_, ok, _ := store.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "other")
	assert.True(t, ok)
}

func TestRememberCachesWithinTTL(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) ([]int64, error) {
		calls++
		return []int64{int64(calls)}, nil
	}

	first, err := Remember(ctx, store, "ids", 30*time.Second, []string{"comments"}, producer)
	require.NoError(t, err)
	second, err := Remember(ctx, store, "ids", 30*time.Second, []string{"comments"}, producer)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	*now = now.Add(time.Minute)
	third, err := Remember(ctx, store, "ids", 30*time.Second, []string{"comments"}, producer)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, third)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("store down")

	_, err := Remember(ctx, store, "k", time.Minute, nil, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := Remember(ctx, store, "k", time.Minute, nil, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis unavailable")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration, ...string) error {
	return errors.New("redis unavailable")
}

func (brokenStore) Flush(context.Context, string) error {
	return errors.New("redis unavailable")
}

func TestRememberFallsBackToProducerWhenStoreFails(t *testing.T) {
	v, err := Remember(context.Background(), brokenStore{}, "k", time.Minute, nil, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
