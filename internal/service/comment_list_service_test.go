package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"comments-go/internal/config"
	"comments-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(comments []model.Comment) []int64 {
	out := make([]int64, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ID)
	}
	return out
}

func TestDescendantsFlat_LevelOrder(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.put(1, nil, "root", now)
	store.put(2, ptr(int64(1)), "c1", now)
	store.put(3, ptr(int64(2)), "g1", now)
	store.put(4, ptr(int64(1)), "c2", now)

	svc := NewCommentListService(store, newMemoryCache(t), commentsConfig())
	got, err := svc.DescendantsFlat(context.Background(), []int64{1})
	require.NoError(t, err)

	// 同层的 C2 排在下一层的 G1 之前，即使 G1 的 id 更小
	assert.Equal(t, []int64{2, 4, 3}, ids(got))
	assert.Equal(t, 3, store.findCalls, "one batched query per level plus the empty level")
}

func TestDescendantsFlat_TerminatesOnCycle(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.put(1, ptr(int64(3)), "a", now)
	store.put(2, ptr(int64(1)), "b", now)
	store.put(3, ptr(int64(2)), "c", now)

	svc := NewCommentListService(store, newMemoryCache(t), commentsConfig())
	got, err := svc.DescendantsFlat(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(got))
}

func TestDescendantsFlat_DepthBound(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.put(1, nil, "a", now)
	store.put(2, ptr(int64(1)), "b", now)
	store.put(3, ptr(int64(2)), "c", now)
	store.put(4, ptr(int64(3)), "d", now)

	cfg := commentsConfig()
	cfg.MaxDepth = 2
	svc := NewCommentListService(store, newMemoryCache(t), cfg)

	_, err := svc.DescendantsFlat(context.Background(), []int64{1})
	assert.ErrorIs(t, err, ErrTreeTooDeep)
}

func TestDescendantsFlat_EmptyAndInvalidIDs(t *testing.T) {
	store := newMemStore()
	svc := NewCommentListService(store, newMemoryCache(t), commentsConfig())

	got, err := svc.DescendantsFlat(context.Background(), []int64{0, -3})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Zero(t, store.findCalls)
}

func TestDescendantsFlat_CacheKeyIgnoresOrderAndDuplicates(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.put(1, nil, "a", now)
	store.put(2, nil, "b", now)
	store.put(3, ptr(int64(1)), "c", now)

	svc := NewCommentListService(store, newMemoryCache(t), commentsConfig())
	ctx := context.Background()

	first, err := svc.DescendantsFlat(ctx, []int64{2, 1})
	require.NoError(t, err)
	calls := store.findCalls

	second, err := svc.DescendantsFlat(ctx, []int64{1, 2, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, calls, store.findCalls, "served from cache")
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, descendantsKey([]int64{1, 2}), descendantsKey(normalizeIDs([]int64{2, 1, 1})))
}

func TestDescendantsFlat_StoreErrorIsNotCached(t *testing.T) {
	store := newMemStore()
	store.put(1, nil, "a", time.Now())
	store.findErr = errors.New("db down")

	svc := NewCommentListService(store, newMemoryCache(t), commentsConfig())
	ctx := context.Background()

	_, err := svc.DescendantsFlat(ctx, []int64{1})
	require.Error(t, err)

	store.findErr = nil
	got, err := svc.DescendantsFlat(ctx, []int64{1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDescendantsFlat_CacheFailureFallsBackToStore(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.put(1, nil, "a", now)
	store.put(2, ptr(int64(1)), "b", now)

	svc := NewCommentListService(store, failingCache{}, commentsConfig())
	got, err := svc.DescendantsFlat(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(got))
}

func TestNormalizeSort(t *testing.T) {
	tests := []struct {
		sort, dir         string
		wantSort, wantDir string
	}{
		{"user_name", "asc", "user_name", "asc"},
		{"email", "ASC", "email", "asc"},
		{"created_at", "desc", "created_at", "desc"},
		{"id; drop table", "asc", "created_at", "asc"},
		{"", "", "created_at", "desc"},
		{"user_name", "ascending", "user_name", "desc"},
	}
	for _, tt := range tests {
		s, d := NormalizeSort(tt.sort, tt.dir)
		assert.Equal(t, tt.wantSort, s, tt.sort)
		assert.Equal(t, tt.wantDir, d, tt.dir)
	}
}

func TestRoots_CoercesInputsAndCaches(t *testing.T) {
	store := newMemStore()
	base := time.Now()
	store.put(1, nil, "bob", base)
	store.put(2, nil, "alice", base.Add(time.Minute))

	svc := NewCommentListService(store, newMemoryCache(t), commentsConfig())
	ctx := context.Background()

	page, err := svc.Roots(ctx, 0, "nope", "sideways")
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, []int64{2, 1}, ids(page.Items), "created_at desc")

	page, err = svc.Roots(ctx, 1, "user_name", "asc")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(page.Items))

	calls := store.paginateCalls
	_, err = svc.Roots(ctx, 1, "user_name", "ASC")
	require.NoError(t, err)
	assert.Equal(t, calls, store.paginateCalls, "same normalized key hits the cache")
}

func TestList_PageSizeAndLastPage(t *testing.T) {
	store := newMemStore()
	base := time.Now()
	for i := int64(1); i <= 30; i++ {
		store.put(i, nil, "u", base.Add(time.Duration(i)*time.Second))
	}

	svc := NewCommentListService(store, newMemoryCache(t), &config.CommentsConfig{})
	tree, err := svc.List(context.Background(), 2, "created_at", "desc")
	require.NoError(t, err)
	assert.Len(t, tree.Roots.Items, 5)
	assert.EqualValues(t, 30, tree.Roots.Total)
	assert.EqualValues(t, 2, tree.Roots.LastPage)
	assert.Empty(t, tree.DescendantsFlat)
}
