package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"comments-go/internal/cache"
	"comments-go/internal/config"
	"comments-go/internal/model"

	"golang.org/x/crypto/blake2b"
)

// CommentsCacheTag 评论列表相关缓存统一使用的标签
const CommentsCacheTag = "comments"

var ErrTreeTooDeep = errors.New("评论树层级超出上限")

var allowedSorts = map[string]bool{
	"user_name":  true,
	"email":      true,
	"created_at": true,
}

// CommentTree 一页顶级评论及其全部后代（平铺，按层序）
type CommentTree struct {
	Roots           *model.Page[model.Comment] `json:"roots"`
	DescendantsFlat []model.Comment            `json:"descendants_flat"`
}

type CommentListService struct {
	store    CommentStore
	cache    cache.Store
	pageSize int
	ttl      time.Duration
	maxDepth int
}

func NewCommentListService(store CommentStore, c cache.Store, cfg *config.CommentsConfig) *CommentListService {
	s := &CommentListService{
		store:    store,
		cache:    c,
		pageSize: cfg.PageSize,
		ttl:      cfg.CacheTTLDuration(),
		maxDepth: cfg.MaxDepth,
	}
	if s.pageSize <= 0 {
		s.pageSize = 25
	}
	if s.ttl <= 0 {
		s.ttl = 30 * time.Second
	}
	if s.maxDepth <= 0 {
		s.maxDepth = 1000
	}
	return s
}

// NormalizeSort 非法排序字段回退到 created_at；方向只有精确匹配 asc（忽略大小写）才是升序
func NormalizeSort(sortField, dir string) (string, string) {
	if !allowedSorts[sortField] {
		sortField = "created_at"
	}
	if strings.EqualFold(dir, "asc") {
		dir = "asc"
	} else {
		dir = "desc"
	}
	return sortField, dir
}

// Roots 顶级评论分页
func (s *CommentListService) Roots(ctx context.Context, page int, sortField, dir string) (*model.Page[model.Comment], error) {
	if page < 1 {
		page = 1
	}
	sortField, dir = NormalizeSort(sortField, dir)

	key := fmt.Sprintf("comments:roots:p%d:s%s:d%s", page, sortField, dir)
	return cache.Remember(ctx, s.cache, key, s.ttl, []string{CommentsCacheTag},
		func(ctx context.Context) (*model.Page[model.Comment], error) {
			roots, err := s.store.PaginateRoots(ctx, sortField, dir, s.pageSize, page)
			if err != nil {
				return nil, fmt.Errorf("paginate roots: %w", err)
			}
			return roots, nil
		})
}

// DescendantsFlat 按层序返回给定顶级评论的全部后代
func (s *CommentListService) DescendantsFlat(ctx context.Context, rootIDs []int64) ([]model.Comment, error) {
	ids := normalizeIDs(rootIDs)
	if len(ids) == 0 {
		return []model.Comment{}, nil
	}

	return cache.Remember(ctx, s.cache, descendantsKey(ids), s.ttl, []string{CommentsCacheTag},
		func(ctx context.Context) ([]model.Comment, error) {
			return s.collectDescendants(ctx, ids)
		})
}

// collectDescendants 逐层批量查询子评论，直到某一层为空
func (s *CommentListService) collectDescendants(ctx context.Context, rootIDs []int64) ([]model.Comment, error) {
	visited := make(map[int64]struct{}, len(rootIDs))
	for _, id := range rootIDs {
		visited[id] = struct{}{}
	}

	out := []model.Comment{}
	frontier := rootIDs
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= s.maxDepth {
			return nil, fmt.Errorf("%w: depth %d", ErrTreeTooDeep, depth)
		}

		children, err := s.store.FindByParentIDs(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("find children: %w", err)
		}

		next := make([]int64, 0, len(children))
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			out = append(out, child)
			next = append(next, child.ID)
		}
		frontier = next
	}
	return out, nil
}

// List 顶级评论分页 + 对应后代
func (s *CommentListService) List(ctx context.Context, page int, sortField, dir string) (*CommentTree, error) {
	roots, err := s.Roots(ctx, page, sortField, dir)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(roots.Items))
	for _, c := range roots.Items {
		ids = append(ids, c.ID)
	}

	descendants, err := s.DescendantsFlat(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &CommentTree{Roots: roots, DescendantsFlat: descendants}, nil
}

// Invalidate 清除全部评论列表缓存
func (s *CommentListService) Invalidate(ctx context.Context) error {
	return s.cache.Flush(ctx, CommentsCacheTag)
}

func normalizeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// descendantsKey 同一组 id（不论顺序与重复）得到同一个键
func descendantsKey(sortedIDs []int64) string {
	parts := make([]string, len(sortedIDs))
	for i, id := range sortedIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	sum := blake2b.Sum256([]byte(strings.Join(parts, ",")))
	return "comments:descendants:" + hex.EncodeToString(sum[:])
}
