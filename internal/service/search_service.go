package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"comments-go/internal/config"
	infraES "comments-go/internal/infra/elasticsearch"
	"comments-go/internal/model"
	"comments-go/pkg/logger"

	"go.uber.org/zap"
)

// ErrSearchUnavailable 搜索引擎不可用，调用方应返回降级错误而不是空结果
var ErrSearchUnavailable = errors.New("搜索服务暂不可用")

// SearchItem 搜索结果条目，评论数据来自数据库，高亮来自搜索引擎
type SearchItem struct {
	model.Comment
	Highlight []string `json:"highlight,omitempty"`
}

// SearchPage 搜索结果分页
type SearchPage struct {
	Query string `json:"q"`
	*model.Page[SearchItem]
}

type SearchService struct {
	engine SearchEngine
	store  CommentStore
	cfg    config.SearchConfig
}

func NewSearchService(engine SearchEngine, store CommentStore, cfg *config.SearchConfig) *SearchService {
	c := *cfg
	if c.MinQueryLength <= 0 {
		c.MinQueryLength = 2
	}
	if c.DefaultPerPage <= 0 {
		c.DefaultPerPage = 20
	}
	if c.MaxPerPage <= 0 {
		c.MaxPerPage = 50
	}
	return &SearchService{engine: engine, store: store, cfg: c}
}

// Search 全文搜索评论
func (s *SearchService) Search(ctx context.Context, q string, page, perPage int) (*SearchPage, error) {
	q = strings.TrimSpace(q)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = s.cfg.DefaultPerPage
	}
	if perPage > s.cfg.MaxPerPage {
		perPage = s.cfg.MaxPerPage
	}

	// 过短的查询不访问搜索引擎
	if utf8.RuneCountInString(q) < s.cfg.MinQueryLength {
		return &SearchPage{Query: q, Page: model.NewPage([]SearchItem{}, 1, perPage, 0)}, nil
	}

	result, err := s.engine.Search(ctx, infraES.SearchQuery{
		Q:         q,
		Page:      page,
		PerPage:   perPage,
		Highlight: true,
		PreTag:    s.cfg.HighlightPreTag,
		PostTag:   s.cfg.HighlightPostTag,
	})
	if err != nil {
		logger.Warn("Comment search failed", zap.String("q", q), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	items, err := s.hydrate(ctx, result.Hits)
	if err != nil {
		return nil, err
	}

	return &SearchPage{Query: q, Page: model.NewPage(items, page, perPage, result.Total)}, nil
}

// hydrate 按命中顺序从数据库取回评论，数据库中已不存在的命中被丢弃
func (s *SearchService) hydrate(ctx context.Context, hits []infraES.SearchHit) ([]SearchItem, error) {
	if len(hits) == 0 {
		return []SearchItem{}, nil
	}

	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}

	comments, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load search hits: %w", err)
	}

	byID := make(map[int64]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	items := make([]SearchItem, 0, len(hits))
	for _, h := range hits {
		c, ok := byID[h.ID]
		if !ok {
			continue
		}
		items = append(items, SearchItem{Comment: c, Highlight: h.Highlight})
	}
	return items, nil
}
