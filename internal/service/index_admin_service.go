package service

import (
	"context"
	"encoding/json"
	"fmt"

	infraES "comments-go/internal/infra/elasticsearch"
	"comments-go/internal/model"
	"comments-go/pkg/logger"

	"go.uber.org/zap"
)

const defaultSyncChunk = 200

// SyncResult 回填统计
type SyncResult struct {
	Total   int64 `json:"total"`
	Success int   `json:"success"`
	Failed  int   `json:"failed"`
}

// IndexAdminService 索引创建与全量回填
type IndexAdminService struct {
	index IndexLifecycle
	store CommentChunker
}

func NewIndexAdminService(index IndexLifecycle, store CommentChunker) *IndexAdminService {
	return &IndexAdminService{index: index, store: store}
}

// CreateIndex 确保物理索引存在并把别名指向它；force 时先删除旧索引
func (s *IndexAdminService) CreateIndex(ctx context.Context, force bool) error {
	name := s.index.IndexName()
	alias := s.index.AliasName()

	if force {
		deleted, err := s.index.Delete(ctx, name)
		if err != nil {
			return fmt.Errorf("delete index %s: %w", name, err)
		}
		if deleted {
			logger.Info("Elasticsearch index deleted", zap.String("index", name))
		}
	}

	exists, err := s.index.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}

	if exists {
		logger.Warn("Index already exists, only ensuring alias", zap.String("index", name))
	} else {
		body, err := json.Marshal(infraES.CommentsIndexBody())
		if err != nil {
			return fmt.Errorf("encode index body: %w", err)
		}
		created, err := s.index.Create(ctx, body, name)
		if err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
		if !created {
			return fmt.Errorf("create index %s: not acknowledged", name)
		}
		logger.Info("Elasticsearch index created", zap.String("index", name))
	}

	if _, err := s.index.EnsureAlias(ctx, name, alias); err != nil {
		return fmt.Errorf("ensure alias %s: %w", alias, err)
	}
	return nil
}

// Sync 按 id 升序分批把评论写入别名，toID <= 0 表示不设上限
func (s *IndexAdminService) Sync(ctx context.Context, chunk int, fromID, toID int64) (*SyncResult, error) {
	if chunk <= 0 {
		chunk = defaultSyncChunk
	}
	if fromID < 1 {
		fromID = 1
	}

	total, err := s.store.CountRange(ctx, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	result := &SyncResult{Total: total}
	logger.Info("Comment sync started",
		zap.Int64("total", total),
		zap.Int("chunk", chunk),
		zap.Int64("from_id", fromID),
		zap.Int64("to_id", toID),
	)

	err = s.store.ChunkByID(ctx, fromID, toID, chunk, func(batch []model.Comment) error {
		success, failed, err := s.index.BulkIndex(ctx, batch)
		if err != nil {
			return err
		}
		result.Success += success
		result.Failed += failed
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("sync comments: %w", err)
	}

	logger.Info("Comment sync finished",
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
