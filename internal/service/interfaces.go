package service

import (
	"context"
	"io"
	"time"

	infraES "comments-go/internal/infra/elasticsearch"
	"comments-go/internal/model"
)

// CommentStore 评论持久化，repository.CommentRepository 实现
type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error)
	FindByParentIDs(ctx context.Context, parentIDs []int64) ([]model.Comment, error)
	PaginateRoots(ctx context.Context, sort, dir string, pageSize, page int) (*model.Page[model.Comment], error)
}

// CommentChunker 回填时按 id 分批遍历
type CommentChunker interface {
	CountRange(ctx context.Context, fromID, toID int64) (int64, error)
	ChunkByID(ctx context.Context, fromID, toID int64, size int, fn func([]model.Comment) error) error
}

// CaptchaStore 验证码持久化
type CaptchaStore interface {
	Create(ctx context.Context, captcha *model.Captcha) error
	FindValid(ctx context.Context, token string, now time.Time) (*model.Captcha, error)
	Delete(ctx context.Context, id int64) error
}

// SearchEngine 搜索查询
type SearchEngine interface {
	Search(ctx context.Context, q infraES.SearchQuery) (*infraES.SearchResult, error)
}

// DocumentIndexer 文档写入，只有索引 worker 调用
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, comment *model.Comment) error
	DeleteDocument(ctx context.Context, id int64) error
}

// IndexLifecycle 索引管理
type IndexLifecycle interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, body []byte, name string) (bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	EnsureAlias(ctx context.Context, name, alias string) (bool, error)
	BulkIndex(ctx context.Context, comments []model.Comment) (int, int, error)
	IndexName() string
	AliasName() string
}

// ObjectStorage 附件对象存储
type ObjectStorage interface {
	Put(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, bucket, objectName string) error
	URL(bucket, objectName string) string
}

// Broadcaster 实时事件推送
type Broadcaster interface {
	Publish(ctx context.Context, event string, payload interface{}) error
}

// Enqueuer 异步索引任务投递
type Enqueuer interface {
	Enqueue(ctx context.Context, commentID int64) error
}
