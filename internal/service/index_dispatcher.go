package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comments-go/internal/config"
	infraKafka "comments-go/internal/infra/kafka"
	"comments-go/pkg/logger"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 默认 topic
const (
	DefaultIndexTopic       = "comment-index"
	DefaultIndexFailedTopic = "comment-index-failed"
)

var ErrIndexAttemptsExhausted = errors.New("索引任务重试次数已用尽")

// TaskSender 发送索引任务，默认为 infraKafka.SendIndexTask
type TaskSender func(ctx context.Context, topic string, task *infraKafka.IndexTask) error

// IndexDispatcher 把索引任务投递到队列，不在请求路径上直接访问搜索引擎
type IndexDispatcher struct {
	send  TaskSender
	topic string
}

func NewIndexDispatcher(send TaskSender, kafkaCfg *config.KafkaConfig) *IndexDispatcher {
	if send == nil {
		send = infraKafka.SendIndexTask
	}
	return &IndexDispatcher{
		send:  send,
		topic: kafkaCfg.Topic("comment_index", DefaultIndexTopic),
	}
}

// Enqueue 投递 upsert 任务
func (d *IndexDispatcher) Enqueue(ctx context.Context, commentID int64) error {
	return d.dispatch(ctx, commentID, infraKafka.ActionIndex)
}

// EnqueueDelete 投递删除任务
func (d *IndexDispatcher) EnqueueDelete(ctx context.Context, commentID int64) error {
	return d.dispatch(ctx, commentID, infraKafka.ActionDelete)
}

func (d *IndexDispatcher) dispatch(ctx context.Context, commentID int64, action string) error {
	task := &infraKafka.IndexTask{CommentID: commentID, Action: action}
	if err := d.send(ctx, d.topic, task); err != nil {
		return fmt.Errorf("dispatch %s task for comment %d: %w", action, commentID, err)
	}
	return nil
}

// IndexWorker 消费索引任务，重新读取评论后写入搜索引擎
type IndexWorker struct {
	store       CommentStore
	indexer     DocumentIndexer
	send        TaskSender
	failedTopic string
	maxAttempts int
	backoff     time.Duration
}

func NewIndexWorker(store CommentStore, indexer DocumentIndexer, send TaskSender, indexerCfg *config.IndexerConfig, kafkaCfg *config.KafkaConfig) *IndexWorker {
	w := &IndexWorker{
		store:       store,
		indexer:     indexer,
		send:        send,
		failedTopic: kafkaCfg.Topic("comment_index_failed", DefaultIndexFailedTopic),
		maxAttempts: indexerCfg.MaxAttempts,
		backoff:     indexerCfg.BackoffDuration(),
	}
	if w.send == nil {
		w.send = infraKafka.SendIndexTask
	}
	if w.maxAttempts <= 0 {
		w.maxAttempts = 10
	}
	if w.backoff <= 0 {
		w.backoff = 5 * time.Second
	}
	return w
}

// Handle 处理单个索引任务，失败按固定间隔重试；重试用尽后写入失败 topic
func (w *IndexWorker) Handle(ctx context.Context, task *infraKafka.IndexTask) error {
	attempts := 0
	backoff := retry.WithMaxRetries(uint64(w.maxAttempts-1), retry.NewConstant(w.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := w.apply(ctx, task); err != nil {
			logger.Warn("Index task attempt failed",
				zap.Int64("comment_id", task.CommentID),
				zap.String("action", task.Action),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	logger.Error("Index task failed permanently",
		zap.Int64("comment_id", task.CommentID),
		zap.String("action", task.Action),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)

	failed := *task
	failed.Attempt = attempts
	failed.Error = err.Error()
	if sendErr := w.send(context.WithoutCancel(ctx), w.failedTopic, &failed); sendErr != nil {
		logger.Error("Failed to publish failed index task", zap.Int64("comment_id", task.CommentID), zap.Error(sendErr))
	}

	return fmt.Errorf("%w: comment %d after %d attempts: %v", ErrIndexAttemptsExhausted, task.CommentID, attempts, err)
}

func (w *IndexWorker) apply(ctx context.Context, task *infraKafka.IndexTask) error {
	if task.Action == infraKafka.ActionDelete {
		return w.indexer.DeleteDocument(ctx, task.CommentID)
	}

	comment, err := w.store.GetByID(ctx, task.CommentID)
	if err != nil {
		// 评论已不存在时任务直接结束
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("Comment vanished before indexing", zap.Int64("comment_id", task.CommentID))
			return nil
		}
		return fmt.Errorf("load comment: %w", err)
	}
	return w.indexer.IndexDocument(ctx, comment)
}
