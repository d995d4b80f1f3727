package kafka

import (
	"context"
	"encoding/json"
	"time"

	"comments-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TaskHandler 处理索引任务的回调函数
type TaskHandler func(ctx context.Context, task *IndexTask) error

// MessageReader kafka.Reader 的最小接口
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewIndexTaskReader 创建消费组 Reader
func NewIndexTaskReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
}

// StartIndexTaskConsumer 启动索引任务消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartIndexTaskConsumer(ctx context.Context, brokers []string, topic, groupID string, handler TaskHandler) {
	logger.Info("Kafka index task consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)
	Consume(ctx, NewIndexTaskReader(brokers, topic, groupID), handler)
}

// Consume 循环读取并处理消息，直到 ctx 取消
func Consume(ctx context.Context, reader MessageReader, handler TaskHandler) {
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka index task consumer stopped")
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var task IndexTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			logger.Error("Failed to unmarshal index task",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(ctx, &task); err != nil {
			logger.Error("Failed to handle index task",
				zap.Int64("comment_id", task.CommentID),
				zap.String("action", task.Action),
				zap.Error(err),
			)
		}
	}
}
