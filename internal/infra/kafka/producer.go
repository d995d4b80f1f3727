package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"comments-go/internal/config"
	"comments-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// 索引任务动作
const (
	ActionIndex  = "index"
	ActionDelete = "delete"
)

var ErrProducerNotInitialized = errors.New("kafka producer not initialized")

// MessageWriter kafka.Writer 的最小接口，便于测试替换
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var producer MessageWriter

// IndexTask 评论索引任务消息体
type IndexTask struct {
	CommentID int64  `json:"comment_id"`
	Action    string `json:"action"`
	Attempt   int    `json:"attempt,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Key 同一评论的任务落在同一分区，保证顺序
func (t *IndexTask) Key() string {
	return fmt.Sprintf("comment-%d", t.CommentID)
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka brokers is empty")
	}

	producer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// SetProducer 替换全局生产者（测试使用）
func SetProducer(w MessageWriter) {
	producer = w
}

// SendIndexTask 发送索引任务到 Kafka
func SendIndexTask(ctx context.Context, topic string, task *IndexTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal index task: %w", err)
	}

	if err := SendRaw(ctx, topic, task.Key(), payload); err != nil {
		return fmt.Errorf("failed to send index task: %w", err)
	}

	logger.Debug("Index task sent",
		zap.Int64("comment_id", task.CommentID),
		zap.String("action", task.Action),
		zap.String("topic", topic),
	)

	return nil
}

// SendRaw 发送原始消息到指定 topic
func SendRaw(ctx context.Context, topic, key string, value []byte) error {
	if producer == nil {
		return ErrProducerNotInitialized
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send kafka message: %w", err)
	}
	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
