package cache

import (
	"context"
	"encoding/json"
	"time"

	"comments-go/pkg/logger"

	"go.uber.org/zap"
)

// Store 支持按标签整体失效的键值缓存
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	// Flush 删除标签下的全部键，与剩余 TTL 无关
	Flush(ctx context.Context, tag string) error
}

// Remember 命中则返回缓存值，否则调用 producer 并写入缓存。
// 并发未命中时允许 producer 被重复调用，不做互斥。
func Remember[T any](ctx context.Context, store Store, key string, ttl time.Duration, tags []string, producer func(context.Context) (T, error)) (T, error) {
	if data, ok, err := store.Get(ctx, key); err != nil {
		logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		logger.Warn("Cache entry corrupted", zap.String("key", key))
	}

	value, err := producer(ctx)
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := store.Set(ctx, key, data, ttl, tags...); err != nil {
		logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
