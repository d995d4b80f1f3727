package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tagKeyPrefix = "tag:"

// RedisStore 基于 Redis 的标签缓存：值按 key 存放，标签用 SET 记录成员
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagKeyPrefix+tag, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Flush(ctx context.Context, tag string) error {
	tagKey := tagKeyPrefix + tag
	keys, err := s.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		return fmt.Errorf("redis tag members %s: %w", tag, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, tagKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis flush tag %s: %w", tag, err)
	}
	return nil
}
