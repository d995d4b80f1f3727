package service

import (
	"context"
	"encoding/json"
	"fmt"

	"comments-go/internal/model"

	"github.com/redis/go-redis/v9"
)

// BroadcastMessage 推送给实时订阅者的消息体
type BroadcastMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// RedisBroadcaster 通过 Redis pub/sub 推送事件，订阅端为 websocket 网关
type RedisBroadcaster struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisBroadcaster(client redis.UniversalClient) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: model.CommentsChannel}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, event string, payload interface{}) error {
	data, err := json.Marshal(BroadcastMessage{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// NopBroadcaster Redis 未配置时使用
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(context.Context, string, interface{}) error { return nil }

func (NopBroadcaster) Subscribe(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out, nil
}

// Subscribe 订阅评论频道，ctx 结束后关闭返回的通道
func (b *RedisBroadcaster) Subscribe(ctx context.Context) (<-chan string, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
