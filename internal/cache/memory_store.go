package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore 进程内 LRU 缓存，Redis 未配置时使用
type MemoryStore struct {
	mu   sync.Mutex
	lru  *lru.Cache[string, memoryItem]
	tags map[string]map[string]struct{}
	now  func() time.Time
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = 1024
	}
	l, err := lru.New[string, memoryItem](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryStore{
		lru:  l,
		tags: make(map[string]map[string]struct{}),
		now:  time.Now,
	}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		s.lru.Remove(key)
		return nil, false, nil
	}
	return item.data, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	item := memoryItem{data: value}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Add(key, item)
	for _, tag := range tags {
		members, ok := s.tags[tag]
		if !ok {
			members = make(map[string]struct{})
			s.tags[tag] = members
		}
		members[key] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Flush(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.tags[tag] {
		s.lru.Remove(key)
	}
	delete(s.tags, tag)
	return nil
}
