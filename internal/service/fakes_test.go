package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"comments-go/internal/cache"
	"comments-go/internal/config"
	infraES "comments-go/internal/infra/elasticsearch"
	infraKafka "comments-go/internal/infra/kafka"
	"comments-go/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore 内存版评论存储，记录调用次数
type memStore struct {
	mu            sync.Mutex
	comments      map[int64]*model.Comment
	nextID        int64
	findCalls     int
	paginateCalls int
	findErr       error
	createErr     error
	getErr        error
}

func newMemStore() *memStore {
	return &memStore{comments: map[int64]*model.Comment{}}
}

// put 直接写入指定 id 的评论（可构造异常数据）
func (s *memStore) put(id int64, parentID *int64, name string, at time.Time) *model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Comment{ID: id, ParentID: parentID, UserName: name, Email: name + "@example.com", TextRaw: name, TextHTML: name, CreatedAt: at}
	s.comments[id] = c
	if id > s.nextID {
		s.nextID = id
	}
	return c
}

func (s *memStore) Create(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) GetByIDs(_ context.Context, ids []int64) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Comment{}
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out = append(out, *c)
		}
	}
	// 与数据库一样不保证顺序
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) FindByParentIDs(_ context.Context, parentIDs []int64) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	set := map[int64]bool{}
	for _, id := range parentIDs {
		set[id] = true
	}
	out := []model.Comment{}
	for _, c := range s.comments {
		if c.ParentID != nil && set[*c.ParentID] {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) PaginateRoots(_ context.Context, sortField, dir string, pageSize, page int) (*model.Page[model.Comment], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paginateCalls++
	roots := []model.Comment{}
	for _, c := range s.comments {
		if c.ParentID == nil {
			roots = append(roots, *c)
		}
	}
	less := func(a, b model.Comment) bool {
		switch sortField {
		case "user_name":
			if a.UserName != b.UserName {
				return a.UserName < b.UserName
			}
		case "email":
			if a.Email != b.Email {
				return a.Email < b.Email
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.Slice(roots, func(i, j int) bool {
		if dir == "asc" {
			return less(roots[i], roots[j])
		}
		return less(roots[j], roots[i])
	})
	total := int64(len(roots))
	start := (page - 1) * pageSize
	if start > len(roots) {
		start = len(roots)
	}
	end := start + pageSize
	if end > len(roots) {
		end = len(roots)
	}
	return model.NewPage(roots[start:end], page, pageSize, total), nil
}

func (s *memStore) CountRange(_ context.Context, fromID, toID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id := range s.comments {
		if id >= fromID && (toID <= 0 || id <= toID) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) ChunkByID(_ context.Context, fromID, toID int64, size int, fn func([]model.Comment) error) error {
	s.mu.Lock()
	ids := []int64{}
	for id := range s.comments {
		if id >= fromID && (toID <= 0 || id <= toID) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	all := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		all = append(all, *s.comments[id])
	}
	s.mu.Unlock()

	for start := 0; start < len(all); start += size {
		end := start + size
		if end > len(all) {
			end = len(all)
		}
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// memCaptchaStore 内存版验证码存储
type memCaptchaStore struct {
	mu     sync.Mutex
	rows   map[string]*model.Captcha
	nextID int64
}

func newMemCaptchaStore() *memCaptchaStore {
	return &memCaptchaStore{rows: map[string]*model.Captcha{}}
}

func (s *memCaptchaStore) Create(_ context.Context, c *model.Captcha) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	cp := *c
	s.rows[c.Token] = &cp
	return nil
}

func (s *memCaptchaStore) FindValid(_ context.Context, token string, now time.Time) (*model.Captcha, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[token]
	if !ok || c.ExpiresAt.Before(now) {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memCaptchaStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, c := range s.rows {
		if c.ID == id {
			delete(s.rows, token)
		}
	}
	return nil
}

func (s *memCaptchaStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// stubEngine 可编程的搜索引擎
type stubEngine struct {
	calls  int
	last   infraES.SearchQuery
	result *infraES.SearchResult
	err    error
}

func (e *stubEngine) Search(_ context.Context, q infraES.SearchQuery) (*infraES.SearchResult, error) {
	e.calls++
	e.last = q
	if e.err != nil {
		return nil, e.err
	}
	if e.result == nil {
		return &infraES.SearchResult{}, nil
	}
	return e.result, nil
}

// recordingIndexer 记录文档写入，可按次数失败
type recordingIndexer struct {
	mu       sync.Mutex
	indexed  []int64
	deleted  []int64
	failures int
	calls    int
}

func (r *recordingIndexer) IndexDocument(_ context.Context, c *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failures > 0 {
		r.failures--
		return errors.New("engine unavailable")
	}
	r.indexed = append(r.indexed, c.ID)
	return nil
}

func (r *recordingIndexer) DeleteDocument(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failures > 0 {
		r.failures--
		return errors.New("engine unavailable")
	}
	r.deleted = append(r.deleted, id)
	return nil
}

// recordingSender 记录投递到队列的任务
type recordingSender struct {
	mu    sync.Mutex
	tasks map[string][]infraKafka.IndexTask
	err   error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{tasks: map[string][]infraKafka.IndexTask{}}
}

func (r *recordingSender) Send(_ context.Context, topic string, task *infraKafka.IndexTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.tasks[topic] = append(r.tasks[topic], *task)
	return nil
}

func (r *recordingSender) count(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks[topic])
}

// memStorage 内存对象存储
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Put(_ context.Context, bucket, objectName string, r io.Reader, _ int64, _ string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+objectName] = data
	return objectName, nil
}

func (m *memStorage) Remove(_ context.Context, bucket, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+objectName)
	return nil
}

func (m *memStorage) URL(bucket, objectName string) string {
	return "http://storage.local/" + bucket + "/" + objectName
}

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// recordingBroadcaster 记录推送的事件
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
	data   []interface{}
	err    error
}

func (b *recordingBroadcaster) Publish(_ context.Context, event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, event)
	b.data = append(b.data, payload)
	return nil
}

// failingCache 所有操作都返回错误
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration, ...string) error {
	return errors.New("cache down")
}

func (failingCache) Flush(context.Context, string) error { return errors.New("cache down") }

func newMemoryCache(t *testing.T) *cache.MemoryStore {
	t.Helper()
	c, err := cache.NewMemoryStore(128)
	require.NoError(t, err)
	return c
}

func commentsConfig() *config.CommentsConfig {
	return &config.CommentsConfig{PageSize: 25, CacheTTL: 30, MaxDepth: 1000}
}

func ptr[T any](v T) *T { return &v }
