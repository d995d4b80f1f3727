package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"comments-go/internal/model"
	"comments-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lifecycle struct {
	exists  bool
	created int
	deleted int
	alias   string
	indexed int
}

func (l *lifecycle) Exists(context.Context, string) (bool, error) { return l.exists, nil }
func (l *lifecycle) Create(context.Context, []byte, string) (bool, error) {
	l.created++
	l.exists = true
	return true, nil
}
func (l *lifecycle) Delete(context.Context, string) (bool, error) {
	deleted := l.exists
	if deleted {
		l.deleted++
	}
	l.exists = false
	return deleted, nil
}
func (l *lifecycle) EnsureAlias(_ context.Context, name, _ string) (bool, error) {
	l.alias = name
	return true, nil
}
func (l *lifecycle) BulkIndex(_ context.Context, comments []model.Comment) (int, int, error) {
	l.indexed += len(comments)
	return len(comments), 0, nil
}
func (l *lifecycle) IndexName() string { return "comments_v1" }
func (l *lifecycle) AliasName() string { return "comments" }

type chunker struct{ store *commentStore }

func (c chunker) CountRange(context.Context, int64, int64) (int64, error) {
	return int64(len(c.store.comments)), nil
}

func (c chunker) ChunkByID(ctx context.Context, fromID, toID int64, size int, fn func([]model.Comment) error) error {
	var batch []model.Comment
	for id := fromID; id <= c.store.nextID; id++ {
		if toID > 0 && id > toID {
			break
		}
		if cm, err := c.store.GetByID(ctx, id); err == nil {
			batch = append(batch, *cm)
		}
		if len(batch) == size {
			if err := fn(batch); err != nil {
				return err
			}
			batch = nil
		}
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func adminFixture(t *testing.T) (*gin.Engine, *lifecycle, *commentStore) {
	t.Helper()
	lc := &lifecycle{}
	store := newCommentStore()
	h := NewIndexAdminHandler(service.NewIndexAdminService(lc, chunker{store: store}))

	r := gin.New()
	r.POST("/admin/search/index", h.CreateIndex)
	r.POST("/admin/search/sync", h.Sync)
	return r, lc, store
}

func TestIndexAdminHandler_CreateIndex(t *testing.T) {
	r, lc, _ := adminFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/search/index", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, lc.created)
	assert.Equal(t, "comments_v1", lc.alias)

	req := httptest.NewRequest(http.MethodPost, "/admin/search/index", strings.NewReader(`{"force":true}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, lc.deleted)
	assert.Equal(t, 2, lc.created)
}

func TestIndexAdminHandler_Sync(t *testing.T) {
	r, lc, store := adminFixture(t)
	for i := 0; i < 5; i++ {
		store.add(nil, "u")
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/search/sync", strings.NewReader(`{"chunk":2,"from_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res service.SyncResult
	decode(t, w, &res)
	assert.Equal(t, 4, res.Success)
	assert.Equal(t, 4, lc.indexed)
}

func TestIndexAdminHandler_SyncRejectsBadBody(t *testing.T) {
	r, _, _ := adminFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/search/sync", strings.NewReader(`{"chunk":0,"from_id":-3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
