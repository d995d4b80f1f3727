package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"comments-go/internal/config"
	"comments-go/internal/model"
	"comments-go/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxPerPage     = 200
)

// IndexManager 管理评论索引的生命周期（创建/删除/别名）以及文档读写。
// 文档写入与搜索只通过别名进行，物理索引名只在管理操作中出现。
type IndexManager struct {
	client     *elasticsearch.Client
	index      string
	alias      string
	timeout    time.Duration
	maxPerPage int
}

func NewIndexManager(es *elasticsearch.Client, cfg *config.ElasticsearchConfig) *IndexManager {
	m := &IndexManager{
		client:     es,
		index:      cfg.Index,
		alias:      cfg.Alias,
		timeout:    cfg.RequestTimeoutDuration(),
		maxPerPage: cfg.MaxPerPage,
	}
	if m.index == "" {
		m.index = "comments_v1"
	}
	if m.alias == "" {
		m.alias = "comments"
	}
	if m.timeout <= 0 {
		m.timeout = defaultRequestTimeout
	}
	if m.maxPerPage <= 0 {
		m.maxPerPage = defaultMaxPerPage
	}
	return m
}

// IndexName 物理索引名
func (m *IndexManager) IndexName() string {
	return m.index
}

// AliasName 别名
func (m *IndexManager) AliasName() string {
	return m.alias
}

func (m *IndexManager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func (m *IndexManager) ready() error {
	if m == nil || m.client == nil {
		return ErrClientNotInitialized
	}
	return nil
}

func closeBody(resp *esapi.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func engineError(op string, resp *esapi.Response) error {
	return fmt.Errorf("%w: %s: %s", ErrEngineFailure, op, resp.String())
}

// Exists HEAD {name}，200 视为存在，其他状态码一律视为不存在；只有传输层错误才返回 error
func (m *IndexManager) Exists(ctx context.Context, name string) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Indices.Exists(
		[]string{name},
		m.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", ErrEngineFailure, name, err)
	}
	defer closeBody(resp)

	return resp.StatusCode == http.StatusOK, nil
}

// Create 创建索引。已存在时返回 false；创建后通过再次探测确认索引可见
func (m *IndexManager) Create(ctx context.Context, body []byte, name string) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}

	exists, err := m.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Warn("Elasticsearch index already exists", zap.String("index", name))
		return false, nil
	}

	createCtx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Indices.Create(
		name,
		m.client.Indices.Create.WithContext(createCtx),
		m.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return false, fmt.Errorf("%w: create index %s: %v", ErrEngineFailure, name, err)
	}
	defer closeBody(resp)

	if resp.IsError() {
		logger.Error("Elasticsearch create index failed",
			zap.String("index", name),
			zap.String("response", resp.String()),
		)
		return false, nil
	}

	return m.Exists(ctx, name)
}

// Delete 删除索引，仅用于强制重建
func (m *IndexManager) Delete(ctx context.Context, name string) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Indices.Delete(
		[]string{name},
		m.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("%w: delete index %s: %v", ErrEngineFailure, name, err)
	}
	defer closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.IsError() {
		return false, engineError("delete index "+name, resp)
	}
	return true, nil
}

// EnsureAlias 在一次 _aliases 请求中把别名从所有索引上摘除并挂到 name 上
func (m *IndexManager) EnsureAlias(ctx context.Context, name, alias string) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{
				"remove": map[string]interface{}{"index": "*", "alias": alias, "must_exist": false},
			},
			map[string]interface{}{
				"add": map[string]interface{}{"index": name, "alias": alias},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("encode alias actions: %w", err)
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Indices.UpdateAliases(
		bytes.NewReader(payload),
		m.client.Indices.UpdateAliases.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("%w: update aliases: %v", ErrEngineFailure, err)
	}
	defer closeBody(resp)

	if resp.IsError() {
		return false, engineError("update aliases", resp)
	}

	logger.Info("Elasticsearch alias switched", zap.String("alias", alias), zap.String("index", name))
	return true, nil
}

// IndexDocument 按评论 ID upsert 文档（写别名）
func (m *IndexManager) IndexDocument(ctx context.Context, c *model.Comment) error {
	if err := m.ready(); err != nil {
		return err
	}

	body, err := json.Marshal(commentToDocument(c))
	if err != nil {
		return fmt.Errorf("encode comment document %d: %w", c.ID, err)
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Index(
		m.alias,
		bytes.NewReader(body),
		m.client.Index.WithContext(ctx),
		m.client.Index.WithDocumentID(strconv.FormatInt(c.ID, 10)),
	)
	if err != nil {
		return fmt.Errorf("%w: index document %d: %v", ErrEngineFailure, c.ID, err)
	}
	defer closeBody(resp)

	if resp.IsError() {
		return engineError(fmt.Sprintf("index document %d", c.ID), resp)
	}

	logger.Debug("Comment indexed", zap.Int64("comment_id", c.ID))
	return nil
}

// DeleteDocument 按 ID 删除文档（写别名），文档不存在不视为错误
func (m *IndexManager) DeleteDocument(ctx context.Context, id int64) error {
	if err := m.ready(); err != nil {
		return err
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Delete(
		m.alias,
		strconv.FormatInt(id, 10),
		m.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: delete document %d: %v", ErrEngineFailure, id, err)
	}
	defer closeBody(resp)

	if resp.IsError() && resp.StatusCode != http.StatusNotFound {
		return engineError(fmt.Sprintf("delete document %d", id), resp)
	}
	return nil
}

// BulkIndex 批量写入文档，用于回填
func (m *IndexManager) BulkIndex(ctx context.Context, comments []model.Comment) (success, failed int, err error) {
	if err := m.ready(); err != nil {
		return 0, len(comments), err
	}

	var buf strings.Builder
	for i := range comments {
		doc, err := json.Marshal(commentToDocument(&comments[i]))
		if err != nil {
			return 0, len(comments), fmt.Errorf("encode comment document %d: %w", comments[i].ID, err)
		}
		buf.WriteString(fmt.Sprintf(`{"index":{"_index":%q,"_id":"%d"}}`, m.alias, comments[i].ID))
		buf.WriteString("\n")
		buf.Write(doc)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, 0, nil
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Bulk(
		strings.NewReader(buf.String()),
		m.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return 0, len(comments), fmt.Errorf("%w: bulk: %v", ErrEngineFailure, err)
	}
	defer closeBody(resp)

	if resp.IsError() {
		return 0, len(comments), engineError("bulk", resp)
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return 0, len(comments), fmt.Errorf("decode bulk response: %w", err)
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk index completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Source    CommentDocument     `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search 对别名执行搜索，非 2xx 响应返回 ErrEngineFailure，不会被当作空结果
func (m *IndexManager) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 1
	}
	if q.PerPage > m.maxPerPage {
		q.PerPage = m.maxPerPage
	}

	body, err := json.Marshal(BuildSearchBody(q))
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Search(
		m.client.Search.WithContext(ctx),
		m.client.Search.WithIndex(m.alias),
		m.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrEngineFailure, err)
	}
	defer closeBody(resp)

	if resp.IsError() {
		return nil, engineError("search", resp)
	}

	var esResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrEngineFailure, err)
	}

	result := &SearchResult{
		Hits:  make([]SearchHit, 0, len(esResp.Hits.Hits)),
		Total: esResp.Hits.Total.Value,
	}
	for _, h := range esResp.Hits.Hits {
		id := h.Source.ID
		if id == 0 {
			id, _ = strconv.ParseInt(h.ID, 10, 64)
		}
		result.Hits = append(result.Hits, SearchHit{
			ID:        id,
			Score:     h.Score,
			Document:  h.Source,
			Highlight: h.Highlight["text_raw"],
		})
	}
	return result, nil
}

// InitIndexes 启动时确保索引与别名存在，不做强制重建
func (m *IndexManager) InitIndexes(ctx context.Context) error {
	exists, err := m.Exists(ctx, m.index)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if !exists {
		body, err := json.Marshal(CommentsIndexBody())
		if err != nil {
			return fmt.Errorf("encode index body: %w", err)
		}
		created, err := m.Create(ctx, body, m.index)
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("create index %s failed", m.index)
		}
		logger.Info("Elasticsearch comments index created", zap.String("index", m.index))
	}
	if _, err := m.EnsureAlias(ctx, m.index, m.alias); err != nil {
		return err
	}
	return nil
}
