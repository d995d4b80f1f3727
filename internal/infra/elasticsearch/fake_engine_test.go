package elasticsearch

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"comments-go/internal/config"

	"github.com/stretchr/testify/require"
)

// fakeEngine 有状态的 Elasticsearch 替身，只实现评论索引用到的接口
type fakeEngine struct {
	mu sync.Mutex

	srv *httptest.Server

	indices map[string]map[string]json.RawMessage // index -> id -> source
	aliases map[string]string                     // alias -> index

	searchCalls  int
	lastSearch   map[string]interface{}
	failSearch   bool
	failWrites   bool
	dropCreates  bool
	aliasActions int
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	fe := &fakeEngine{
		indices: map[string]map[string]json.RawMessage{},
		aliases: map[string]string{},
	}
	fe.srv = httptest.NewServer(http.HandlerFunc(fe.serve))
	t.Cleanup(fe.srv.Close)
	return fe
}

func newTestManager(t *testing.T, fe *fakeEngine) *IndexManager {
	t.Helper()
	cfg := &config.ElasticsearchConfig{
		Hosts:          []string{fe.srv.URL},
		Index:          "comments_v1",
		Alias:          "comments",
		ConnectTimeout: 1,
		RequestTimeout: 2,
		MaxPerPage:     200,
	}
	es, err := NewClient(cfg)
	require.NoError(t, err)
	return NewIndexManager(es, cfg)
}

func (fe *fakeEngine) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fe *fakeEngine) resolve(name string) (string, bool) {
	if idx, ok := fe.aliases[name]; ok {
		return idx, true
	}
	if _, ok := fe.indices[name]; ok {
		return name, true
	}
	return "", false
}

func (fe *fakeEngine) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")

	fe.mu.Lock()
	defer fe.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.URL.Path == "/":
		fe.writeJSON(w, http.StatusOK, map[string]interface{}{
			"version": map[string]interface{}{"number": "8.19.0", "build_flavor": "default"},
			"tagline": "You Know, for Search",
		})
	case r.URL.Path == "/_aliases" && r.Method == http.MethodPost:
		fe.handleAliases(w, r)
	case r.URL.Path == "/_bulk":
		fe.handleBulk(w, r)
	case len(parts) == 1:
		fe.handleIndex(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "_search":
		fe.handleSearch(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "_doc":
		fe.handleDoc(w, r, parts[0], parts[2])
	default:
		fe.writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "no handler"})
	}
}

func (fe *fakeEngine) handleIndex(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodHead:
		if _, ok := fe.resolve(name); ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		if _, ok := fe.indices[name]; ok {
			fe.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": map[string]interface{}{"type": "resource_already_exists_exception"},
			})
			return
		}
		if !fe.dropCreates {
			fe.indices[name] = map[string]json.RawMessage{}
		}
		fe.writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true, "index": name})
	case http.MethodDelete:
		if _, ok := fe.indices[name]; !ok {
			fe.writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"error": map[string]interface{}{"type": "index_not_found_exception"},
			})
			return
		}
		delete(fe.indices, name)
		for alias, idx := range fe.aliases {
			if idx == name {
				delete(fe.aliases, alias)
			}
		}
		fe.writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fe *fakeEngine) handleAliases(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actions []map[string]struct {
			Index string `json:"index"`
			Alias string `json:"alias"`
		} `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fe.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	fe.aliasActions++

	// 全部动作校验通过后一次性生效
	next := map[string]string{}
	for k, v := range fe.aliases {
		next[k] = v
	}
	for _, action := range req.Actions {
		if rm, ok := action["remove"]; ok {
			if rm.Index == "*" || next[rm.Alias] == rm.Index {
				delete(next, rm.Alias)
			}
		}
		if add, ok := action["add"]; ok {
			if _, exists := fe.indices[add.Index]; !exists {
				fe.writeJSON(w, http.StatusNotFound, map[string]interface{}{
					"error": map[string]interface{}{"type": "index_not_found_exception"},
				})
				return
			}
			next[add.Alias] = add.Index
		}
	}
	fe.aliases = next
	fe.writeJSON(w, http.StatusOK, map[string]interface{}{"acknowledged": true})
}

var strictFields = func() map[string]bool {
	props := CommentsIndexBody()["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	out := map[string]bool{}
	for k := range props {
		out[k] = true
	}
	return out
}()

func (fe *fakeEngine) validate(source json.RawMessage) bool {
	var doc map[string]interface{}
	if err := json.Unmarshal(source, &doc); err != nil {
		return false
	}
	for k := range doc {
		if !strictFields[k] {
			return false
		}
	}
	return true
}

func (fe *fakeEngine) handleDoc(w http.ResponseWriter, r *http.Request, target, id string) {
	if fe.failWrites {
		fe.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "boom"})
		return
	}
	idx, ok := fe.resolve(target)
	if !ok {
		fe.writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{"type": "index_not_found_exception"},
		})
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		if !fe.validate(body) {
			fe.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": map[string]interface{}{"type": "strict_dynamic_mapping_exception"},
			})
			return
		}
		result := "created"
		status := http.StatusCreated
		if _, exists := fe.indices[idx][id]; exists {
			result = "updated"
			status = http.StatusOK
		}
		fe.indices[idx][id] = body
		fe.writeJSON(w, status, map[string]interface{}{"_index": idx, "_id": id, "result": result})
	case http.MethodDelete:
		if _, exists := fe.indices[idx][id]; !exists {
			fe.writeJSON(w, http.StatusNotFound, map[string]interface{}{"_id": id, "result": "not_found"})
			return
		}
		delete(fe.indices[idx], id)
		fe.writeJSON(w, http.StatusOK, map[string]interface{}{"_id": id, "result": "deleted"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fe *fakeEngine) handleBulk(w http.ResponseWriter, r *http.Request) {
	var items []interface{}
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)
	for scanner.Scan() {
		var meta struct {
			Index struct {
				Index string `json:"_index"`
				ID    string `json:"_id"`
			} `json:"index"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
			continue
		}
		if !scanner.Scan() {
			break
		}
		source := json.RawMessage(append([]byte(nil), scanner.Bytes()...))

		status := http.StatusCreated
		idx, ok := fe.resolve(meta.Index.Index)
		switch {
		case !ok:
			status = http.StatusNotFound
		case !fe.validate(source):
			status = http.StatusBadRequest
		default:
			fe.indices[idx][meta.Index.ID] = source
		}
		items = append(items, map[string]interface{}{
			"index": map[string]interface{}{"_id": meta.Index.ID, "status": status},
		})
	}
	fe.writeJSON(w, http.StatusOK, map[string]interface{}{"errors": false, "items": items})
}

func (fe *fakeEngine) handleSearch(w http.ResponseWriter, r *http.Request, target string) {
	fe.searchCalls++
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	fe.lastSearch = body

	if fe.failSearch {
		fe.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "search failed"})
		return
	}
	idx, ok := fe.resolve(target)
	if !ok {
		fe.writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{"type": "index_not_found_exception"},
		})
		return
	}

	docs := make([]CommentDocument, 0, len(fe.indices[idx]))
	for _, raw := range fe.indices[idx] {
		var doc CommentDocument
		_ = json.Unmarshal(raw, &doc)
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt != docs[j].CreatedAt {
			return docs[i].CreatedAt > docs[j].CreatedAt
		}
		return docs[i].ID > docs[j].ID
	})

	from, _ := body["from"].(float64)
	size, _ := body["size"].(float64)
	start := int(from)
	if start > len(docs) {
		start = len(docs)
	}
	end := start + int(size)
	if end > len(docs) {
		end = len(docs)
	}

	hits := make([]interface{}, 0, end-start)
	for _, doc := range docs[start:end] {
		hits = append(hits, map[string]interface{}{
			"_id":       strconv.FormatInt(doc.ID, 10),
			"_score":    nil,
			"_source":   doc,
			"highlight": map[string]interface{}{"text_raw": []string{"<mark>" + doc.TextRaw + "</mark>"}},
		})
	}
	fe.writeJSON(w, http.StatusOK, map[string]interface{}{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(docs), "relation": "eq"},
			"hits":  hits,
		},
	})
}

func (fe *fakeEngine) docCount(index string) int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return len(fe.indices[index])
}

func (fe *fakeEngine) aliasTarget(alias string) (string, bool) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	idx, ok := fe.aliases[alias]
	return idx, ok
}
