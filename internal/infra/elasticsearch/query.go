package elasticsearch

import (
	"strings"
)

// SearchQuery 搜索参数
type SearchQuery struct {
	Q         string
	Page      int
	PerPage   int
	Highlight bool
	PreTag    string
	PostTag   string
}

// SearchHit 单条命中
type SearchHit struct {
	ID        int64           `json:"id"`
	Score     *float64        `json:"score,omitempty"`
	Document  CommentDocument `json:"document"`
	Highlight []string        `json:"highlight,omitempty"`
}

// SearchResult 搜索结果，Total 为精确命中总数
type SearchResult struct {
	Hits  []SearchHit `json:"hits"`
	Total int64       `json:"total"`
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// EscapeWildcard 转义用户输入中的通配符，避免被当作模式
func EscapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

func containsPattern(q string) string {
	return "*" + EscapeWildcard(strings.ToLower(q)) + "*"
}

// BuildSearchBody 构造评论搜索请求体
func BuildSearchBody(q SearchQuery) map[string]interface{} {
	text := strings.TrimSpace(q.Q)

	var query map[string]interface{}
	if text == "" {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"match": map[string]interface{}{
							"text_raw": map[string]interface{}{"query": text},
						},
					},
					map[string]interface{}{
						"wildcard": map[string]interface{}{
							"user_name": map[string]interface{}{
								"value":            containsPattern(text),
								"case_insensitive": true,
							},
						},
					},
					map[string]interface{}{
						"wildcard": map[string]interface{}{
							"email": map[string]interface{}{
								"value":            containsPattern(text),
								"case_insensitive": true,
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		}
	}

	body := map[string]interface{}{
		"query":            query,
		"from":             (q.Page - 1) * q.PerPage,
		"size":             q.PerPage,
		"track_total_hits": true,
		// id 作为次级排序，保证同一时间戳的文档在翻页时顺序稳定
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]string{"order": "desc"}},
			map[string]interface{}{"id": map[string]string{"order": "desc"}},
		},
	}

	if q.Highlight && text != "" {
		preTag, postTag := q.PreTag, q.PostTag
		if preTag == "" {
			preTag = "<mark>"
		}
		if postTag == "" {
			postTag = "</mark>"
		}
		body["highlight"] = map[string]interface{}{
			"fields": map[string]interface{}{
				"text_raw": map[string]interface{}{},
			},
			"pre_tags":  []string{preTag},
			"post_tags": []string{postTag},
		}
	}

	return body
}
