package elasticsearch

import (
	"time"

	"comments-go/internal/model"
)

// CommentDocument 写入 ES 的评论文档，_id 与评论 ID 一致
type CommentDocument struct {
	ID        int64  `json:"id"`
	ParentID  *int64 `json:"parent_id"`
	IsRoot    bool   `json:"is_root"`
	UserName  string `json:"user_name"`
	Email     string `json:"email"`
	TextRaw   string `json:"text_raw"`
	CreatedAt string `json:"created_at"`
}

func commentToDocument(c *model.Comment) *CommentDocument {
	return &CommentDocument{
		ID:        c.ID,
		ParentID:  c.ParentID,
		IsRoot:    c.IsRoot(),
		UserName:  c.UserName,
		Email:     c.Email,
		TextRaw:   c.TextRaw,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CommentsIndexBody 评论索引的 settings + mappings，字段集合固定且为 strict 模式
func CommentsIndexBody() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]interface{}{
				"normalizer": map[string]interface{}{
					"lc": map[string]interface{}{
						"type":   "custom",
						"filter": []string{"lowercase", "asciifolding"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"dynamic": "strict",
			"properties": map[string]interface{}{
				"id":         map[string]interface{}{"type": "long"},
				"parent_id":  map[string]interface{}{"type": "long"},
				"is_root":    map[string]interface{}{"type": "boolean"},
				"user_name":  map[string]interface{}{"type": "keyword", "normalizer": "lc"},
				"email":      map[string]interface{}{"type": "keyword", "normalizer": "lc"},
				"text_raw":   map[string]interface{}{"type": "text"},
				"created_at": map[string]interface{}{"type": "date"},
			},
		},
	}
}
