package dto

// CommentSearchQuery 搜索查询参数
type CommentSearchQuery struct {
	Q       string `form:"q" binding:"required,min=2,max=200"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=50"`
}

// CommentSearchData 搜索结果
type CommentSearchData struct {
	Items []CommentInfo `json:"items"`
	Meta  PageMeta      `json:"meta"`
}

// IndexCreateRequest 创建索引
type IndexCreateRequest struct {
	Force bool `json:"force"`
}

// IndexSyncRequest 回填索引
type IndexSyncRequest struct {
	Chunk  int   `json:"chunk" binding:"omitempty,min=1,max=5000"`
	FromID int64 `json:"from_id" binding:"omitempty,min=1"`
	ToID   int64 `json:"to_id" binding:"omitempty,min=1"`
}
