package model

// 实时推送频道与事件名
const (
	CommentsChannel     = "comments"
	CommentCreatedEvent = "CommentCreated"
)

// CommentCreated 评论创建事件
type CommentCreated struct {
	CommentID int64  `json:"comment_id"`
	ParentID  *int64 `json:"parent_id"`
}
