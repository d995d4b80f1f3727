package dto

import (
	"time"

	"comments-go/internal/model"
)

// CommentListQuery 评论列表查询参数
type CommentListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Sort      string `form:"sort" binding:"omitempty,oneof=user_name email created_at"`
	Direction string `form:"direction" binding:"omitempty,sort_direction"`
}

// CommentCreateForm 发表评论表单（multipart/form-data，附件字段名 file）
type CommentCreateForm struct {
	ParentID      *int64 `form:"parent_id" binding:"omitempty,min=1"`
	UserName      string `form:"user_name" binding:"required,max=70,alphanum"`
	Email         string `form:"email" binding:"required,email,max=255"`
	HomePage      string `form:"home_page" binding:"omitempty,url,max=255"`
	CaptchaToken  string `form:"captcha_token" binding:"required,max=64"`
	CaptchaAnswer string `form:"captcha_answer" binding:"required,max=20"`
	Text          string `form:"text" binding:"required,max=5000"`
}

// CommentPreviewRequest 预览请求
type CommentPreviewRequest struct {
	Text string `json:"text" form:"text" binding:"required,max=5000"`
}

// CommentPreviewData 预览结果
type CommentPreviewData struct {
	HTML string `json:"html"`
}

// CommentCreatedData 发表评论结果
type CommentCreatedData struct {
	ID int64 `json:"id"`
}

// AttachmentInfo 附件信息
type AttachmentInfo struct {
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	Type         string `json:"type"`
}

// CommentInfo 评论信息
type CommentInfo struct {
	ID         int64           `json:"id"`
	ParentID   *int64          `json:"parent_id"`
	UserName   string          `json:"user_name"`
	Email      string          `json:"email"`
	HomePage   *string         `json:"home_page"`
	TextHTML   string          `json:"text_html"`
	Attachment *AttachmentInfo `json:"attachment"`
	CreatedAt  string          `json:"created_at"`
	Highlight  []string        `json:"highlight,omitempty"`
}

// PageMeta 分页信息
type PageMeta struct {
	Query       *string `json:"q,omitempty"`
	CurrentPage int     `json:"current_page"`
	PerPage     int     `json:"per_page"`
	Total       int64   `json:"total"`
	LastPage    int64   `json:"last_page"`
}

// CommentListData 评论树数据
type CommentListData struct {
	Roots           []CommentInfo `json:"roots"`
	DescendantsFlat []CommentInfo `json:"descendants_flat"`
	Meta            PageMeta      `json:"meta"`
}

// AttachmentURLFunc 根据存储路径生成公开地址
type AttachmentURLFunc func(path string) string

// ToCommentInfo 模型转换为输出结构
func ToCommentInfo(c *model.Comment, attachmentURL AttachmentURLFunc) CommentInfo {
	info := CommentInfo{
		ID:        c.ID,
		ParentID:  c.ParentID,
		UserName:  c.UserName,
		Email:     c.Email,
		HomePage:  c.HomePage,
		TextHTML:  c.TextHTML,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.AttachmentPath != nil {
		att := &AttachmentInfo{URL: *c.AttachmentPath}
		if attachmentURL != nil {
			att.URL = attachmentURL(*c.AttachmentPath)
		}
		if c.AttachmentOriginalName != nil {
			att.OriginalName = *c.AttachmentOriginalName
		}
		if c.AttachmentType != nil {
			att.Type = *c.AttachmentType
		}
		info.Attachment = att
	}
	return info
}

// ToCommentInfos 批量转换，空输入返回空切片
func ToCommentInfos(comments []model.Comment, attachmentURL AttachmentURLFunc) []CommentInfo {
	out := make([]CommentInfo, 0, len(comments))
	for i := range comments {
		out = append(out, ToCommentInfo(&comments[i], attachmentURL))
	}
	return out
}
