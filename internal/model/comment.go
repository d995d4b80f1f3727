package model

import "time"

// 附件类型
const (
	AttachmentImage = "image"
	AttachmentText  = "text"
)

// Comment 评论模型，parent_id 自关联构成评论树；创建后不可修改
type Comment struct {
	ID                     int64     `gorm:"primaryKey;autoIncrement;comment:评论ID" json:"id"`
	ParentID               *int64    `gorm:"index:idx_comments_parent_created,priority:1;comment:父评论ID" json:"parent_id"`
	UserName               string    `gorm:"size:70;not null;index:idx_comments_user_name;comment:用户名" json:"user_name"`
	Email                  string    `gorm:"size:255;not null;index:idx_comments_email;comment:邮箱" json:"email"`
	HomePage               *string   `gorm:"size:255;comment:主页" json:"home_page"`
	TextHTML               string    `gorm:"type:text;not null;comment:清洗后的HTML" json:"text_html"`
	TextRaw                string    `gorm:"type:text;comment:原始输入" json:"text_raw"`
	AttachmentType         *string   `gorm:"size:16;comment:附件类型" json:"attachment_type"`
	AttachmentPath         *string   `gorm:"size:255;comment:附件存储路径" json:"attachment_path"`
	AttachmentOriginalName *string   `gorm:"size:255;comment:附件原始文件名" json:"attachment_original_name"`
	IP                     string    `gorm:"size:64;comment:客户端IP" json:"ip"`
	UserAgent              string    `gorm:"size:255;comment:客户端UA" json:"user_agent"`
	CreatedAt              time.Time `gorm:"autoCreateTime;index:idx_comments_created_at;index:idx_comments_parent_created,priority:2;comment:创建时间" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	Parent *Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsRoot 是否为顶级评论
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
