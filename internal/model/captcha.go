package model

import "time"

// Captcha 文本验证码，校验成功后删除
type Captcha struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"token"`
	Value     string    `gorm:"size:10;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Captcha) TableName() string {
	return "captchas"
}
