package repository

import (
	"context"
	"errors"
	"time"

	"comments-go/internal/model"

	"gorm.io/gorm"
)

type CaptchaRepository struct {
	db *gorm.DB
}

func NewCaptchaRepository(db *gorm.DB) *CaptchaRepository {
	return &CaptchaRepository{db: db}
}

func (r *CaptchaRepository) Create(ctx context.Context, captcha *model.Captcha) error {
	return r.db.WithContext(ctx).Create(captcha).Error
}

// FindValid 查找未过期的验证码，不存在时返回 nil, nil
func (r *CaptchaRepository) FindValid(ctx context.Context, token string, now time.Time) (*model.Captcha, error) {
	var captcha model.Captcha
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at >= ?", token, now).
		First(&captcha).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &captcha, nil
}

func (r *CaptchaRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Captcha{}, id).Error
}

// DeleteExpired 清理过期验证码
func (r *CaptchaRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.Captcha{})
	return result.RowsAffected, result.Error
}
