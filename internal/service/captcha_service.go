package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"comments-go/internal/config"
	"comments-go/internal/model"
)

var (
	ErrCaptchaInvalid   = errors.New("验证码不存在或已过期")
	ErrCaptchaIncorrect = errors.New("验证码错误")
)

const (
	tokenAlphabet   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	captchaAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	tokenLength     = 32
)

// CaptchaChallenge 下发给客户端的验证码
type CaptchaChallenge struct {
	Token     string    `json:"token"`
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CaptchaService struct {
	store  CaptchaStore
	length int
	ttl    time.Duration
	now    func() time.Time
}

func NewCaptchaService(store CaptchaStore, cfg *config.CaptchaConfig) *CaptchaService {
	s := &CaptchaService{
		store:  store,
		length: cfg.Length,
		ttl:    cfg.TTLDuration(),
		now:    time.Now,
	}
	if s.length <= 0 {
		s.length = 6
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	return s
}

// Issue 生成新的验证码
func (s *CaptchaService) Issue(ctx context.Context) (*CaptchaChallenge, error) {
	token, err := randomString(tokenAlphabet, tokenLength)
	if err != nil {
		return nil, err
	}
	value, err := randomString(captchaAlphabet, s.length)
	if err != nil {
		return nil, err
	}

	captcha := &model.Captcha{
		Token:     token,
		Value:     value,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.Create(ctx, captcha); err != nil {
		return nil, fmt.Errorf("save captcha: %w", err)
	}

	return &CaptchaChallenge{Token: token, Challenge: value, ExpiresAt: captcha.ExpiresAt}, nil
}

// Verify 校验并消费验证码，比较时忽略大小写和首尾空白
func (s *CaptchaService) Verify(ctx context.Context, token, answer string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrCaptchaInvalid
	}

	captcha, err := s.store.FindValid(ctx, token, s.now())
	if err != nil {
		return fmt.Errorf("load captcha: %w", err)
	}
	if captcha == nil {
		return ErrCaptchaInvalid
	}

	if !strings.EqualFold(strings.TrimSpace(answer), captcha.Value) {
		return ErrCaptchaIncorrect
	}

	if err := s.store.Delete(ctx, captcha.ID); err != nil {
		return fmt.Errorf("consume captcha: %w", err)
	}
	return nil
}

func randomString(alphabet string, n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}
	return sb.String(), nil
}
