package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"comments-go/internal/cache"
	"comments-go/internal/model"
	"comments-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("评论不存在")
	ErrParentNotFound  = errors.New("父评论不存在")
)

const maxUserAgentLength = 255

// CreateCommentInput 创建评论所需的数据，字段已经过请求层校验
type CreateCommentInput struct {
	ParentID      *int64
	UserName      string
	Email         string
	HomePage      *string
	Text          string
	CaptchaToken  string
	CaptchaAnswer string
	IP            string
	UserAgent     string
	File          *Upload
}

// CommentService 评论写入路径
type CommentService struct {
	store       CommentStore
	cache       cache.Store
	captcha     *CaptchaService
	sanitizer   *Sanitizer
	attachments *AttachmentService
	broadcaster Broadcaster
	indexer     Enqueuer
}

func NewCommentService(
	store CommentStore,
	c cache.Store,
	captcha *CaptchaService,
	sanitizer *Sanitizer,
	attachments *AttachmentService,
	broadcaster Broadcaster,
	indexer Enqueuer,
) *CommentService {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &CommentService{
		store:       store,
		cache:       c,
		captcha:     captcha,
		sanitizer:   sanitizer,
		attachments: attachments,
		broadcaster: broadcaster,
		indexer:     indexer,
	}
}

// Create 发表评论。写库成功后的缓存失效、事件推送、索引投递失败只记录日志
func (s *CommentService) Create(ctx context.Context, in *CreateCommentInput) (*model.Comment, error) {
	if err := s.captcha.Verify(ctx, in.CaptchaToken, in.CaptchaAnswer); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		if _, err := s.store.GetByID(ctx, *in.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("load parent comment: %w", err)
		}
	}

	if err := s.attachments.Validate(in.File); err != nil {
		return nil, err
	}

	textHTML := s.sanitizer.Sanitize(in.Text)

	att, err := s.attachments.Store(ctx, in.File)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ParentID:               in.ParentID,
		UserName:               in.UserName,
		Email:                  in.Email,
		HomePage:               in.HomePage,
		TextHTML:               textHTML,
		TextRaw:                in.Text,
		AttachmentType:         att.Type,
		AttachmentPath:         att.Path,
		AttachmentOriginalName: att.OriginalName,
		IP:                     in.IP,
		UserAgent:              truncateRunes(in.UserAgent, maxUserAgentLength),
	}

	if err := s.store.Create(ctx, comment); err != nil {
		s.attachments.Remove(context.WithoutCancel(ctx), att)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.afterCreate(ctx, comment)
	return comment, nil
}

func (s *CommentService) afterCreate(ctx context.Context, comment *model.Comment) {
	if err := s.cache.Flush(ctx, CommentsCacheTag); err != nil {
		logger.Warn("Failed to flush comments cache", zap.Int64("comment_id", comment.ID), zap.Error(err))
	}

	event := model.CommentCreated{CommentID: comment.ID, ParentID: comment.ParentID}
	if err := s.broadcaster.Publish(ctx, model.CommentCreatedEvent, event); err != nil {
		logger.Warn("Failed to broadcast comment created", zap.Int64("comment_id", comment.ID), zap.Error(err))
	}

	if err := s.indexer.Enqueue(ctx, comment.ID); err != nil {
		logger.Warn("Failed to enqueue comment indexing", zap.Int64("comment_id", comment.ID), zap.Error(err))
	}

	logger.Info("Comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Bool("root", comment.IsRoot()),
	)
}

// Preview 返回清洗后的 HTML，不写库
func (s *CommentService) Preview(text string) string {
	return s.sanitizer.Sanitize(text)
}

// Get 获取单条评论
func (s *CommentService) Get(ctx context.Context, id int64) (*model.Comment, error) {
	comment, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
