package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"comments-go/internal/config"
	"comments-go/pkg/logger"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedAttachment = errors.New("附件格式不支持，仅允许 jpg、jpeg、png、gif、txt")
	ErrAttachmentTooLarge    = errors.New("文本附件不能超过 100KB")
	ErrInvalidImage          = errors.New("图片无法解析")
)

var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// Attachment 已存储的附件；未上传附件时各字段均为 nil
type Attachment struct {
	Type         *string
	Path         *string
	OriginalName *string
}

// Upload 上传的原始文件
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

type AttachmentService struct {
	storage   ObjectStorage
	bucket    string
	maxText   int64
	maxWidth  int
	maxHeight int
}

func NewAttachmentService(storage ObjectStorage, cfg *config.AttachmentConfig) *AttachmentService {
	s := &AttachmentService{
		storage:   storage,
		bucket:    cfg.Bucket,
		maxText:   cfg.MaxTextBytes,
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
	}
	if s.maxText <= 0 {
		s.maxText = 100 * 1024
	}
	if s.maxWidth <= 0 {
		s.maxWidth = 320
	}
	if s.maxHeight <= 0 {
		s.maxHeight = 240
	}
	return s
}

func extOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// Validate 仅根据扩展名和大小做预检查，不读取内容
func (s *AttachmentService) Validate(up *Upload) error {
	if up == nil {
		return nil
	}
	ext := extOf(up.Filename)
	if ext == "txt" {
		if up.Size > s.maxText {
			return ErrAttachmentTooLarge
		}
		return nil
	}
	if _, ok := imageContentTypes[ext]; !ok {
		return ErrUnsupportedAttachment
	}
	return nil
}

// Store 保存附件：图片等比缩小到 320x240 以内并按原格式重新编码，文本原样保存
func (s *AttachmentService) Store(ctx context.Context, up *Upload) (*Attachment, error) {
	if up == nil {
		return &Attachment{}, nil
	}
	if err := s.Validate(up); err != nil {
		return nil, err
	}

	ext := extOf(up.Filename)
	original := filepath.Base(up.Filename)

	var (
		kind        string
		objectName  string
		data        []byte
		contentType string
		err         error
	)
	if ext == "txt" {
		kind = "text"
		objectName = fmt.Sprintf("comments/txt/%s.txt", uuid.NewString())
		contentType = "text/plain; charset=utf-8"
		data, err = io.ReadAll(io.LimitReader(up.Reader, s.maxText+1))
		if err != nil {
			return nil, fmt.Errorf("read text attachment: %w", err)
		}
		if int64(len(data)) > s.maxText {
			return nil, ErrAttachmentTooLarge
		}
	} else {
		kind = "image"
		objectName = fmt.Sprintf("comments/images/%s.%s", uuid.NewString(), ext)
		contentType = imageContentTypes[ext]
		data, err = s.resize(up.Reader, ext)
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.storage.Put(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	logger.Debug("Attachment stored", zap.String("object", objectName), zap.Int("size", len(data)))
	return &Attachment{Type: &kind, Path: &objectName, OriginalName: &original}, nil
}

func (s *AttachmentService) resize(r io.Reader, ext string) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	// Fit 只缩小不放大
	fitted := imaging.Fit(img, s.maxWidth, s.maxHeight, imaging.Lanczos)

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, ErrUnsupportedAttachment
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, format); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Remove 删除已保存的附件，用于评论写入失败后的补偿
func (s *AttachmentService) Remove(ctx context.Context, att *Attachment) {
	if att == nil || att.Path == nil {
		return
	}
	if err := s.storage.Remove(ctx, s.bucket, *att.Path); err != nil {
		logger.Warn("Failed to remove orphan attachment", zap.String("object", *att.Path), zap.Error(err))
	}
}

// URL 附件公开访问地址
func (s *AttachmentService) URL(path string) string {
	return s.storage.URL(s.bucket, path)
}
