package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"comments-go/internal/config"
	"comments-go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var ErrClientNotInitialized = errors.New("minio client not initialized")

var (
	client   *minio.Client
	endpoint string
	useSSL   bool
)

// Init 初始化 MinIO 客户端并确保所有 Bucket 存在且公开可读
func Init(cfg *config.MinIOConfig) error {
	var err error
	client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}
	endpoint = cfg.Endpoint
	useSSL = cfg.UseSSL

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range cfg.Buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			logger.Info("MinIO bucket created", zap.String("bucket", bucket))
		}

		// 附件需要公开读，前端直接通过 URL 展示
		if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return fmt.Errorf("failed to set public policy for %s: %w", bucket, err)
		}
	}

	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.Int("buckets", len(cfg.Buckets)),
	)

	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// Get 获取 MinIO 客户端实例
func Get() *minio.Client {
	return client
}

// ObjectStorage 附件服务依赖的对象存储操作
type ObjectStorage struct{}

// NewObjectStorage 基于全局客户端的对象存储
func NewObjectStorage() *ObjectStorage {
	return &ObjectStorage{}
}

// Put 上传对象，返回对象名
func (ObjectStorage) Put(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	return UploadFile(ctx, bucket, objectName, reader, size, contentType)
}

// Remove 删除对象
func (ObjectStorage) Remove(ctx context.Context, bucket, objectName string) error {
	return RemoveFile(ctx, bucket, objectName)
}

// URL 对象的公开访问地址
func (ObjectStorage) URL(bucket, objectName string) string {
	return GetPublicURL(endpoint, useSSL, bucket, objectName)
}

// UploadFile 上传文件到指定 Bucket
// 返回对象名（objectName）
func UploadFile(ctx context.Context, bucket, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	if client == nil {
		return "", ErrClientNotInitialized
	}
	_, err := client.PutObject(ctx, bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}
	return objectName, nil
}

// RemoveFile 删除对象（评论写入失败时的补偿）
func RemoveFile(ctx context.Context, bucket, objectName string) error {
	if client == nil {
		return ErrClientNotInitialized
	}
	if err := client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove from minio: %w", err)
	}
	return nil
}

// GetPublicURL 生成公开访问 URL（需要 Bucket 设置为 public-read）
func GetPublicURL(endpoint string, useSSL bool, bucket, objectName string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, objectName)
}
