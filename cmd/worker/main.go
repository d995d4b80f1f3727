package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comments-go/internal/config"
	"comments-go/internal/infra/database"
	infraES "comments-go/internal/infra/elasticsearch"
	infraKafka "comments-go/internal/infra/kafka"
	"comments-go/internal/repository"
	"comments-go/internal/service"
	"comments-go/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const captchaCleanupInterval = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	db := database.Get()
	commentRepo := repository.NewCommentRepository(db)
	captchaRepo := repository.NewCaptchaRepository(db)

	indexManager := infraES.NewIndexManager(infraES.Get(), &cfg.Elasticsearch)
	if err := indexManager.InitIndexes(ctx); err != nil {
		logger.Warn("Elasticsearch index init failed", zap.Error(err))
	}

	worker := service.NewIndexWorker(commentRepo, indexManager, infraKafka.SendIndexTask, &cfg.Indexer, &cfg.Kafka)

	go cleanupCaptchas(ctx, captchaRepo)

	topic := cfg.Kafka.Topic("comment_index", service.DefaultIndexTopic)
	logger.Info("Index worker started",
		zap.String("topic", topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartIndexTaskConsumer(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID, worker.Handle)
	logger.Info("Index worker stopped")
}

// cleanupCaptchas 定期清理过期验证码
func cleanupCaptchas(ctx context.Context, repo *repository.CaptchaRepository) {
	ticker := time.NewTicker(captchaCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.Warn("Failed to clean up expired captchas", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Expired captchas removed", zap.Int64("count", n))
			}
		}
	}
}
