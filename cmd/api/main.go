package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comments-go/internal/api/dto"
	"comments-go/internal/api/handler"
	"comments-go/internal/api/middleware"
	"comments-go/internal/api/router"
	"comments-go/internal/cache"
	"comments-go/internal/config"
	"comments-go/internal/infra/database"
	infraES "comments-go/internal/infra/elasticsearch"
	infraKafka "comments-go/internal/infra/kafka"
	infraMinio "comments-go/internal/infra/minio"
	infraRedis "comments-go/internal/infra/redis"
	"comments-go/internal/repository"
	"comments-go/internal/service"
	"comments-go/pkg/logger"

	_ "comments-go/api/openapi"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Comments API
// @version 1.0
// @description 树形评论服务 API
// @termsOfService http://swagger.io/terms/

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.Load(configPath())
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

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to init redis", zap.Error(err))
	}
	defer infraRedis.Close()

	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	// Elasticsearch 不可用时搜索接口返回降级错误，其余接口不受影响
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search is degraded", zap.Error(err))
	} else {
		defer infraES.Close()
	}
	indexManager := infraES.NewIndexManager(infraES.Get(), &cfg.Elasticsearch)
	if infraES.Get() != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := indexManager.InitIndexes(ctx); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
		cancel()
	}

	if err := dto.RegisterValidations(); err != nil {
		logger.Fatal("Failed to register validations", zap.Error(err))
	}

	// 缓存与实时推送：有 Redis 时跨进程共享，否则退化为进程内实现
	var (
		store       cache.Store
		broadcaster interface {
			service.Broadcaster
			handler.Subscriber
		}
	)
	if rdb := infraRedis.Get(); rdb != nil {
		store = cache.NewRedisStore(rdb)
		broadcaster = service.NewRedisBroadcaster(rdb)
	} else {
		mem, err := cache.NewMemoryStore(cfg.Comments.CacheSize)
		if err != nil {
			logger.Fatal("Failed to init memory cache", zap.Error(err))
		}
		store = mem
		broadcaster = service.NopBroadcaster{}
	}

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	commentRepo := repository.NewCommentRepository(db)
	captchaRepo := repository.NewCaptchaRepository(db)

	captchaService := service.NewCaptchaService(captchaRepo, &cfg.Captcha)
	attachmentService := service.NewAttachmentService(infraMinio.NewObjectStorage(), &cfg.Attachment)
	dispatcher := service.NewIndexDispatcher(infraKafka.SendIndexTask, &cfg.Kafka)

	listService := service.NewCommentListService(commentRepo, store, &cfg.Comments)
	commentService := service.NewCommentService(commentRepo, store, captchaService, service.NewSanitizer(), attachmentService, broadcaster, dispatcher)
	searchService := service.NewSearchService(indexManager, commentRepo, &cfg.Search)
	adminService := service.NewIndexAdminService(indexManager, commentRepo)

	handlers := &router.Handlers{
		Comment: handler.NewCommentHandler(listService, commentService, attachmentService.URL),
		Search:  handler.NewSearchHandler(searchService, attachmentService.URL),
		Captcha: handler.NewCaptchaHandler(captchaService),
		Admin:   handler.NewIndexAdminHandler(adminService),
		Stream:  handler.NewStreamHandler(broadcaster),
	}

	gin.SetMode(cfg.App.Mode)
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger("/healthz"))

	r.GET("/healthz", healthCheckHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.Setup(r, handlers, middleware.AdminRequired())

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.Bool("redis", cfg.Redis.Enabled()),
		zap.String("minio", cfg.MinIO.Endpoint),
		zap.Strings("elasticsearch", cfg.Elasticsearch.Hosts),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"search":    infraES.Get() != nil,
	})
}
