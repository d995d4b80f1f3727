package database

import (
	"errors"
	"fmt"
	"time"

	"comments-go/internal/config"
	"comments-go/internal/model"
	"comments-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

var ErrNotInitialized = errors.New("database not initialized")

// 顶级评论分页走的部分索引，gorm 标签无法表达 WHERE 条件
const rootsIndexSQL = `CREATE INDEX IF NOT EXISTS idx_comments_roots_created
	ON comments (created_at DESC, id DESC) WHERE parent_id IS NULL`

// Init 初始化PostgreSQL数据库连接
func Init(cfg *config.DatabaseConfig) error {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: NewGormLogger(200 * time.Millisecond),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	// 获取底层sql.DB来配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return nil
}

// Migrate 迁移评论与验证码表，并补建部分索引
func Migrate() error {
	if DB == nil {
		return ErrNotInitialized
	}
	if err := DB.AutoMigrate(&model.Comment{}, &model.Captcha{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	if err := DB.Exec(rootsIndexSQL).Error; err != nil {
		return fmt.Errorf("failed to create roots index: %w", err)
	}
	logger.Info("Database migration completed")
	return nil
}

// Close 关闭数据库连接
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	logger.Info("Database connection closed")
	return sqlDB.Close()
}

// Get 获取数据库实例
func Get() *gorm.DB {
	return DB
}
