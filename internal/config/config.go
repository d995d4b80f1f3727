package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Comments      CommentsConfig      `mapstructure:"comments"`
	Search        SearchConfig        `mapstructure:"search"`
	Indexer       IndexerConfig       `mapstructure:"indexer"`
	Captcha       CaptchaConfig       `mapstructure:"captcha"`
	Attachment    AttachmentConfig    `mapstructure:"attachment"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled Redis 是否配置（未配置时缓存退化为进程内 LRU）
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string   `mapstructure:"endpoint"`
	AccessKey string   `mapstructure:"access_key"`
	SecretKey string   `mapstructure:"secret_key"`
	UseSSL    bool     `mapstructure:"use_ssl"`
	Buckets   []string `mapstructure:"buckets"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// Topic 按名称获取 topic，未配置时返回默认值
func (k *KafkaConfig) Topic(name, fallback string) string {
	if t, ok := k.Topics[name]; ok && t != "" {
		return t
	}
	return fallback
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts          []string `mapstructure:"hosts"`
	Username       string   `mapstructure:"username"`
	Password       string   `mapstructure:"password"`
	Index          string   `mapstructure:"index"`           // 带版本号的物理索引名
	Alias          string   `mapstructure:"alias"`           // 读写统一使用的别名
	ConnectTimeout int      `mapstructure:"connect_timeout"` // 秒
	RequestTimeout int      `mapstructure:"request_timeout"` // 秒
	MaxPerPage     int      `mapstructure:"max_per_page"`
}

// ConnectTimeoutDuration 返回连接超时
func (e *ElasticsearchConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(e.ConnectTimeout) * time.Second
}

// RequestTimeoutDuration 返回单次请求总超时
func (e *ElasticsearchConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(e.RequestTimeout) * time.Second
}

// CommentsConfig 评论列表配置
type CommentsConfig struct {
	PageSize    int `mapstructure:"page_size"`
	CacheTTL    int `mapstructure:"cache_ttl"`  // 秒
	MaxDepth    int `mapstructure:"max_depth"`
	CacheSize   int `mapstructure:"cache_size"` // 本地 LRU 容量
	MaxTextSize int `mapstructure:"max_text_size"`
}

// CacheTTLDuration 返回缓存时间
func (c *CommentsConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SearchConfig 搜索配置
type SearchConfig struct {
	MinQueryLength   int    `mapstructure:"min_query_length"`
	DefaultPerPage   int    `mapstructure:"default_per_page"`
	MaxPerPage       int    `mapstructure:"max_per_page"`
	HighlightPreTag  string `mapstructure:"highlight_pre_tag"`
	HighlightPostTag string `mapstructure:"highlight_post_tag"`
}

// IndexerConfig 异步索引任务配置
type IndexerConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	Backoff     int `mapstructure:"backoff"` // 秒
}

// BackoffDuration 返回重试间隔
func (i *IndexerConfig) BackoffDuration() time.Duration {
	return time.Duration(i.Backoff) * time.Second
}

// CaptchaConfig 验证码配置
type CaptchaConfig struct {
	Length int `mapstructure:"length"`
	TTL    int `mapstructure:"ttl"` // 分钟
}

// TTLDuration 返回验证码有效期
func (c *CaptchaConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Minute
}

// AttachmentConfig 附件配置
type AttachmentConfig struct {
	Bucket       string `mapstructure:"bucket"`
	MaxTextBytes int64  `mapstructure:"max_text_bytes"`
	MaxWidth     int    `mapstructure:"max_width"`
	MaxHeight    int    `mapstructure:"max_height"`
}

// JWTConfig JWT配置（仅用于管理接口）
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// 全局配置实例
var globalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "comments-go")
	v.SetDefault("app.mode", "release")
	v.SetDefault("app.port", 8000)

	v.SetDefault("elasticsearch.index", "comments_v1")
	v.SetDefault("elasticsearch.alias", "comments")
	v.SetDefault("elasticsearch.connect_timeout", 3)
	v.SetDefault("elasticsearch.request_timeout", 10)
	v.SetDefault("elasticsearch.max_per_page", 200)

	v.SetDefault("kafka.group_id", "comments-go-indexer")

	v.SetDefault("comments.page_size", 25)
	v.SetDefault("comments.cache_ttl", 30)
	v.SetDefault("comments.max_depth", 1000)
	v.SetDefault("comments.cache_size", 1024)
	v.SetDefault("comments.max_text_size", 5000)

	v.SetDefault("search.min_query_length", 2)
	v.SetDefault("search.default_per_page", 20)
	v.SetDefault("search.max_per_page", 50)
	v.SetDefault("search.highlight_pre_tag", "<mark>")
	v.SetDefault("search.highlight_post_tag", "</mark>")

	v.SetDefault("indexer.max_attempts", 10)
	v.SetDefault("indexer.backoff", 5)

	v.SetDefault("captcha.length", 6)
	v.SetDefault("captcha.ttl", 10)

	v.SetDefault("attachment.bucket", "comment-attachments")
	v.SetDefault("attachment.max_text_bytes", 100*1024)
	v.SetDefault("attachment.max_width", 320)
	v.SetDefault("attachment.max_height", 240)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	// 读取环境变量
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg

	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// Set 直接设置全局配置（测试及命令行工具使用）
func Set(cfg *Config) {
	globalConfig = cfg
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetElasticsearch 获取Elasticsearch配置
func GetElasticsearch() *ElasticsearchConfig {
	return &Get().Elasticsearch
}

// GetKafka 获取Kafka配置
func GetKafka() *KafkaConfig {
	return &Get().Kafka
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}

// GetLog 获取日志配置
func GetLog() *LogConfig {
	return &Get().Log
}
