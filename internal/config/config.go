package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 默认的嵌入式 SQLite 数据库路径
const DefaultSQLitePath = "database/nfc_data.db"

// 主配置结构
type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Database  DB        `yaml:"database"`
	Cache     Cache     `yaml:"cache"`
	Auth      Auth      `yaml:"auth"`
	RateLimit Limit     `yaml:"rate_limit"`
	Analytics Analytics `yaml:"analytics"`
	Log       Log       `yaml:"log"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name" env:"APP_NAME"`
	Mode    string `yaml:"mode" env:"APP_MODE"`
	Version string `yaml:"version"`
}

// 服务器配置
type Server struct {
	Port         int    `yaml:"port" env:"PORT"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
	BaseURL      string `yaml:"base_url" env:"BASE_URL"`
	// 未命中时返回 404 而不是 200
	StrictNotFound bool `yaml:"strict_not_found" env:"STRICT_NOT_FOUND"`
}

// 数据库配置，URL 为空时回退到本地 SQLite 文件
type DB struct {
	URL          string `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// 缓存配置（Redis），仅用于 redis 分析日志
type Cache struct {
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     int    `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

// 认证配置
type Auth struct {
	Secret            string `yaml:"secret" env:"SECRET_KEY"`
	Issuer            string `yaml:"issuer"`
	ExpirationHours   int    `yaml:"expiration_hours"`
	SecureCookie      bool   `yaml:"secure_cookie" env:"SECURE_COOKIE"`
	BootstrapUsername string `yaml:"bootstrap_username" env:"BOOTSTRAP_USERNAME"`
	BootstrapPassword string `yaml:"bootstrap_password" env:"BOOTSTRAP_PASSWORD"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 跳转日志配置
type Analytics struct {
	Sink           string `yaml:"sink" env:"ANALYTICS_SINK"` // none | database | redis | bigquery
	ProjectID      string `yaml:"project_id" env:"BIGQUERY_PROJECT_ID"`
	Dataset        string `yaml:"dataset" env:"BIGQUERY_DATASET"`
	Table          string `yaml:"table" env:"BIGQUERY_TABLE"`
	Credentials    string `yaml:"credentials" env:"BIGQUERY_CREDENTIALS"`
	Stream         string `yaml:"stream" env:"REDIS_STREAM"`
	QueueSize      int    `yaml:"queue_size"`
	Workers        int    `yaml:"workers"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		App:    App{Name: "nfc-redirect", Mode: "development", Version: "1.0.0"},
		Server: Server{Port: 8000, ReadTimeout: 10, WriteTimeout: 10, BaseURL: "http://localhost:8000"},
		Database: DB{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Cache: Cache{Port: 6379, PoolSize: 20},
		Auth: Auth{
			Secret:          "default-secret-key",
			Issuer:          "nfc-redirect",
			ExpirationHours: 24,
		},
		// 扫码跳转不限流，只限制写接口
		RateLimit: Limit{Enabled: true, Requests: 600, Burst: 50, SkipPaths: []string{"/api/redirect/"}},
		Analytics: Analytics{
			Sink:           "none",
			ProjectID:      "nfc-redirect-project",
			Dataset:        "nfc_logs",
			Table:          "nfc_redirect_log",
			Stream:         "nfc:redirect_log",
			QueueSize:      1024,
			Workers:        2,
			TimeoutSeconds: 5,
		},
		Log: Log{Level: "info", File: "./logs/app.log", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30},
	}
}

// 加载配置：默认值 -> YAML 文件 (可选) -> .env -> 环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// 没有配置文件时只使用环境变量
	default:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	_ = godotenv.Load() // .env 不存在时忽略

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置是否自洽
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的端口: %d", c.Server.Port)
	}
	switch c.Analytics.Sink {
	case "", "none", "database", "redis", "bigquery":
	default:
		return fmt.Errorf("未知的 analytics.sink: %q", c.Analytics.Sink)
	}
	if c.Analytics.Sink == "redis" && c.Cache.Host == "" {
		return errors.New("analytics.sink=redis 需要配置 cache.host")
	}
	if c.Analytics.Sink == "bigquery" && c.Analytics.ProjectID == "" {
		return errors.New("analytics.sink=bigquery 需要配置 analytics.project_id")
	}
	return nil
}

// DatabaseURL 返回数据库连接串，未配置时使用本地 SQLite
func (c *Config) DatabaseURL() string {
	if c.Database.URL == "" {
		return DefaultSQLitePath
	}
	return c.Database.URL
}
