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

	_ "nfc-redirect-platform/docs"
	"nfc-redirect-platform/internal/analytics"
	"nfc-redirect-platform/internal/batch"
	"nfc-redirect-platform/internal/batchid"
	"nfc-redirect-platform/internal/config"
	"nfc-redirect-platform/internal/handler"
	"nfc-redirect-platform/internal/model"
	"nfc-redirect-platform/internal/resolver"
	"nfc-redirect-platform/internal/store"
	"nfc-redirect-platform/pkg/database"
	auth "nfc-redirect-platform/pkg/jwt"
	"nfc-redirect-platform/pkg/logger"
	"nfc-redirect-platform/pkg/redis"
	"nfc-redirect-platform/web"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// @title           NFC 标签跳转平台 API
// @version         1.0
// @description     NFC 标签 -> 活动 -> 链接的跳转服务，以及批量标签分配和管理接口。
// @host            localhost:8000
// @BasePath        /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description 输入 "Bearer {token}"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}

	zapLogger := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	logLevel := gormlogger.Warn
	if cfg.App.Mode == "production" {
		logLevel = gormlogger.Error
	}
	db, err := database.Open(cfg.DatabaseURL(), database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		LogLevel:     logLevel,
	})
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库连接成功")

	if err := store.Migrate(db); err != nil {
		sugaredLogger.Fatalf("数据库迁移失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库迁移成功")
	s := store.New(db)

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewRedisClient(context.Background(), &redis.Options{
			Host:     cfg.Cache.Host,
			Port:     cfg.Cache.Port,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			PoolSize: cfg.Cache.PoolSize,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败: %v", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	sink, err := analytics.NewSink(context.Background(), cfg.Analytics, analytics.Deps{Store: s, Redis: rdb})
	if err != nil {
		// 跳转日志不可用时仍然提供跳转服务
		sugaredLogger.Errorf("跳转日志初始化失败, 改为不记录: %v", err)
		sink = analytics.NopSink{}
	}
	dispatcher := analytics.NewDispatcher(sink, analytics.DispatcherOptions{
		QueueSize: cfg.Analytics.QueueSize,
		Workers:   cfg.Analytics.Workers,
		Timeout:   time.Duration(cfg.Analytics.TimeoutSeconds) * time.Second,
	}, sugaredLogger)
	sugaredLogger.Infof("✅ 跳转日志已启动 (sink=%s)", sink.Name())

	generator := batchid.NewGenerator(s, sugaredLogger)
	generator.Start()
	sugaredLogger.Info("✅ 批次 ID 生成器已启动")

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	sugaredLogger.Info("✅ 认证管理器初始化成功")

	if err := createBootstrapAccount(context.Background(), s, cfg.Auth); err != nil {
		sugaredLogger.Errorf("创建初始账户失败: %v", err)
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	templates, err := web.Templates()
	if err != nil {
		sugaredLogger.Fatalf("模板加载失败: %v", err)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Logger:    zapLogger,
		Templates: templates,
		Tokens:    tokenManager,
		RateLimit: &cfg.RateLimit,
		Redirect:  handler.NewRedirectHandler(resolver.New(s, dispatcher, sugaredLogger), s, cfg.Server.StrictNotFound, sugaredLogger),
		Batch:     handler.NewBatchHandler(batch.NewAllocator(s, generator, sugaredLogger), cfg.Server.BaseURL, sugaredLogger),
		Auth:      handler.NewAuthHandler(s, tokenManager, cfg.Auth.SecureCookie, sugaredLogger),
		Manage:    handler.NewManageHandler(s, sugaredLogger),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugaredLogger.Errorf("服务关闭失败: %v", err)
	}
	generator.Stop()
	if err := dispatcher.Stop(ctx); err != nil {
		sugaredLogger.Errorf("跳转日志关闭失败: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	sugaredLogger.Info("服务已退出")
}

// createBootstrapAccount 配置了初始账户且不存在时创建它
func createBootstrapAccount(ctx context.Context, s *store.Store, cfg config.Auth) error {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return nil
	}
	existing, err := s.AccountByUsername(ctx, cfg.BootstrapUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	account := model.Account{Username: cfg.BootstrapUsername, CompanyName: cfg.BootstrapUsername}
	if err := account.SetPassword(cfg.BootstrapPassword); err != nil {
		return err
	}
	if err := s.CreateAccount(ctx, &account); err != nil {
		return err
	}
	zap.S().Infow("✅ 初始账户创建成功", "username", account.Username)
	return nil
}
