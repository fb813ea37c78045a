// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/dao"
	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/extractor"
	"github.com/haierkeys/idea-inbox-service/internal/service"
	pkgapp "github.com/haierkeys/idea-inbox-service/pkg/app"
	"github.com/haierkeys/idea-inbox-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 写操作串行队列
	writeQueue *writequeue.Queue

	// Repository 层
	NoteRepo domain.NoteRepository

	// 提取器
	Extractor service.Extractor

	// Service 层
	NoteService    service.NoteService
	CaptureService service.CaptureService
	ExportService  service.ExportService

	// StartTime 启动时间
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
}

// Option App 配置选项
type Option func(*App)

// WithExtractor 替换默认提取器
func WithExtractor(e service.Extractor) Option {
	return func(a *App) { a.Extractor = e }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	// 初始化 Write Queue
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueue = writequeue.New(&wqConfig, logger)

	// 初始化 DAO（使用依赖注入）
	dbConfig := cfg.GetDatabaseConfig()
	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(&dbConfig),
		dao.WithLogger(logger),
		dao.WithWriteQueue(a.writeQueue),
	)
	if err := a.Dao.Migrate(); err != nil {
		_ = a.writeQueue.Shutdown(context.Background())
		return nil, err
	}

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)

	// 初始化提取器
	if a.Extractor == nil {
		a.Extractor = newExtractor(cfg, logger)
	}

	svcConfig := &service.ServiceConfig{
		App: service.AppServiceConfig{
			MaxContentLength: cfg.App.MaxContentLength,
		},
	}

	// 初始化 Service 层（依赖注入）
	a.NoteService = service.NewNoteService(a.NoteRepo, logger, svcConfig)
	a.CaptureService = service.NewCaptureService(a.Extractor, a.NoteRepo, logger, svcConfig)
	a.ExportService = service.NewExportService(a.NoteRepo, logger)

	logger.Info("App container initialized successfully",
		zap.String("database", dbConfig.Type),
		zap.Bool("extractor", cfg.Extractor.Enabled),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// newExtractor 根据配置创建提取器
func newExtractor(cfg *AppConfig, logger *zap.Logger) service.Extractor {
	if !cfg.Extractor.Enabled {
		logger.Info("extractor disabled, captures will be stored without metadata")
		return extractor.Disabled{}
	}
	if cfg.Extractor.APIKey == "" {
		logger.Warn("extractor api key is empty, set " + EnvAPIKey + " or extractor.api-key")
	}
	ec := cfg.GetExtractorConfig()
	ec.Logger = logger
	return extractor.New(&ec)
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// PingDB 检查数据库连接
func (a *App) PingDB(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WriteQueue 获取写队列（用于高级操作）
func (a *App) WriteQueue() *writequeue.Queue {
	return a.writeQueue
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Write Queue -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	a.logger.Info("App container shutting down...")

	var errs []error

	// 1. 关闭 Write Queue（排空队列）
	if a.writeQueue != nil {
		if err := a.writeQueue.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue shutdown: %w", err))
		}
	}

	// 2. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.logger.Info("App container shutdown completed")
	return nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}
