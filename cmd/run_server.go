package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	internalApp "github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/dao"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
	"github.com/haierkeys/idea-inbox-service/internal/routers"
	"github.com/haierkeys/idea-inbox-service/internal/task"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"
	"github.com/haierkeys/idea-inbox-service/pkg/safe_close"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger             // 日志对象
	config            *internalApp.AppConfig  // 应用配置（注入的依赖）
	ut                *ut.UniversalTranslator // 翻译器
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
}

func NewServer(runEnv *runFlags) (*Server, error) {

	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先于配置文件
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
	}
	if len(runEnv.port) > 0 {
		appConfig.Server.HttpPort = normalizeListen(runEnv.port)
	}

	if len(appConfig.Server.RunMode) > 0 {
		gin.SetMode(appConfig.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	if s.logger, err = logger.NewLogger(appConfig.GetLoggerConfig()); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	metrics.Register()

	if s.app, err = newAppContainer(appConfig, s.logger); err != nil {
		return nil, err
	}

	// 初始化验证器
	if s.ut, err = initValidator(); err != nil {
		_ = s.app.Shutdown(context.Background())
		return nil, fmt.Errorf("initValidator: %w", err)
	}

	// 启动调度器
	initScheduler(s)

	banner := `
    ____    __               ____      __
   /  _/___/ /__  ____ _    /  _/___  / /_  ____  _  __
   / // __  / _ \/ __ '/    / // __ \/ __ \/ __ \| |/_/
 _/ // /_/ /  __/ /_/ /   _/ // / / / /_/ / /_/ />  <
/___/\__,_/\___/\__,_/   /___/_/ /_/_.___/\____/_/|_|`
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(s.app, s.ut),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.attachHTTPServer("api service", s.httpServer)
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.attachHTTPServer("private api service", s.privateHttpServer)
	}

	// 注册 App Container 的优雅关闭，HTTP 服务先于数据库关闭
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal

		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		} else {
			s.logger.Info("App container shutdown gracefully")
		}
	})

	return s, nil
}

func initScheduler(s *Server) {
	manager := task.NewManager(s.logger, s.sc, s.app)

	// 注册所有任务(业务层控制)
	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}

	manager.Start()
}

// attachHTTPServer 启动 HTTP 服务并在关闭信号到达时停止
func (s *Server) attachHTTPServer(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error(name+" err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// 停止 HTTP 服务器
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

// newAppContainer 初始化存储目录、数据库与 App Container
func newAppContainer(cfg *internalApp.AppConfig, lg *zap.Logger, opts ...internalApp.Option) (*internalApp.App, error) {
	if err := initStorage(cfg); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	db, err := dao.NewDBEngine(cfg.GetDatabaseConfig())
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}

	a, err := internalApp.NewApp(cfg, lg, db, opts...)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	return a, nil
}

// initValidator 初始化 gin 验证器的字段名与中英文翻译，返回 UniversalTranslator
func initValidator() (*ut.UniversalTranslator, error) {
	uni := ut.New(en.New(), en.New(), zh.New())

	validate, ok := binding.Validator.Engine().(*validatorV10.Validate)
	if !ok {
		return uni, nil
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}

	return uni, nil
}

// initStorage 初始化日志与数据库目录
func initStorage(cfg *internalApp.AppConfig) error {
	dirs := []string{filepath.Dir(cfg.Log.File)}
	if cfg.Database.Type == "" || cfg.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// normalizeListen turns a bare port into a listen address.
func normalizeListen(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}

// GetConfig 获取应用配置
func (s *Server) GetConfig() *internalApp.AppConfig {
	return s.config
}
