package cmd

import (
	"context"

	internalApp "github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"

	"go.uber.org/zap"
)

// openApp loads the config and builds an App Container for one-shot commands.
// The returned close func shuts the container down.
// openApp 为一次性命令加载配置并创建 App Container
func openApp(configFlag string, opts ...internalApp.Option) (*internalApp.App, func(), error) {
	configPath, err := resolveConfig(configFlag)
	if err != nil {
		return nil, nil, err
	}

	cfg, _, err := internalApp.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	// 命令行输出走 stdout，日志只写 stderr
	lc := cfg.GetLoggerConfig()
	lc.File = ""
	lg, err := logger.NewLogger(lc)
	if err != nil {
		return nil, nil, err
	}

	a, err := newAppContainer(cfg, lg, opts...)
	if err != nil {
		_ = lg.Sync()
		return nil, nil, err
	}

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			lg.Error("failed to shutdown app container", zap.Error(err))
		}
		_ = lg.Sync()
	}
	return a, closeFn, nil
}
