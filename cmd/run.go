package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // 项目根目录
	port    string // 启动端口
	runMode string // 启动模式
	config  string // 指定要使用的配置文件路径
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port] [-m mode]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				} else {
					bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
				}
			}

			configPath, err := resolveConfig(runEnv.config)
			if err != nil {
				bootstrapLogger.Error("config file error", zap.Error(err))
				return
			}
			runEnv.config = configPath

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			// 只监听配置文件的写入事件，每个周期至多一个事件
			w := watcher.New()
			w.SetMaxEvents(1)
			w.FilterOps(watcher.Write)
			if err := w.Add(runEnv.config); err != nil {
				s.logger.Error("config watcher file error", zap.Error(err))
			}
			go func(lg *zap.Logger) {
				if err := w.Start(time.Second * 5); err != nil {
					lg.Error("config watcher start error", zap.Error(err))
				}
			}(s.logger)
			defer w.Close()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case event := <-w.Event:
					s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))

					// 先完整关闭旧实例，释放端口与数据库
					s.sc.SendCloseSignal(nil)
					if err := s.sc.WaitClosed(); err != nil {
						s.logger.Error("shutdown before reload completed with error", zap.Error(err))
					}

					// 重新初始化 server
					ns, err := NewServer(runEnv)
					if err != nil {
						bootstrapLogger.Error("service restart err", zap.Error(err))
						return
					}
					s = ns

				case err := <-w.Error:
					s.logger.Error("config watcher error", zap.Error(err))

				case <-quit:
					s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
					s.sc.SendCloseSignal(nil)

					// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
					if err := s.sc.WaitClosed(); err != nil {
						s.logger.Error("Shutdown completed with error", zap.Error(err))
					} else {
						s.logger.Info("Service has been shut down gracefully.")
					}
					return
				}
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
