package task

import (
	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	m.scheduler.AddTask(NewInboxStatsTask(m.app))

	backupTask, err := NewBackupTask(m.app)
	if err != nil {
		m.logger.Warn("failed to create backup task", zap.Error(err))
		return err
	}
	if backupTask != nil {
		m.scheduler.AddTask(backupTask)
	} else {
		m.logger.Info("backup task is disabled (app.backup-dir not configured)")
	}

	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
