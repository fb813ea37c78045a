package task

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
	"github.com/haierkeys/idea-inbox-service/pkg/archive"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"
	"github.com/haierkeys/idea-inbox-service/pkg/storage"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 预置的备份策略
var backupStrategies = map[string]string{
	"daily":   "0 0 * * *", // 每天零点
	"weekly":  "0 0 * * 0", // 每周日零点
	"monthly": "0 0 1 * *", // 每月 1 日零点
}

// parseBackupSchedule 解析 app.backup-cron：daily / weekly / monthly 或 5 段 cron 表达式
// An empty expression returns a nil schedule and the interval is used instead.
func parseBackupSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if preset, ok := backupStrategies[strings.ToLower(expr)]; ok {
		expr = preset
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse backup-cron %q", expr)
	}
	return schedule, nil
}

// BackupTask writes the export archive into app.backup-dir on a schedule.
// Archives are named per day, so a day's later run replaces that day's file.
type BackupTask struct {
	app      *app.App
	logger   *zap.Logger
	dir      string
	interval time.Duration
	schedule cron.Schedule
	keep     int
	remote   storage.Storager
}

// NewBackupTask 创建定时导出任务；未配置 backup-dir 时返回 nil
func NewBackupTask(appContainer *app.App) (*BackupTask, error) {
	cfg := appContainer.Config()
	if strings.TrimSpace(cfg.App.BackupDir) == "" {
		return nil, nil
	}
	schedule, err := parseBackupSchedule(cfg.App.BackupCron)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.App.BackupDir, 0754); err != nil {
		return nil, errors.Wrap(err, "create backup dir")
	}
	t := &BackupTask{
		app:      appContainer,
		logger:   appContainer.Logger(),
		dir:      cfg.App.BackupDir,
		interval: cfg.GetBackupInterval(),
		schedule: schedule,
		keep:     cfg.App.BackupKeep,
	}
	if cfg.App.BackupStorage.Enabled() {
		remote, err := storage.NewClient(&cfg.App.BackupStorage)
		if err != nil {
			return nil, errors.Wrap(err, "create backup storage")
		}
		t.remote = remote
	}
	return t, nil
}

func (t *BackupTask) Name() string {
	return "BackupScheduled"
}

func (t *BackupTask) LoopInterval() time.Duration {
	return t.interval
}

func (t *BackupTask) IsStartupRun() bool {
	return true
}

// NextRun 配置了 backup-cron 时返回下次执行时间，否则返回零值
func (t *BackupTask) NextRun(now time.Time) time.Time {
	if t.schedule == nil {
		return time.Time{}
	}
	return t.schedule.Next(now)
}

// Run 导出收件箱并清理多余的旧归档
func (t *BackupTask) Run(ctx context.Context) error {
	res, err := t.app.ExportService.Export(ctx)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("error").Inc()
		return err
	}

	path := filepath.Join(t.dir, res.Filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, res.Data, 0644); err != nil {
		metrics.BackupsTotal.WithLabelValues("error").Inc()
		return errors.Wrap(err, "write backup archive")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		metrics.BackupsTotal.WithLabelValues("error").Inc()
		return errors.Wrap(err, "rename backup archive")
	}
	metrics.BackupsTotal.WithLabelValues("success").Inc()

	t.logger.Info("backup archive written",
		zap.String(logger.FieldFilename, path),
		zap.Int(logger.FieldCount, res.Count))

	// 本地清理不依赖远端上传结果
	pruneErr := t.prune()

	if t.remote != nil {
		key, err := t.remote.SendContent(ctx, res.Filename, res.Data, "application/zip")
		if err != nil {
			metrics.BackupsTotal.WithLabelValues("upload_error").Inc()
			if pruneErr != nil {
				t.logger.Error("prune old backups failed", zap.Error(pruneErr))
			}
			return errors.Wrap(err, "upload backup archive")
		}
		t.logger.Info("backup archive uploaded",
			zap.String("storage", t.app.Config().App.BackupStorage.Type),
			zap.String(logger.FieldFilename, key))
	}

	return pruneErr
}

// prune 只保留最新的 keep 个归档
func (t *BackupTask) prune() error {
	if t.keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return errors.Wrap(err, "read backup dir")
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && archive.IsExportFilename(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= t.keep {
		return nil
	}

	// 文件名中的日期为 YYYY-MM-DD，按字典序即按时间排序
	sort.Strings(names)
	for _, name := range names[:len(names)-t.keep] {
		if err := os.Remove(filepath.Join(t.dir, name)); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "remove old backup")
		}
		t.logger.Info("old backup removed", zap.String(logger.FieldFilename, name))
	}
	return nil
}
