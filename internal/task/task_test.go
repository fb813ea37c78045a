package task

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/dao"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
	"github.com/haierkeys/idea-inbox-service/pkg/archive"
	"github.com/haierkeys/idea-inbox-service/pkg/safe_close"
	"github.com/haierkeys/idea-inbox-service/pkg/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
	err      error
	panics   bool
}

func (t *countingTask) Name() string                { return "counting" }
func (t *countingTask) LoopInterval() time.Duration { return t.interval }
func (t *countingTask) IsStartupRun() bool          { return true }
func (t *countingTask) Run(context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("boom")
	}
	return t.err
}

func TestScheduler_StartupAndLoopUntilClosed(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{interval: 10 * time.Millisecond, err: errors.New("ignored")}
	s.AddTask(task)
	s.Start()

	require.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())

	stopped := task.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, task.runs.Load())
}

func TestScheduler_PanicDoesNotStopLoop(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{interval: 5 * time.Millisecond, panics: true}
	s.AddTask(task)
	s.Start()

	require.Eventually(t, func() bool { return task.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}

func TestScheduler_StartupOnly(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{}
	s.AddTask(task)
	s.Start()

	// a task without interval finishes on its own
	require.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(1), task.runs.Load())
}

func newTestApp(t *testing.T, backupDir string) *app.App {
	t.Helper()

	cfg, err := app.ParseConfig([]byte("extractor:\n  enabled: false\n"))
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "inbox.sqlite3")
	cfg.App.BackupDir = backupDir
	cfg.App.BackupKeep = 2

	db, err := dao.NewDBEngine(cfg.GetDatabaseConfig())
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestInboxStatsTask(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	_, err := a.CaptureService.Capture(ctx, "one")
	require.NoError(t, err)
	_, err = a.CaptureService.Capture(ctx, "two")
	require.NoError(t, err)

	require.NoError(t, NewInboxStatsTask(a).Run(ctx))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.InboxNotes))
}

func TestNewBackupTask_DisabledWithoutDir(t *testing.T) {
	a := newTestApp(t, "")
	task, err := NewBackupTask(a)
	require.NoError(t, err)
	assert.Nil(t, task)

	m := NewManager(zap.NewNop(), safe_close.NewSafeClose(), a)
	require.NoError(t, m.RegisterTasks())
	assert.Equal(t, 1, m.scheduler.Len())
}

func TestBackupTask_WritesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, dir)
	ctx := context.Background()

	_, err := a.CaptureService.Capture(ctx, "keep me")
	require.NoError(t, err)

	for _, old := range []string{"idea-inbox-export-2020-01-01.zip", "idea-inbox-export-2020-01-02.zip", "idea-inbox-export-2020-01-03.zip"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, old), []byte("old"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644))

	task, err := NewBackupTask(a)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.NoError(t, task.Run(ctx))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	today := archive.ExportFilename(time.Now())
	assert.Equal(t, []string{"idea-inbox-export-2020-01-03.zip", today, "unrelated.txt"}, names)

	data, err := os.ReadFile(filepath.Join(dir, today))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBackupTask_UploadsToStorage(t *testing.T) {
	dir := t.TempDir()
	remoteDir := t.TempDir()
	a := newTestApp(t, dir)
	a.Config().App.BackupStorage = storage.Config{Type: storage.LOCAL, SavePath: remoteDir, CustomPath: "inbox"}

	task, err := NewBackupTask(a)
	require.NoError(t, err)
	require.NoError(t, task.Run(context.Background()))

	_, err = os.Stat(filepath.Join(remoteDir, "inbox", archive.ExportFilename(time.Now())))
	assert.NoError(t, err)
}

func TestNewBackupTask_InvalidStorage(t *testing.T) {
	a := newTestApp(t, t.TempDir())
	a.Config().App.BackupStorage = storage.Config{Type: "ftp"}

	_, err := NewBackupTask(a)
	assert.ErrorIs(t, err, storage.ErrInvalidStorageType)
}

type cronCountingTask struct {
	*countingTask
	every time.Duration
}

func (t cronCountingTask) NextRun(now time.Time) time.Time { return now.Add(t.every) }

func TestScheduler_CronTaskUsesNextRun(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	// 没有固定间隔，只能依靠 NextRun 继续执行
	task := cronCountingTask{countingTask: &countingTask{}, every: 10 * time.Millisecond}
	s.AddTask(task)
	s.Start()

	require.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}

func TestParseBackupSchedule(t *testing.T) {
	// 2024-05-01 是周三
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		expr string
		want time.Time
	}{
		{"daily", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{"Weekly", time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)},
		{"monthly", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"30 2 * * *", time.Date(2024, 5, 2, 2, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		schedule, err := parseBackupSchedule(tt.expr)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want, schedule.Next(now), tt.expr)
	}

	schedule, err := parseBackupSchedule("  ")
	require.NoError(t, err)
	assert.Nil(t, schedule)

	_, err = parseBackupSchedule("every tuesday")
	assert.Error(t, err)
}

func TestNewBackupTask_CronSchedule(t *testing.T) {
	a := newTestApp(t, t.TempDir())

	task, err := NewBackupTask(a)
	require.NoError(t, err)
	assert.True(t, task.NextRun(time.Now()).IsZero(), "interval fallback without backup-cron")

	a.Config().App.BackupCron = "daily"
	task, err = NewBackupTask(a)
	require.NoError(t, err)
	now := time.Now()
	next := task.NextRun(now)
	assert.True(t, next.After(now))
	assert.LessOrEqual(t, next.Sub(now), 24*time.Hour)

	a.Config().App.BackupCron = "61 * * * *"
	_, err = NewBackupTask(a)
	assert.Error(t, err)
}

type failingStorage struct{ err error }

func (s failingStorage) SendContent(context.Context, string, []byte, string) (string, error) {
	return "", s.err
}

func (s failingStorage) Delete(context.Context, string) error { return s.err }

func TestBackupTask_PrunesWhenUploadFails(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, dir)

	for _, old := range []string{"idea-inbox-export-2020-01-01.zip", "idea-inbox-export-2020-01-02.zip", "idea-inbox-export-2020-01-03.zip"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, old), []byte("old"), 0644))
	}

	task, err := NewBackupTask(a)
	require.NoError(t, err)
	offline := errors.New("remote offline")
	task.remote = failingStorage{err: offline}

	err = task.Run(context.Background())
	assert.ErrorIs(t, err, offline)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"idea-inbox-export-2020-01-03.zip", archive.ExportFilename(time.Now())}, names)
}
