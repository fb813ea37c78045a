package task

import (
	"context"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
)

// InboxStatsTask 定期刷新收件箱笔记数量指标
type InboxStatsTask struct {
	app *app.App
}

// NewInboxStatsTask 创建 InboxStatsTask
func NewInboxStatsTask(appContainer *app.App) *InboxStatsTask {
	return &InboxStatsTask{app: appContainer}
}

func (t *InboxStatsTask) Name() string {
	return "InboxStats"
}

func (t *InboxStatsTask) LoopInterval() time.Duration {
	return time.Minute
}

func (t *InboxStatsTask) IsStartupRun() bool {
	return true
}

// Run 统计笔记数量并写入 gauge
func (t *InboxStatsTask) Run(ctx context.Context) error {
	count, err := t.app.NoteService.Count(ctx)
	if err != nil {
		return err
	}
	metrics.InboxNotes.Set(float64(count))
	return nil
}
