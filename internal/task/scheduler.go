// Package task 定时任务调度
package task

import (
	"context"
	"time"

	"github.com/haierkeys/idea-inbox-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔
	IsStartupRun() bool            // 是否立即执行一次
}

// CronTask 按 cron 计算下次执行时间的任务
// NextRun 返回零值时退回 LoopInterval 的固定间隔
type CronTask interface {
	Task
	NextRun(now time.Time) time.Time
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Len 已注册任务数
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

// startTask 启动单个任务，关闭信号到达时取消正在执行的任务
func (s *Scheduler) startTask(task Task) {

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-closeSignal:
				cancel()
			case <-ctx.Done():
			}
		}()

		if task.IsStartupRun() {
			s.runOnce(ctx, task, "startupRun")
		}

		if ct, ok := task.(CronTask); ok && !ct.NextRun(time.Now()).IsZero() {
			s.cronLoop(ctx, ct)
			return
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		// 定时执行
		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx, task, "loopRun")
			case <-ctx.Done():
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}

// cronLoop 每次执行后按 NextRun 重新计算等待时间
func (s *Scheduler) cronLoop(ctx context.Context, task CronTask) {
	for {
		next := task.NextRun(time.Now())
		s.logger.Debug("task next run", zap.String("name", task.Name()), zap.Time("next", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.runOnce(ctx, task, "cronRun")
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("task stopped", zap.String("name", task.Name()))
			return
		}
	}
}

// runOnce 执行一次任务，panic 只记录日志
func (s *Scheduler) runOnce(ctx context.Context, task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	s.logger.Debug("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}
