// Package writequeue provides a serialized write queue
// Package writequeue 提供串行写队列
// Used to serialize SQLite write operations to avoid "database is locked"
// 用于串行化 SQLite 写操作，避免 "database is locked" 问题
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Error definitions
// 错误定义
var (
	// ErrWriteQueueFull returned when the queue is full
	// ErrWriteQueueFull 当写队列已满时返回
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed returned when the queue is closed
	// ErrWriteQueueClosed 当写队列已关闭时返回
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout returned when the operation was not started before the timeout
	// ErrWriteTimeout 当写操作在超时前未开始执行时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity pending operations, default 100
	// QueueCapacity 队列容量，默认 100
	QueueCapacity int
	// WriteTimeout wait limit for an operation to start, default 30 seconds
	// WriteTimeout 等待操作开始执行的超时时间，默认 30 秒
	WriteTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
	}
}

const (
	opPending int32 = iota
	opRunning
	opAbandoned
)

// writeOp write operation
// writeOp 写操作
type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
	state  atomic.Int32
}

// Queue runs write operations one at a time in FIFO order
// Queue 按 FIFO 顺序逐个执行写操作
type Queue struct {
	config Config
	logger *zap.Logger

	ch     chan *writeOp
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	executed atomic.Int64
}

// New creates the write queue and starts its worker
// New 创建写队列并启动 worker
// cfg: configuration, if nil use default configuration
// cfg: 配置，如果为 nil 则使用默认配置
// logger: zap logger, if nil use nop logger
// logger: zap 日志器，如果为 nil 则使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Queue {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 100
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	q := &Queue{
		config: *cfg,
		logger: logger,
		ch:     make(chan *writeOp, cfg.QueueCapacity),
		stopCh: make(chan struct{}),
	}

	q.wg.Add(1)
	go q.worker()

	q.logger.Info("write queue started",
		zap.Int("queueCapacity", cfg.QueueCapacity),
		zap.Duration("writeTimeout", cfg.WriteTimeout))

	return q
}

// Execute submits fn and waits for its result.
// An operation that times out before it starts is abandoned and never runs;
// once started, Execute always waits for and returns its real result.
// Execute 提交写操作并等待结果
// 开始执行前超时的操作会被放弃且永不执行；一旦开始执行，始终返回真实结果
func (q *Queue) Execute(ctx context.Context, fn func() error) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrWriteQueueClosed
	}

	op := &writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case q.ch <- op:
	default:
		q.mu.RUnlock()
		return ErrWriteQueueFull
	}
	q.mu.RUnlock()

	timeout := q.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		if op.state.CompareAndSwap(opPending, opAbandoned) {
			return ctx.Err()
		}
	case <-timer.C:
		if op.state.CompareAndSwap(opPending, opAbandoned) {
			return ErrWriteTimeout
		}
	}

	// already running
	return <-op.result
}

// worker 处理写队列的 goroutine
func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			q.drain()
			return
		case op := <-q.ch:
			q.executeOp(op)
		}
	}
}

// executeOp 执行单个写操作
func (q *Queue) executeOp(op *writeOp) {
	if !op.state.CompareAndSwap(opPending, opRunning) {
		return
	}

	select {
	case <-op.ctx.Done():
		op.result <- op.ctx.Err()
		return
	default:
	}

	op.result <- op.fn()
	q.executed.Add(1)
}

// drain 排空队列中的剩余操作
func (q *Queue) drain() {
	for {
		select {
		case op := <-q.ch:
			q.executeOp(op)
		default:
			return
		}
	}
}

// Shutdown stops accepting operations and waits for queued ones to finish
// Shutdown 停止接收新操作并等待已排队操作完成
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.stopCh)
	q.mu.Unlock()

	q.logger.Info("write queue shutting down")

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("write queue shutdown completed", zap.Int64("executed", q.executed.Load()))
		return nil
	case <-ctx.Done():
		q.logger.Warn("write queue shutdown timeout")
		return ctx.Err()
	}
}

// Pending returns number of operations waiting in the queue
// Pending 返回队列中等待的操作数
func (q *Queue) Pending() int {
	return len(q.ch)
}

// IsClosed returns if the queue is closed
// IsClosed 返回队列是否已关闭
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
