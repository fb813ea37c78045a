// Package safe_close coordinates graceful shutdown of long running components.
// Package safe_close 协调长期运行组件的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached handler and waits for them.
// SafeClose 向所有已注册的处理器广播关闭信号并等待其完成
type SafeClose struct {
	closeCh chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach runs fn in its own goroutine. fn must call done when it has finished cleanup.
// Attach 在独立 goroutine 中运行 fn，fn 清理完成后必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go fn(s.wg.Done, s.closeCh)
}

// SendCloseSignal closes the signal channel once; the first non-nil err is kept.
// SendCloseSignal 只关闭一次信号通道，保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()

	s.once.Do(func() {
		close(s.closeCh)
	})
}

// WaitClosed blocks until every attached handler called done.
// WaitClosed 阻塞直到所有处理器调用 done
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Closed reports whether the close signal has been sent.
func (s *SafeClose) Closed() bool {
	select {
	case <-s.closeCh:
		return true
	default:
		return false
	}
}
