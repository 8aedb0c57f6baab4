package analytics

import (
	"context"
	"sync"
	"time"

	"nfc-redirect-platform/internal/metrics"
	"nfc-redirect-platform/internal/model"

	"go.uber.org/zap"
)

// DispatcherOptions 队列和超时设置
type DispatcherOptions struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Dispatcher 异步地把跳转日志交给 Sink，自身的失败不会传播给调用方
type Dispatcher struct {
	sink    Sink
	queue   chan model.RedirectLogEntry
	timeout time.Duration
	logger  *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher 创建并启动 worker
func NewDispatcher(sink Sink, opts DispatcherOptions, logger *zap.SugaredLogger) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan model.RedirectLogEntry, opts.QueueSize),
		timeout: opts.Timeout,
		logger:  logger.Named("analytics").With("sink", sink.Name()),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Record 入队一条日志，队列已满或已停止时直接丢弃
func (d *Dispatcher) Record(entry model.RedirectLogEntry) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return
	}

	select {
	case d.queue <- entry:
	default:
		metrics.AnalyticsDropped.Inc()
		d.logger.Warnw("跳转日志队列已满，丢弃", "tag_id", entry.TagID, "id", entry.ID)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for entry := range d.queue {
		d.append(entry)
	}
}

func (d *Dispatcher) append(entry model.RedirectLogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.AnalyticsFailures.WithLabelValues(d.sink.Name()).Inc()
			d.logger.Errorw("写入跳转日志时 panic", "id", entry.ID, "panic", r)
		}
	}()

	if err := d.sink.Append(ctx, entry); err != nil {
		metrics.AnalyticsFailures.WithLabelValues(d.sink.Name()).Inc()
		d.logger.Errorw("写入跳转日志失败", "id", entry.ID, "tag_id", entry.TagID, "error", err)
		return
	}
	d.logger.Debugw("跳转日志已写入", "id", entry.ID, "tag_id", entry.TagID)
}

// Stop 停止接收新日志，等待队列排空后关闭 Sink
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("等待跳转日志排空超时")
		return ctx.Err()
	}
	return d.sink.Close()
}
