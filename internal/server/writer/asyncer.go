package writer

import (
	"context"
	"sync"
	"time"

	"token-guard/internal/server/monitor"

	"go.uber.org/zap"
)

const defaultQueueSize = 10000

// AsyncBatchWriter 缓冲提交的条目，按数量或时间间隔批量交给 BatchWriter
type AsyncBatchWriter[T any] struct {
	id            string
	workers       int
	tl            *zap.Logger
	writer        BatchWriter[T]
	inputChan     chan T
	wg            sync.WaitGroup
	batchSize     int
	flushInterval time.Duration
	closeOnce     sync.Once
	mu            sync.RWMutex // 保护 closed 与 inputChan 的关闭
	closed        bool
}

func NewAsyncBatchWriter[T any](tl *zap.Logger, writer BatchWriter[T], batchSize int, flushInterval time.Duration, id string, workers int) *AsyncBatchWriter[T] {
	if batchSize <= 0 {
		batchSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	if workers <= 0 {
		workers = 1
	}
	return &AsyncBatchWriter[T]{
		id:            id,
		workers:       workers,
		tl:            tl,
		writer:        writer,
		inputChan:     make(chan T, defaultQueueSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

func (b *AsyncBatchWriter[T]) ID() string {
	return b.id
}

func (b *AsyncBatchWriter[T]) Start(ctx context.Context) {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.processItems(ctx)
	}
}

func (b *AsyncBatchWriter[T]) processItems(ctx context.Context) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	var batch = make([]T, 0, b.batchSize)
	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				b.writeAndRecord(context.WithoutCancel(ctx), batch)
			}
			return
		case item, ok := <-b.inputChan:
			if !ok {
				if len(batch) > 0 {
					b.writeAndRecord(ctx, batch)
				}
				return
			}
			batch = append(batch, item)
			if len(batch) >= b.batchSize {
				b.writeAndRecord(ctx, batch)
				batch = make([]T, 0, b.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				b.writeAndRecord(ctx, batch)
				batch = make([]T, 0, b.batchSize)
			}
		}
	}
}

// 封装写入操作并记录指标
func (b *AsyncBatchWriter[T]) writeAndRecord(ctx context.Context, batch []T) {
	startTime := time.Now()
	monitor.AsyncWriterBatchSize.WithLabelValues(b.id).Observe(float64(len(batch)))

	if err := b.writer.BWrite(ctx, batch); err != nil {
		monitor.AsyncWriterFlushErrors.WithLabelValues(b.id).Inc()
	}
	monitor.AsyncWriterFlushDuration.WithLabelValues(b.id).Observe(time.Since(startTime).Seconds())
}

// Submit 非阻塞提交，队列满或已 Close 时丢弃并返回 false
func (b *AsyncBatchWriter[T]) Submit(item T) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		monitor.AsyncWriterMessagesDropped.WithLabelValues(b.id).Inc()
		b.tl.Warn("Batch writer closed, dropping item", zap.String("id", b.id))
		return false
	}

	select {
	case b.inputChan <- item:
		monitor.AsyncWriterMessagesQueued.WithLabelValues(b.id).Inc()
		return true
	default:
		monitor.AsyncWriterMessagesDropped.WithLabelValues(b.id).Inc()
		b.tl.Warn("Batch input channel full, dropping item", zap.String("id", b.id))
		return false
	}
}

// Close 停止接收，写完剩余条目后关闭底层 writer；之后的 Submit 直接丢弃
func (b *AsyncBatchWriter[T]) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.inputChan)
		b.mu.Unlock()

		b.wg.Wait()
		if err := b.writer.Close(); err != nil {
			b.tl.Warn("batch writer close failed", zap.String("id", b.id), zap.Error(err))
		}
	})
}
