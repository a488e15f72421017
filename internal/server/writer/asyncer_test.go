package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWriter struct {
	mu      sync.Mutex
	batches [][]int
	err     error
	closed  bool
}

func (w *recordingWriter) BWrite(ctx context.Context, batch []int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches = append(w.batches, append([]int(nil), batch...))
	return w.err
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return nil
}

func (w *recordingWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func TestAsyncBatchWriter_FlushBySize(t *testing.T) {
	rw := &recordingWriter{}
	w := NewAsyncBatchWriter[int](zap.NewNop(), rw, 3, time.Hour, "test_size", 1)
	w.Start(context.Background())

	for i := 0; i < 6; i++ {
		require.True(t, w.Submit(i))
	}
	require.Eventually(t, func() bool { return rw.total() == 6 }, time.Second, 5*time.Millisecond)

	w.Close()
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, rw.batches)
	assert.True(t, rw.closed)
}

func TestAsyncBatchWriter_FlushByInterval(t *testing.T) {
	rw := &recordingWriter{}
	w := NewAsyncBatchWriter[int](zap.NewNop(), rw, 100, 10*time.Millisecond, "test_interval", 1)
	w.Start(context.Background())
	defer w.Close()

	w.Submit(42)
	require.Eventually(t, func() bool { return rw.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAsyncBatchWriter_CloseFlushesRemainder(t *testing.T) {
	rw := &recordingWriter{err: errors.New("db down")}
	w := NewAsyncBatchWriter[int](zap.NewNop(), rw, 100, time.Hour, "test_close", 2)
	w.Start(context.Background())

	for i := 0; i < 5; i++ {
		w.Submit(i)
	}
	w.Close()
	w.Close()

	assert.Equal(t, 5, rw.total())
	assert.True(t, rw.closed)
}

func TestAsyncBatchWriter_Defaults(t *testing.T) {
	w := NewAsyncBatchWriter[int](zap.NewNop(), &recordingWriter{}, 0, 0, "test_defaults", 0)
	assert.Equal(t, 1, w.batchSize)
	assert.Equal(t, time.Second, w.flushInterval)
	assert.Equal(t, 1, w.workers)
	assert.Equal(t, "test_defaults", w.ID())
}

func TestAsyncBatchWriter_SubmitAfterClose(t *testing.T) {
	rw := &recordingWriter{}
	w := NewAsyncBatchWriter[int](zap.NewNop(), rw, 10, time.Hour, "test_after_close", 1)
	w.Start(context.Background())

	require.True(t, w.Submit(1))
	w.Close()

	assert.NotPanics(t, func() {
		assert.False(t, w.Submit(2))
	})
	assert.Equal(t, 1, rw.total())
}

func TestAsyncBatchWriter_SubmitDuringClose(t *testing.T) {
	rw := &recordingWriter{}
	w := NewAsyncBatchWriter[int](zap.NewNop(), rw, 10, time.Millisecond, "test_during_close", 2)
	w.Start(context.Background())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				w.Submit(i)
			}
		}()
	}
	time.Sleep(time.Millisecond)
	w.Close()
	wg.Wait()

	assert.True(t, rw.closed)
}
