package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterJob("tick", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.Equal(t, 1, s.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)

	after := runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestSchedulerKeepsRunningAfterJobError(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterJob("failing", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}

func TestSchedulerStopCancelsRunningJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	cancelled := make(chan struct{})
	s.RegisterJob("slow", time.Minute, func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})

	s.Start(context.Background())
	time.Sleep(10 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("running job was not cancelled")
	}
}

func TestSchedulerIgnoresNonPositiveInterval(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.RegisterJob("bad", 0, func(ctx context.Context) error { return nil })
	assert.Equal(t, 0, s.Len())

	// 未启动时 Stop 直接返回
	s.Stop(context.Background())
}
