package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc 定义作业执行函数
type JobFunc func(ctx context.Context) error

// Scheduler 周期作业调度器
type Scheduler struct {
	jobs    map[string]*scheduledJob
	running bool
	mu      sync.Mutex
	tl      *zap.Logger
}

type scheduledJob struct {
	name     string
	interval time.Duration
	fn       JobFunc
	stopCh   chan struct{}
	done     sync.WaitGroup
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs: make(map[string]*scheduledJob),
		tl:   logger,
	}
}

// RegisterJob 注册周期作业，启动后立即执行一次；interval<=0 忽略
func (s *Scheduler) RegisterJob(name string, interval time.Duration, fn JobFunc) {
	if interval <= 0 {
		s.tl.Warn("Skip job with non-positive interval", zap.String("job", name))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[name] = &scheduledJob{
		name:     name,
		interval: interval,
		fn:       fn,
		stopCh:   make(chan struct{}),
	}
	s.tl.Info("Registered job", zap.String("job", name), zap.Duration("interval", interval))
}

// Len 已注册作业数
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	for _, j := range s.jobs {
		j.done.Add(1)
		go func(j *scheduledJob) {
			defer j.done.Done()
			s.runJob(ctx, j)
		}(j)
	}
}

// Stop 通知所有作业退出，最多等到 ctx 结束
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for _, j := range s.jobs {
		close(j.stopCh)
	}
	jobs := make([]*scheduledJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	s.tl.Warn("Stopping scheduler...")

	waitCh := make(chan struct{})
	go func() {
		for _, j := range jobs {
			j.done.Wait()
		}
		close(waitCh)
	}()

	select {
	case <-waitCh:
		s.tl.Info("All jobs stopped successfully")
	case <-ctx.Done():
		s.tl.Warn("Context deadline exceeded while waiting for jobs to stop")
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *scheduledJob) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.executeJob(ctx, j)

	for {
		select {
		case <-ticker.C:
			s.executeJob(ctx, j)
		case <-j.stopCh:
			s.tl.Info("Stopping job", zap.String("job", j.name))
			return
		case <-ctx.Done():
			s.tl.Info("Context cancelled, stopping job", zap.String("job", j.name))
			return
		}
	}
}

// executeJob 单次执行最多占用半个周期
func (s *Scheduler) executeJob(ctx context.Context, j *scheduledJob) {
	jobCtx, cancel := context.WithTimeout(ctx, j.interval/2)
	defer cancel()

	// stop 时提前结束正在执行的作业
	go func() {
		select {
		case <-j.stopCh:
			cancel()
		case <-jobCtx.Done():
		}
	}()

	startTime := time.Now()
	if err := j.fn(jobCtx); err != nil {
		s.tl.Error("Job execution failed",
			zap.String("job", j.name),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.tl.Debug("Job execution completed",
		zap.String("job", j.name),
		zap.Duration("duration", time.Since(startTime)))
}
