package limiter

import (
	"context"
	"sync"
	"time"

	"token-guard/internal/server/config"
)

const (
	DEFAULT_LIMIT  = 10
	DEFAULT_WINDOW = 10 * time.Second
)

type bucket struct {
	mu   sync.Mutex
	hits []time.Time
	dead bool // 已被清理出 map
}

// prune 丢弃 ts <= now-window 的记录
func (b *bucket) prune(cutoff time.Time) {
	i := 0
	for i < len(b.hits) && !b.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.hits = append(b.hits[:0], b.hits[i:]...)
	}
}

// SlidingWindow 进程内滑动日志限流，每个 key 独立加锁
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewSlidingWindow(cfg config.RateLimitConfig) *SlidingWindow {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DEFAULT_LIMIT
	}
	window := cfg.Window()
	if window <= 0 {
		window = DEFAULT_WINDOW
	}
	return &SlidingWindow{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// WithClock 替换时钟，测试用
func (s *SlidingWindow) WithClock(now func() time.Time) *SlidingWindow {
	s.now = now
	return s
}

func (s *SlidingWindow) Allow(_ context.Context, key string) (Decision, error) {
	now := s.now()
	cutoff := now.Add(-s.window)
	s.maybeSweep(now, cutoff)

	for {
		b := s.bucket(key)
		b.mu.Lock()
		if b.dead {
			b.mu.Unlock()
			continue
		}

		b.prune(cutoff)
		d := Decision{Limit: s.limit}
		if len(b.hits) < s.limit {
			b.hits = append(b.hits, now)
			d.Allowed = true
			d.Remaining = s.limit - len(b.hits)
		}
		b.mu.Unlock()
		return d, nil
	}
}

func (s *SlidingWindow) bucket(key string) *bucket {
	s.mu.RLock()
	b, ok := s.buckets[key]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.buckets[key]; !ok {
		b = &bucket{}
		s.buckets[key] = b
	}
	return b
}

// maybeSweep 每个窗口最多清理一次空闲 key
func (s *SlidingWindow) maybeSweep(now, cutoff time.Time) {
	s.mu.RLock()
	due := now.Sub(s.lastSweep) >= s.window
	s.mu.RUnlock()
	if !due {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) < s.window {
		return
	}
	s.lastSweep = now
	for key, b := range s.buckets {
		b.mu.Lock()
		b.prune(cutoff)
		if len(b.hits) == 0 {
			b.dead = true
			delete(s.buckets, key)
		}
		b.mu.Unlock()
	}
}

func (s *SlidingWindow) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}
