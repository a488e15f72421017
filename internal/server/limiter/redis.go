package limiter

import (
	"context"
	"fmt"
	"time"

	"token-guard/internal/server/config"
	"token-guard/internal/server/monitor"
	"token-guard/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// slidingLogScript ZSET 中 score 为毫秒时间戳
// KEYS[1] key; ARGV now_ms, cutoff_ms, window_ms, limit, member
// 返回 {allowed, remaining}
var slidingLogScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, ARGV[1], ARGV[5])
	redis.call('PEXPIRE', key, ARGV[3])
	return {1, limit - count - 1}
end
redis.call('PEXPIRE', key, ARGV[3])
return {0, 0}
`)

// RedisSlidingWindow 多实例共享的滑动日志限流，Redis 不可用时退回进程内限流
type RedisSlidingWindow struct {
	rdb      *redis.Client
	fallback *SlidingWindow
	limit    int
	window   time.Duration
	tl       *zap.Logger
}

func NewRedisSlidingWindow(cfg config.RateLimitConfig, rdb *redis.Client, tl *zap.Logger) *RedisSlidingWindow {
	fallback := NewSlidingWindow(cfg)
	return &RedisSlidingWindow{
		rdb:      rdb,
		fallback: fallback,
		limit:    fallback.limit,
		window:   fallback.window,
		tl:       tl,
	}
}

// WithClock 同时替换降级限流器的时钟
func (r *RedisSlidingWindow) WithClock(now func() time.Time) *RedisSlidingWindow {
	r.fallback.WithClock(now)
	return r
}

func (r *RedisSlidingWindow) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.fallback.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := slidingLogScript.Run(ctx, r.rdb,
		[]string{utils.RateLimitKey(key)},
		now, now-r.window.Milliseconds(), r.window.Milliseconds(), r.limit, member,
	).Int64Slice()
	if err != nil || len(res) != 2 {
		monitor.RateLimitBackendErrors.Inc()
		r.tl.Warn("redis rate limiter unavailable, using local limiter", zap.String("key", key), zap.Error(err))
		return r.fallback.Allow(ctx, key)
	}

	return Decision{
		Allowed:   res[0] == 1,
		Limit:     r.limit,
		Remaining: int(res[1]),
	}, nil
}
