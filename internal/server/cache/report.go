package cache

import (
	"context"
	"errors"
	"time"

	"token-guard/internal/server/config"
	"token-guard/internal/server/model"
	"token-guard/internal/server/monitor"
	"token-guard/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DEFAULT_REPORT_TTL   = 60 * time.Second
	DEFAULT_LOAD_TIMEOUT = 20 * time.Second
	localCleanupInterval = time.Minute
)

// Loader 缓存未命中时计算报告
type Loader func(ctx context.Context) (*model.SafetyReport, error)

// CacheEntry 报告及过期时间，过期与否只看 ExpiresAt
type CacheEntry struct {
	Report    *model.SafetyReport `json:"report"`
	ExpiresAt int64               `json:"expiresAt"` // 毫秒
}

func (e *CacheEntry) fresh(now time.Time) bool {
	return e != nil && e.Report != nil && now.UnixMilli() < e.ExpiresAt
}

// ReportCache 本地 go-cache + 可选 Redis 两级缓存，同一 mint 并发未命中只加载一次
type ReportCache struct {
	tl          *zap.Logger
	localCache  *cache.Cache
	redis       *redis.Client
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	now         func() time.Time
}

// NewReportCache rdb 为 nil 时只用本地缓存
func NewReportCache(cfg config.CacheConfig, rdb *redis.Client, tl *zap.Logger) *ReportCache {
	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = DEFAULT_REPORT_TTL
	}
	loadTimeout := cfg.LoadTimeout()
	if loadTimeout <= 0 {
		loadTimeout = DEFAULT_LOAD_TIMEOUT
	}

	return &ReportCache{
		tl:          tl,
		localCache:  cache.New(ttl, localCleanupInterval),
		redis:       rdb,
		ttl:         ttl,
		loadTimeout: loadTimeout,
		now:         time.Now,
	}
}

// WithClock 替换时钟，测试用
func (c *ReportCache) WithClock(now func() time.Time) *ReportCache {
	c.now = now
	return c
}

func (c *ReportCache) TTL() time.Duration {
	return c.ttl
}

// Get 先查本地再查 Redis，过期视为未命中
func (c *ReportCache) Get(ctx context.Context, id model.TokenIdentifier) (*model.SafetyReport, bool) {
	key := utils.ReportCacheKey(id.String())
	now := c.now()

	if cached, found := c.localCache.Get(key); found {
		if entry, ok := cached.(*CacheEntry); ok && entry.fresh(now) {
			return entry.Report, true
		}
	}

	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.tl.Warn("report cache redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entry CacheEntry
	if err := sonic.Unmarshal(data, &entry); err != nil {
		c.tl.Warn("report cache entry decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !entry.fresh(now) {
		return nil, false
	}

	// 回填本地缓存
	c.localCache.Set(key, &entry, time.Duration(entry.ExpiresAt-now.UnixMilli())*time.Millisecond)
	return entry.Report, true
}

// Set 整体替换 mint 对应的报告
func (c *ReportCache) Set(ctx context.Context, id model.TokenIdentifier, report *model.SafetyReport, ttl time.Duration) {
	if report == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	key := utils.ReportCacheKey(id.String())
	entry := &CacheEntry{Report: report, ExpiresAt: c.now().Add(ttl).UnixMilli()}

	c.localCache.Set(key, entry, ttl)

	if c.redis == nil {
		return
	}
	data, err := sonic.Marshal(entry)
	if err != nil {
		c.tl.Warn("report cache entry encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		c.tl.Warn("report cache redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrLoad 命中直接返回；未命中时同 key 只有一个 loader 在跑。
// loader 使用脱离调用方的 ctx，调用方取消只会让自己提前返回，加载结果仍会写入缓存。失败不缓存。
func (c *ReportCache) GetOrLoad(ctx context.Context, id model.TokenIdentifier, loader Loader) (*model.SafetyReport, bool, error) {
	if report, ok := c.Get(ctx, id); ok {
		monitor.ReportCacheRequests.WithLabelValues("hit").Inc()
		return report, true, nil
	}

	key := utils.ReportCacheKey(id.String())
	ch := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		// 排队期间可能已被上一轮加载写入
		if report, ok := c.Get(loadCtx, id); ok {
			return report, nil
		}

		report, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		c.Set(loadCtx, id, report, c.ttl)
		return report, nil
	})

	select {
	case <-ctx.Done():
		monitor.ReportCacheRequests.WithLabelValues("abandoned").Inc()
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			monitor.ReportCacheRequests.WithLabelValues("error").Inc()
			return nil, false, res.Err
		}
		if res.Shared {
			monitor.ReportCacheRequests.WithLabelValues("shared").Inc()
		} else {
			monitor.ReportCacheRequests.WithLabelValues("miss").Inc()
		}
		return res.Val.(*model.SafetyReport), false, nil
	}
}
