package service

import (
	"context"
	"time"

	"token-guard/internal/server/cache"
	"token-guard/internal/server/limiter"
	"token-guard/internal/server/model"
	"token-guard/internal/server/monitor"

	"go.uber.org/zap"
)

// Archiver 接收新生成报告的归档行，不能阻塞
type Archiver interface {
	Submit(record model.ReportRecord) bool
}

// Checker 单次 /check 请求的处理流程：限流、校验、缓存、计算、归档
type Checker struct {
	tl        *zap.Logger
	limiter   limiter.Limiter
	cache     *cache.ReportCache
	builder   ReportBuilder
	archivers []Archiver
	now       func() time.Time
}

func NewChecker(tl *zap.Logger, l limiter.Limiter, c *cache.ReportCache, builder ReportBuilder, archivers ...Archiver) *Checker {
	return &Checker{
		tl:        tl,
		limiter:   l,
		cache:     c,
		builder:   builder,
		archivers: archivers,
		now:       time.Now,
	}
}

// CheckResult 报告与本次限流判定
type CheckResult struct {
	Report   *model.SafetyReport
	Decision limiter.Decision
	Cached   bool
}

// Check 被拒绝时返回 *model.RateLimitedError，地址非法时返回 model.ErrInvalidIdentifier。
// 只要通过了限流，返回的 Decision 都有效
func (c *Checker) Check(ctx context.Context, clientKey, rawMint string) (CheckResult, error) {
	decision, err := c.limiter.Allow(ctx, clientKey)
	if err != nil {
		return CheckResult{}, err
	}
	result := CheckResult{Decision: decision}
	if !decision.Allowed {
		monitor.RateLimitDecisions.WithLabelValues("rejected").Inc()
		return result, &model.RateLimitedError{Limit: decision.Limit, Remaining: decision.Remaining}
	}
	monitor.RateLimitDecisions.WithLabelValues("allowed").Inc()

	id, err := model.ParseTokenIdentifier(rawMint)
	if err != nil {
		return result, err
	}

	report, hit, err := c.cache.GetOrLoad(ctx, id, func(loadCtx context.Context) (*model.SafetyReport, error) {
		report, err := c.builder.BuildReport(loadCtx, id)
		if err != nil {
			return nil, err
		}
		c.archive(report)
		return report, nil
	})
	if err != nil {
		return result, err
	}

	result.Report = report
	result.Cached = hit
	return result, nil
}

func (c *Checker) archive(report *model.SafetyReport) {
	if len(c.archivers) == 0 {
		return
	}
	record, err := model.NewReportRecord(report, c.now())
	if err != nil {
		c.tl.Warn("build report record failed", zap.String("mint", report.Mint.String()), zap.Error(err))
		return
	}
	for _, a := range c.archivers {
		a.Submit(record)
	}
}
