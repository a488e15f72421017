package service

import (
	"context"
	"time"

	"token-guard/internal/server/checks"
	"token-guard/internal/server/model"
	"token-guard/internal/server/monitor"
	"token-guard/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "token-guard/service"

// AssetSource 链上资产数据，必需
type AssetSource interface {
	FetchAsset(ctx context.Context, id model.TokenIdentifier) (model.AssetSnapshot, error)
	FetchLargestHolders(ctx context.Context, id model.TokenIdentifier) (model.HolderList, error)
}

// MarketSource 行情数据，可缺失
type MarketSource interface {
	FetchBestPair(ctx context.Context, id model.TokenIdentifier) (model.MarketPair, bool)
}

// ReportBuilder 计算一份新报告
type ReportBuilder interface {
	BuildReport(ctx context.Context, id model.TokenIdentifier) (*model.SafetyReport, error)
}

type ReportAggregator struct {
	tl     *zap.Logger
	assets AssetSource
	market MarketSource
}

func NewReportAggregator(tl *zap.Logger, assets AssetSource, market MarketSource) *ReportAggregator {
	return &ReportAggregator{tl: tl, assets: assets, market: market}
}

// BuildReport 并发拉取资产、持有者、交易对后计算检查项和评分。
// 资产或持有者失败时整体失败（资产错误优先），交易对缺失继续。不重试也不缓存。
func (a *ReportAggregator) BuildReport(ctx context.Context, id model.TokenIdentifier) (*model.SafetyReport, error) {
	ctx, span := logger.StartSpan(ctx, tracerName, "BuildReport", attribute.String("mint", id.String()))
	defer span.End()
	start := time.Now()

	var (
		asset     model.AssetSnapshot
		assetErr  error
		holders   model.HolderList
		holderErr error
		pair      model.MarketPair
		hasPair   bool
	)

	var wg conc.WaitGroup
	wg.Go(func() { asset, assetErr = a.assets.FetchAsset(ctx, id) })
	wg.Go(func() { holders, holderErr = a.assets.FetchLargestHolders(ctx, id) })
	wg.Go(func() { pair, hasPair = a.market.FetchBestPair(ctx, id) })
	wg.Wait()

	if err := firstError(assetErr, holderErr); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream failed")
		logger.NewLoggerWithTrace(ctx, a.tl).Warn("build report failed", zap.String("mint", id.String()), zap.Error(err))
		return nil, err
	}

	var pairRef *model.MarketPair
	if hasPair {
		pairRef = &pair
	}

	report := &model.SafetyReport{
		Mint:            id,
		MintAuthority:   checks.MintAuthority(asset),
		FreezeAuthority: checks.FreezeAuthority(asset),
		HolderDistribution: model.HolderCheck{
			CheckResult: checks.HolderDistribution(holders, asset.TotalSupply),
			Holders:     holders,
		},
		Liquidity: checks.Liquidity(pairRef, asset.TotalSupply),
		Metadata:  checks.Metadata(asset),
		LpCheck:   checks.LpLock(ctx, pairRef, a.assets),
		TokenInfo: model.TokenInfo{
			Name:   asset.Name,
			Symbol: asset.Symbol,
			Links:  asset.SocialLinks,
		},
		MarketCap:       decimal.Zero,
		TotalSupply:     asset.TotalSupply,
		DexScreenerPair: pairRef,
	}
	if asset.MarketCapHint != nil {
		report.MarketCap = *asset.MarketCapHint
	}
	if report.TokenInfo.Links == nil {
		report.TokenInfo.Links = map[string]string{}
	}
	if report.HolderDistribution.Holders == nil {
		report.HolderDistribution.Holders = model.HolderList{}
	}

	// lpCheck 只展示，不计分
	report.Score = checks.Score(
		report.MintAuthority,
		report.FreezeAuthority,
		report.HolderDistribution.CheckResult,
		report.Metadata,
		report.Liquidity,
	)

	monitor.ReportBuildDuration.Observe(time.Since(start).Seconds())
	monitor.ReportScores.WithLabelValues(string(report.Score.Rating)).Inc()
	span.SetAttributes(attribute.Int("score", report.Score.Value), attribute.Bool("has_pair", hasPair))
	return report, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
