package dexscreener

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"token-guard/internal/server/config"
	"token-guard/internal/server/model"
	"token-guard/internal/server/monitor"
	"token-guard/pkg/httpclient"
	"token-guard/pkg/utils"

	"go.uber.org/zap"
)

const methodTokenPairs = "tokenPairs"

// DexScreenerClient 行情数据，任何失败都视为没有交易对
type DexScreenerClient struct {
	baseURL    string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewDexScreenerClient(cfg config.DexScreenerConfig, logger *zap.Logger) *DexScreenerClient {
	httpCfg := httpclient.HTTPClientConfig{
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 0,
	}
	return &DexScreenerClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpclient.NewHTTPClient(httpCfg, logger),
		logger:     logger,
	}
}

// FetchBestPair 返回第一个交易对，没有时 ok=false
func (d *DexScreenerClient) FetchBestPair(ctx context.Context, id model.TokenIdentifier) (model.MarketPair, bool) {
	start := time.Now()
	var pairs []PairData

	err := d.httpClient.Get(ctx, d.baseURL+"/"+id.String(), nil, nil, &pairs)
	if err != nil {
		d.observe(start, classify(err))
		d.logger.Warn("dexscreener request failed", zap.String("mint", id.String()), zap.Error(err))
		return model.MarketPair{}, false
	}
	if len(pairs) == 0 {
		d.observe(start, "empty")
		d.logger.Debug("dexscreener returned no pairs", zap.String("mint", id.String()))
		return model.MarketPair{}, false
	}

	d.observe(start, "ok")
	return toMarketPair(pairs[0]), true
}

func (d *DexScreenerClient) observe(start time.Time, result string) {
	monitor.UpstreamRequests.WithLabelValues(model.SourceMarketData, methodTokenPairs, result).Inc()
	monitor.UpstreamDuration.WithLabelValues(model.SourceMarketData, methodTokenPairs).Observe(time.Since(start).Seconds())
}

func classify(err error) string {
	var httpErr *httpclient.HTTPError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &httpErr):
		return "status"
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return "malformed"
	default:
		return "error"
	}
}

func toMarketPair(p PairData) model.MarketPair {
	pair := model.MarketPair{
		DexID:             p.DexID,
		URL:               p.URL,
		PairAddress:       p.PairAddress,
		QuoteSymbol:       p.QuoteToken.Symbol,
		PriceUsd:          utils.SafeDecimal(p.PriceUsd),
		PriceNative:       utils.SafeDecimal(p.PriceNative),
		Fdv:               utils.SafeDecimalFromFloat(&p.Fdv),
		Volume24h:         utils.SafeDecimalFromFloat(&p.Volume.H24),
		PriceChange24hPct: utils.SignedDecimalFromFloat(p.PriceChange.H24),
		Buys24h:           p.Txns.H24.Buys,
		Sells24h:          p.Txns.H24.Sells,
	}
	if p.PairCreatedAt > 0 {
		pair.PairCreatedAt = time.UnixMilli(p.PairCreatedAt).UTC()
	}
	if p.Liquidity != nil && p.Liquidity.Usd != nil {
		usd := utils.SafeDecimalFromFloat(p.Liquidity.Usd)
		pair.LiquidityUsd = &usd
	}
	if p.LpToken != nil && p.LpToken.Address != "" {
		addr := p.LpToken.Address
		pair.LpTokenAddress = &addr
	}
	return pair
}
