package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketPair 流动性最好的交易对，缺失是合法状态
type MarketPair struct {
	DexID             string           `json:"dexId"`
	URL               string           `json:"url"`
	PairAddress       string           `json:"pairAddress"`
	QuoteSymbol       string           `json:"quoteSymbol"`
	PriceUsd          decimal.Decimal  `json:"priceUsd"`
	PriceNative       decimal.Decimal  `json:"priceNative"`
	LiquidityUsd      *decimal.Decimal `json:"liquidityUsd"` // nil: 上游没有 liquidity 字段
	Fdv               decimal.Decimal  `json:"fdv"`
	Volume24h         decimal.Decimal  `json:"volume24h"`
	PriceChange24hPct decimal.Decimal  `json:"priceChange24hPct"`
	Buys24h           int64            `json:"buys24h"`
	Sells24h          int64            `json:"sells24h"`
	PairCreatedAt     time.Time        `json:"pairCreatedAt"`
	LpTokenAddress    *string          `json:"lpTokenAddress"`
}

func (p *MarketPair) HasLiquidity() bool {
	return p != nil && p.LiquidityUsd != nil
}

func (p *MarketPair) HasLpToken() bool {
	return p != nil && p.LpTokenAddress != nil && *p.LpTokenAddress != ""
}
