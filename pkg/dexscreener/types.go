package dexscreener

// PairData tokens/v1 接口返回数组中的单个交易对
type PairData struct {
	ChainID       string          `json:"chainId"`
	DexID         string          `json:"dexId"`
	URL           string          `json:"url"`
	PairAddress   string          `json:"pairAddress"`
	BaseToken     DEXToken        `json:"baseToken"`
	QuoteToken    DEXToken        `json:"quoteToken"`
	PriceNative   string          `json:"priceNative"`
	PriceUsd      string          `json:"priceUsd"`
	Txns          PairTxns        `json:"txns"`
	Volume        PairVolume      `json:"volume"`
	PriceChange   PairPriceChange `json:"priceChange"`
	Liquidity     *DEXLiquidity   `json:"liquidity"`
	Fdv           float64         `json:"fdv"`
	MarketCap     float64         `json:"marketCap"`
	PairCreatedAt int64           `json:"pairCreatedAt"` // 毫秒
	LpToken       *LpToken        `json:"lpToken"`
}

type DEXToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// DEXLiquidity usd 可能缺失
type DEXLiquidity struct {
	Usd   *float64 `json:"usd"`
	Base  float64  `json:"base"`
	Quote float64  `json:"quote"`
}

type LpToken struct {
	Address string `json:"address"`
}

type PairTxns struct {
	H24 TxnSummary `json:"h24"`
}

type TxnSummary struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

type PairVolume struct {
	H24 float64 `json:"h24"`
}

type PairPriceChange struct {
	H24 float64 `json:"h24"`
}
