package model

import "github.com/shopspring/decimal"

type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

type Rating string

const (
	RatingRisky   Rating = "Risky"
	RatingCaution Rating = "Caution"
	RatingSafe    Rating = "Safe"
)

type CheckResult struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
}

func Pass(msg string) CheckResult { return CheckResult{Status: StatusPass, Message: msg} }
func Warn(msg string) CheckResult { return CheckResult{Status: StatusWarn, Message: msg} }
func Fail(msg string) CheckResult { return CheckResult{Status: StatusFail, Message: msg} }

// HolderCheck 持仓分布结果附带原始持有者列表
type HolderCheck struct {
	CheckResult
	Holders HolderList `json:"holders"`
}

type Score struct {
	Value  int    `json:"value"`
	Rating Rating `json:"rating"`
}

type TokenInfo struct {
	Name   string            `json:"name"`
	Symbol string            `json:"symbol"`
	Links  map[string]string `json:"links"`
}

// SafetyReport 一次计算的完整报告，生成后不可修改，缓存中整体替换
type SafetyReport struct {
	Mint               TokenIdentifier `json:"mint"`
	MintAuthority      CheckResult     `json:"mintAuthority"`
	FreezeAuthority    CheckResult     `json:"freezeAuthority"`
	HolderDistribution HolderCheck     `json:"holderDistribution"`
	Liquidity          CheckResult     `json:"liquidity"`
	Metadata           CheckResult     `json:"metadata"`
	LpCheck            CheckResult     `json:"lpCheck"`
	TokenInfo          TokenInfo       `json:"tokenInfo"`
	MarketCap          decimal.Decimal `json:"marketCap"`
	TotalSupply        decimal.Decimal `json:"totalSupply"`
	Score              Score           `json:"score"`
	DexScreenerPair    *MarketPair     `json:"dexScreenerPair"`
}

// Checks 按固定顺序返回全部检查项，key 为报告字段名
func (r *SafetyReport) Checks() []NamedCheck {
	return []NamedCheck{
		{Name: "mintAuthority", Result: r.MintAuthority},
		{Name: "freezeAuthority", Result: r.FreezeAuthority},
		{Name: "holderDistribution", Result: r.HolderDistribution.CheckResult},
		{Name: "liquidity", Result: r.Liquidity},
		{Name: "metadata", Result: r.Metadata},
		{Name: "lpCheck", Result: r.LpCheck},
	}
}

type NamedCheck struct {
	Name   string
	Result CheckResult
}
