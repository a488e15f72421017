package model

import "github.com/shopspring/decimal"

// AssetSnapshot 一次报告周期内的链上资产快照
type AssetSnapshot struct {
	TotalSupply            decimal.Decimal   `json:"totalSupply"`
	MintAuthorityPresent   bool              `json:"mintAuthorityPresent"`
	FreezeAuthorityPresent bool              `json:"freezeAuthorityPresent"`
	MetadataMutable        bool              `json:"metadataMutable"`
	Name                   string            `json:"name"`
	Symbol                 string            `json:"symbol"`
	SocialLinks            map[string]string `json:"socialLinks"`
	MarketCapHint          *decimal.Decimal  `json:"marketCapHint,omitempty"`
}

type HolderEntry struct {
	Address  string          `json:"address"`
	UiAmount decimal.Decimal `json:"uiAmount"`
}

// HolderList 上游按持仓降序返回，这里不再排序
type HolderList []HolderEntry

// Top 前 n 个持有者
func (h HolderList) Top(n int) HolderList {
	if n < len(h) {
		return h[:n]
	}
	return h
}
