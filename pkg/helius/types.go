package helius

import "encoding/json"

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// rpcError JSON-RPC 错误信封
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return e.Message
}

// GetAssetResp getAsset 响应
type GetAssetResp struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  *Asset    `json:"result"`
	Error   *rpcError `json:"error"`
}

// Asset DAS 资产，只解析报告需要的字段
type Asset struct {
	ID        string     `json:"id"`
	Interface string     `json:"interface"`
	Content   Content    `json:"content"`
	Mutable   bool       `json:"mutable"`
	TokenInfo *TokenInfo `json:"token_info"`
}

type Content struct {
	Metadata Metadata               `json:"metadata"`
	Links    map[string]interface{} `json:"links"` // 值可能不是字符串，转换时过滤
}

type Metadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// TokenInfo 同质化代币信息，supply 为原始单位
type TokenInfo struct {
	Supply          json.Number `json:"supply"`
	Decimals        uint8       `json:"decimals"`
	MintAuthority   string      `json:"mint_authority"`
	FreezeAuthority string      `json:"freeze_authority"`
	PriceInfo       *PriceInfo  `json:"price_info"`
}

type PriceInfo struct {
	PricePerToken *float64 `json:"price_per_token"`
	Currency      string   `json:"currency"`
}
