package helius

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"token-guard/internal/server/config"
	"token-guard/internal/server/model"
	"token-guard/internal/server/monitor"
	"token-guard/pkg/httpclient"
	"token-guard/pkg/solana_client"
	"token-guard/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const requestID = "token-guard"

var (
	errEmptyResult      = errors.New("empty result")
	errMissingTokenInfo = errors.New("token_info missing")
	errMissingSupply    = errors.New("token_info.supply missing or invalid")
)

// LargestAccountsGetter *rpc.Client 的子集，测试可替换
type LargestAccountsGetter interface {
	GetTokenLargestAccounts(ctx context.Context, tokenMint solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenLargestAccountsResult, error)
}

// HeliusClient 链上索引 RPC 客户端，不做重试
type HeliusClient struct {
	endpoint   string
	httpClient *httpclient.HTTPClient
	rpcClient  LargestAccountsGetter
	logger     *zap.Logger
}

func NewHeliusClient(cfg config.HeliusConfig, logger *zap.Logger) *HeliusClient {
	endpoint := cfg.Endpoint()
	httpCfg := httpclient.HTTPClientConfig{
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 0,
	}
	return &HeliusClient{
		endpoint:   endpoint,
		httpClient: httpclient.NewHTTPClient(httpCfg, logger),
		rpcClient:  solana_client.Init(endpoint),
		logger:     logger,
	}
}

// WithRPCClient 替换 getTokenLargestAccounts 的实现
func (h *HeliusClient) WithRPCClient(c LargestAccountsGetter) *HeliusClient {
	h.rpcClient = c
	return h
}

// FetchAsset getAsset，解析为 AssetSnapshot
func (h *HeliusClient) FetchAsset(ctx context.Context, id model.TokenIdentifier) (snapshot model.AssetSnapshot, err error) {
	start := time.Now()
	defer func() { monitor.ObserveUpstream(model.SourceAssetIndex, "getAsset", start, err) }()

	var resp GetAssetResp
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      requestID,
		Method:  "getAsset",
		Params:  map[string]string{"id": id.String()},
	}
	if err = h.httpClient.PostJSON(ctx, h.endpoint, req, nil, &resp); err != nil {
		return snapshot, model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getAsset: %w", err))
	}
	if resp.Error != nil {
		err = model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getAsset: %w", resp.Error))
		return snapshot, err
	}
	if resp.Result == nil {
		err = model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getAsset: %w", errEmptyResult))
		return snapshot, err
	}
	if snapshot, err = toAssetSnapshot(resp.Result); err != nil {
		err = model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getAsset: %w", err))
		return snapshot, err
	}
	return snapshot, nil
}

// FetchLargestHolders getTokenLargestAccounts
func (h *HeliusClient) FetchLargestHolders(ctx context.Context, id model.TokenIdentifier) (holders model.HolderList, err error) {
	start := time.Now()
	defer func() { monitor.ObserveUpstream(model.SourceAssetIndex, "getTokenLargestAccounts", start, err) }()

	mint, err := solana.PublicKeyFromBase58(id.String())
	if err != nil {
		return nil, model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getTokenLargestAccounts: %w", err))
	}

	out, err := h.rpcClient.GetTokenLargestAccounts(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		return nil, model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getTokenLargestAccounts: %w", err))
	}
	if out == nil {
		err = model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getTokenLargestAccounts: %w", errEmptyResult))
		return nil, err
	}

	holders = make(model.HolderList, 0, len(out.Value))
	for _, acc := range out.Value {
		if acc == nil {
			continue
		}
		holders = append(holders, model.HolderEntry{
			Address:  acc.Address.String(),
			UiAmount: uiAmount(acc.UiTokenAmount),
		})
	}
	return holders, nil
}

// uiAmount 优先 uiAmountString，其次 uiAmount，最后用原始数量按精度换算
func uiAmount(a rpc.UiTokenAmount) decimal.Decimal {
	if a.UiAmountString != "" {
		return utils.SafeDecimal(a.UiAmountString)
	}
	if a.UiAmount != nil {
		return utils.SafeDecimalFromFloat(a.UiAmount)
	}
	raw, ok := new(big.Int).SetString(strings.TrimSpace(a.Amount), 10)
	if !ok || raw.Sign() < 0 {
		return decimal.Zero
	}
	return utils.AdjustDecimals(raw, a.Decimals)
}

// toAssetSnapshot 缺少 token_info 或 supply 时报错，供应量未知不能当作 0
func toAssetSnapshot(asset *Asset) (model.AssetSnapshot, error) {
	snapshot := model.AssetSnapshot{
		TotalSupply:     decimal.Zero,
		MetadataMutable: asset.Mutable,
		Name:            orUnknown(asset.Content.Metadata.Name),
		Symbol:          orUnknown(asset.Content.Metadata.Symbol),
		SocialLinks:     map[string]string{},
	}
	for k, v := range asset.Content.Links {
		if s, ok := v.(string); ok && s != "" {
			snapshot.SocialLinks[k] = s
		}
	}

	info := asset.TokenInfo
	if info == nil {
		return snapshot, errMissingTokenInfo
	}
	raw, ok := new(big.Int).SetString(info.Supply.String(), 10)
	if !ok || raw.Sign() < 0 {
		return snapshot, errMissingSupply
	}
	snapshot.TotalSupply = utils.AdjustDecimals(raw, info.Decimals)
	snapshot.MintAuthorityPresent = info.MintAuthority != ""
	snapshot.FreezeAuthorityPresent = info.FreezeAuthority != ""

	if info.PriceInfo != nil && info.PriceInfo.PricePerToken != nil {
		mc := utils.SafeDecimalFromFloat(info.PriceInfo.PricePerToken).Mul(snapshot.TotalSupply)
		snapshot.MarketCapHint = &mc
	}
	return snapshot, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
