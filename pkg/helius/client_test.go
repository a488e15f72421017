package helius

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"token-guard/internal/server/config"
	"token-guard/internal/server/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMint = model.TokenIdentifier("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

func newTestClient(t *testing.T, handler http.HandlerFunc) *HeliusClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHeliusClient(config.HeliusConfig{RpcURL: srv.URL, Timeout: 2}, zap.NewNop())
}

func rpcHandler(t *testing.T, result string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getAsset", req.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"` + req.ID + `",` + result + `}`))
	}
}

func TestFetchAsset(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, `"result":{
		"id":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"interface":"FungibleToken",
		"mutable":true,
		"content":{"metadata":{"name":"USD Coin","symbol":"USDC"},"links":{"external_url":"https://circle.com","image":"","extra":{"a":1}}},
		"token_info":{"supply":1000000000000,"decimals":6,"mint_authority":"BJE5MMbqXjVwjAF7oxwPYXnTXDyspzZyt4vwenNw5ruG","freeze_authority":"","price_info":{"price_per_token":0.5,"currency":"USDC"}}
	}`))

	snapshot, err := c.FetchAsset(context.Background(), testMint)
	require.NoError(t, err)

	assert.Equal(t, "USD Coin", snapshot.Name)
	assert.Equal(t, "USDC", snapshot.Symbol)
	assert.True(t, snapshot.MetadataMutable)
	assert.True(t, snapshot.MintAuthorityPresent)
	assert.False(t, snapshot.FreezeAuthorityPresent)
	assert.True(t, snapshot.TotalSupply.Equal(decimal.NewFromInt(1000000)))
	require.NotNil(t, snapshot.MarketCapHint)
	assert.True(t, snapshot.MarketCapHint.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, map[string]string{"external_url": "https://circle.com"}, snapshot.SocialLinks)
}

func TestFetchAsset_Defaults(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, `"result":{"id":"x","content":{"metadata":{}},"mutable":false,"token_info":{"supply":0,"decimals":0}}`))

	snapshot, err := c.FetchAsset(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", snapshot.Name)
	assert.Equal(t, "Unknown", snapshot.Symbol)
	assert.True(t, snapshot.TotalSupply.IsZero())
	assert.Nil(t, snapshot.MarketCapHint)
	assert.False(t, snapshot.MintAuthorityPresent)
}

func TestFetchAsset_Errors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"rpc error":   rpcHandler(t, `"error":{"code":-32602,"message":"invalid params"}`),
		"null result": rpcHandler(t, `"result":null`),
		"no token_info": rpcHandler(t, `"result":{"id":"x","content":{"metadata":{}},"mutable":false}`),
		"no supply":     rpcHandler(t, `"result":{"id":"x","content":{"metadata":{}},"mutable":false,"token_info":{"decimals":6}}`),
		"bad supply":    rpcHandler(t, `"result":{"id":"x","content":{"metadata":{}},"mutable":false,"token_info":{"supply":"abc","decimals":6}}`),
		"http 500": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, h)
			_, err := c.FetchAsset(context.Background(), testMint)
			require.Error(t, err)

			var upstream *model.UpstreamError
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, model.SourceAssetIndex, upstream.Source)
		})
	}
}

type fakeLargestAccounts struct {
	out *rpc.GetTokenLargestAccountsResult
	err error
}

func (f *fakeLargestAccounts) GetTokenLargestAccounts(ctx context.Context, mint solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenLargestAccountsResult, error) {
	return f.out, f.err
}

func TestFetchLargestHolders(t *testing.T) {
	ui := 12.5
	holderA := solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	holderB := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	holderC := solana.MustPublicKeyFromBase58("BJE5MMbqXjVwjAF7oxwPYXnTXDyspzZyt4vwenNw5ruG")

	fake := &fakeLargestAccounts{out: &rpc.GetTokenLargestAccountsResult{
		Value: []*rpc.TokenLargestAccountsResult{
			{Address: holderA, UiTokenAmount: rpc.UiTokenAmount{Amount: "300000000", Decimals: 6, UiAmountString: "300"}},
			{Address: holderB, UiTokenAmount: rpc.UiTokenAmount{Amount: "12500000", Decimals: 6, UiAmount: &ui}},
			{Address: holderC, UiTokenAmount: rpc.UiTokenAmount{Amount: "1500000", Decimals: 6}},
		},
	}}
	c := NewHeliusClient(config.HeliusConfig{RpcURL: "http://127.0.0.1:0"}, zap.NewNop()).WithRPCClient(fake)

	holders, err := c.FetchLargestHolders(context.Background(), testMint)
	require.NoError(t, err)
	require.Len(t, holders, 3)
	assert.Equal(t, holderA.String(), holders[0].Address)
	assert.True(t, holders[0].UiAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, holders[1].UiAmount.Equal(decimal.NewFromFloat(12.5)))
	assert.True(t, holders[2].UiAmount.Equal(decimal.NewFromFloat(1.5)))
}

func TestFetchLargestHolders_Errors(t *testing.T) {
	for name, fake := range map[string]*fakeLargestAccounts{
		"transport": {err: errors.New("connection refused")},
		"nil":       {},
	} {
		t.Run(name, func(t *testing.T) {
			c := NewHeliusClient(config.HeliusConfig{RpcURL: "http://127.0.0.1:0"}, zap.NewNop()).WithRPCClient(fake)
			_, err := c.FetchLargestHolders(context.Background(), testMint)

			var upstream *model.UpstreamError
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, model.SourceAssetIndex, upstream.Source)
		})
	}
}
