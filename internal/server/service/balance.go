package service

import (
	"context"
	"fmt"
	"math/big"

	"token-guard/internal/server/model"
	"token-guard/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TokenAccountReader *rpc.Client 的子集
type TokenAccountReader interface {
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
}

// WalletBalance 钱包在某个 mint 上的合计余额
type WalletBalance struct {
	Balance  uint64          `json:"balance"`  // 原始单位
	UiAmount decimal.Decimal `json:"uiAmount"` // 按精度换算
}

type BalanceService struct {
	tl     *zap.Logger
	client TokenAccountReader
}

func NewBalanceService(tl *zap.Logger, client TokenAccountReader) *BalanceService {
	return &BalanceService{tl: tl, client: client}
}

// GetTokenBalance 汇总 owner 名下该 mint 的所有 token 账户，没有账户时余额为 0
func (b *BalanceService) GetTokenBalance(ctx context.Context, wallet, mint model.TokenIdentifier) (WalletBalance, error) {
	owner := wallet.PublicKey()
	mintPubKey := mint.PublicKey()

	tokenAccounts, err := b.client.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{
			Mint: &mintPubKey,
		},
		&rpc.GetTokenAccountsOpts{
			Encoding: solana.EncodingBase64,
		},
	)
	if err != nil {
		return WalletBalance{}, model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getTokenAccountsByOwner: %w", err))
	}

	result := WalletBalance{UiAmount: decimal.Zero}
	if tokenAccounts == nil || len(tokenAccounts.Value) == 0 {
		return result, nil
	}

	total := new(big.Int)
	var decimals uint8
	for _, account := range tokenAccounts.Value {
		if account == nil {
			continue
		}
		balance, err := b.client.GetTokenAccountBalance(ctx, account.Pubkey, rpc.CommitmentFinalized)
		if err != nil {
			return WalletBalance{}, model.NewUpstreamError(model.SourceAssetIndex, fmt.Errorf("getTokenAccountBalance %s: %w", account.Pubkey, err))
		}
		if balance == nil || balance.Value == nil {
			continue
		}
		amount, ok := new(big.Int).SetString(balance.Value.Amount, 10)
		if !ok || amount.Sign() < 0 {
			b.tl.Warn("unexpected token amount", zap.String("account", account.Pubkey.String()), zap.String("amount", balance.Value.Amount))
			continue
		}
		total.Add(total, amount)
		decimals = balance.Value.Decimals
	}

	if !total.IsUint64() {
		return WalletBalance{}, fmt.Errorf("balance overflows uint64: %s", total)
	}
	result.Balance = total.Uint64()
	result.UiAmount = utils.AdjustDecimals(total, decimals)
	return result, nil
}
