package checks

import (
	"context"
	"fmt"

	"token-guard/internal/server/model"
	"token-guard/pkg/utils"

	"github.com/shopspring/decimal"
)

const (
	topHolderFailPct  = 10
	topHolderWarnPct  = 5
	top10WarnPct      = 25
	liquidityFailUsd  = 10000
	liquidityWarnUsd  = 50000
	concentrationSize = 10
)

// burnAddresses LP 代币销毁地址
var burnAddresses = map[string]struct{}{
	"1nc1nerator11111111111111111111111111111111": {},
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA": {},
}

// HolderFetcher 查询任意 mint 的最大持有者
type HolderFetcher interface {
	FetchLargestHolders(ctx context.Context, id model.TokenIdentifier) (model.HolderList, error)
}

func MintAuthority(asset model.AssetSnapshot) model.CheckResult {
	if asset.MintAuthorityPresent {
		return model.Fail("❌ Mint Authority Active: the creator can mint unlimited new tokens.")
	}
	return model.Pass("✅ Mint Authority Renounced: no new tokens can be minted.")
}

func FreezeAuthority(asset model.AssetSnapshot) model.CheckResult {
	if asset.FreezeAuthorityPresent {
		return model.Fail("❌ Freeze Authority Active: the creator can freeze tokens in any wallet.")
	}
	return model.Pass("✅ Freeze Authority Renounced: tokens cannot be frozen.")
}

func Metadata(asset model.AssetSnapshot) model.CheckResult {
	if asset.MetadataMutable {
		return model.Warn("⚠️ Metadata is Mutable: name and image can still be changed.")
	}
	return model.Pass("✅ Metadata is Immutable: name and image are permanent.")
}

// HolderDistribution 按 top1 / top10 占总供应量比例判定
func HolderDistribution(holders model.HolderList, totalSupply decimal.Decimal) model.CheckResult {
	if totalSupply.IsZero() {
		return model.Pass("✅ Zero supply: holder distribution does not apply.")
	}
	if totalSupply.IsNegative() {
		return model.Fail("❌ Failed to calculate holder distribution.")
	}
	if len(holders) == 0 {
		return model.Fail("❌ Could not retrieve holder data.")
	}

	top10 := decimal.Zero
	for _, h := range holders.Top(concentrationSize) {
		top10 = top10.Add(utils.NonNegative(h.UiAmount))
	}
	top1Pct := utils.Percent(utils.NonNegative(holders[0].UiAmount), totalSupply)
	top10Pct := utils.Percent(top10, totalSupply)

	switch {
	case top1Pct.GreaterThan(decimal.NewFromInt(topHolderFailPct)):
		return model.Fail(fmt.Sprintf("❌ Extreme Risk: the top wallet holds %s%% of the supply.", top1Pct.StringFixed(1)))
	case top1Pct.GreaterThan(decimal.NewFromInt(topHolderWarnPct)):
		return model.Warn(fmt.Sprintf("⚠️ High Risk: the top wallet holds %s%% of the supply.", top1Pct.StringFixed(1)))
	case top10Pct.GreaterThan(decimal.NewFromInt(top10WarnPct)):
		return model.Warn(fmt.Sprintf("⚠️ High Concentration: the top 10 wallets hold %s%% of the supply.", top10Pct.StringFixed(1)))
	}
	return model.Pass(fmt.Sprintf("✅ Healthy Distribution: top wallet holds %s%%, top 10 hold %s%%.",
		top1Pct.StringFixed(1), top10Pct.StringFixed(1)))
}

// Liquidity 按交易对美元流动性判定，pair 可为 nil
func Liquidity(pair *model.MarketPair, totalSupply decimal.Decimal) model.CheckResult {
	if totalSupply.IsZero() {
		return model.Pass("✅ Zero supply: liquidity does not apply.")
	}
	if !pair.HasLiquidity() {
		return model.Fail("❌ No Liquidity: no discoverable liquidity pool.")
	}

	usd := utils.NonNegative(*pair.LiquidityUsd)
	switch {
	case usd.LessThan(decimal.NewFromInt(liquidityFailUsd)):
		return model.Fail(fmt.Sprintf("❌ Dangerously Low Liquidity: only $%s in the pool.", utils.FormatUSD(usd)))
	case usd.LessThan(decimal.NewFromInt(liquidityWarnUsd)):
		return model.Warn(fmt.Sprintf("⚠️ Low Liquidity: only $%s in the pool.", utils.FormatUSD(usd)))
	}
	return model.Pass(fmt.Sprintf("✅ Liquidity Found: $%s in the pool.", utils.FormatUSD(usd)))
}

// LpLock 查询 LP 代币最大持有者，在销毁地址中视为已锁定
func LpLock(ctx context.Context, pair *model.MarketPair, fetch HolderFetcher) model.CheckResult {
	if !pair.HasLpToken() {
		return model.Fail("❌ LP Check Failed: no liquidity pool token found.")
	}

	lpMint, err := model.ParseTokenIdentifier(*pair.LpTokenAddress)
	if err != nil {
		return model.Fail("❌ LP Check Failed: no liquidity pool token found.")
	}

	holders, err := fetch.FetchLargestHolders(ctx, lpMint)
	if err != nil {
		return model.Fail("❌ LP Check Failed: error while checking LP holders.")
	}
	if len(holders) == 0 {
		return model.Fail("❌ LP Check Failed: could not fetch LP token holders.")
	}

	top := holders[0].Address
	if _, ok := burnAddresses[top]; ok {
		return model.Pass("✅ LP Burned: liquidity pool tokens sit in a burn address.")
	}
	return model.Fail(fmt.Sprintf("❌ LP Not Locked: liquidity is held by a private wallet (%s). Extreme rug pull risk.",
		utils.ShortenAddress(top)))
}
