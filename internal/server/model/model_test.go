package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenIdentifier(t *testing.T) {
	id, err := ParseTokenIdentifier("  EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v ")
	require.NoError(t, err)
	assert.Equal(t, TokenIdentifier("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), id)

	again, err := ParseTokenIdentifier(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, again, "normalization must be idempotent")
	assert.Equal(t, id.String(), id.PublicKey().String())
}

func TestParseTokenIdentifier_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-key", "0OIl", "abc", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1vEPjF"} {
		_, err := ParseTokenIdentifier(raw)
		assert.Truef(t, errors.Is(err, ErrInvalidIdentifier), "raw=%q err=%v", raw, err)
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	var err error = NewUpstreamError(SourceAssetIndex, cause)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, SourceAssetIndex, ue.Source)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "asset-index")
}

func TestNewReportRecord(t *testing.T) {
	liq := decimal.NewFromInt(25000)
	report := &SafetyReport{
		Mint:               "So11111111111111111111111111111111111111112",
		MintAuthority:      Fail("mint"),
		FreezeAuthority:    Pass("freeze"),
		HolderDistribution: HolderCheck{CheckResult: Warn("holders")},
		Liquidity:          Warn("liq"),
		Metadata:           Pass("meta"),
		LpCheck:            Fail("lp"),
		TokenInfo:          TokenInfo{Name: "Wrapped SOL", Symbol: "SOL"},
		Score:              Score{Value: 60, Rating: RatingCaution},
		DexScreenerPair:    &MarketPair{LiquidityUsd: &liq},
	}

	at := time.UnixMilli(1700000000000)
	rec, err := NewReportRecord(report, at)
	require.NoError(t, err)

	assert.Equal(t, "So11111111111111111111111111111111111111112", rec.Mint)
	assert.Equal(t, "SOL", rec.Symbol)
	assert.Equal(t, 60, rec.Score)
	assert.Equal(t, "Caution", rec.Rating)
	assert.Equal(t, []string{"mintAuthority", "lpCheck"}, []string(rec.FailedChecks))
	assert.True(t, liq.Equal(rec.LiquidityUsd))
	assert.Equal(t, int64(1700000000000), rec.CreatedAt)
	assert.Contains(t, string(rec.Report), `"rating":"Caution"`)
}

func TestHolderListTop(t *testing.T) {
	list := HolderList{{Address: "a"}, {Address: "b"}, {Address: "c"}}
	assert.Len(t, list.Top(2), 2)
	assert.Len(t, list.Top(10), 3)
	assert.Len(t, HolderList(nil).Top(10), 0)
}
