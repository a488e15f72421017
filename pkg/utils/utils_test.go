package utils

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSafeDecimal(t *testing.T) {
	cases := map[string]string{
		"":          "0",
		"  12.5 ":   "12.5",
		"abc":       "0",
		"NaN":       "0",
		"-3":        "0",
		"1e3":       "1000",
		"100000000": "100000000",
	}
	for in, want := range cases {
		assert.Truef(t, decimal.RequireFromString(want).Equal(SafeDecimal(in)), "in=%q got=%s", in, SafeDecimal(in))
	}
}

func TestSafeDecimalFromFloat(t *testing.T) {
	nan, inf, neg, ok := math.NaN(), math.Inf(1), -1.5, 42.25
	assert.True(t, SafeDecimalFromFloat(nil).IsZero())
	assert.True(t, SafeDecimalFromFloat(&nan).IsZero())
	assert.True(t, SafeDecimalFromFloat(&inf).IsZero())
	assert.True(t, SafeDecimalFromFloat(&neg).IsZero())
	assert.Equal(t, "42.25", SafeDecimalFromFloat(&ok).String())
	assert.Equal(t, "-3.5", SignedDecimalFromFloat(-3.5).String())
	assert.True(t, SignedDecimalFromFloat(math.NaN()).IsZero())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "15", Percent(decimal.NewFromInt(150), decimal.NewFromInt(1000)).String())
	assert.True(t, Percent(decimal.NewFromInt(1), decimal.Zero).IsZero())
}

func TestAdjustDecimals(t *testing.T) {
	assert.Equal(t, "1000.5", AdjustDecimals(big.NewInt(1000500000), 6).String())
}

func TestShortenAddress(t *testing.T) {
	assert.Equal(t, "7xKX...gAsU", ShortenAddress("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"))
	assert.Equal(t, "short", ShortenAddress("short"))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "0", FormatUSD(decimal.Zero))
	assert.Equal(t, "999", FormatUSD(decimal.NewFromInt(999)))
	assert.Equal(t, "5,000", FormatUSD(decimal.NewFromInt(5000)))
	assert.Equal(t, "1,234,567.89", FormatUSD(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-12,000", FormatUSD(decimal.NewFromInt(-12000)))
	assert.Equal(t, "12,345.5", FormatUSD(decimal.RequireFromString("12345.5")))
	assert.Equal(t, "0.13", FormatUSD(decimal.RequireFromString("0.125")))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "token_guard:report:abc", ReportCacheKey("abc"))
	assert.Equal(t, "token_guard:ratelimit:1.2.3.4", RateLimitKey("1.2.3.4"))
}
