package utils

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var usdPrinter = message.NewPrinter(language.English)

// SafeDecimal 解析上游数字字符串，空串、非数字、NaN、Inf、负数一律按 0 处理
func SafeDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return NonNegative(d)
}

// SafeDecimalFromFloat 同 SafeDecimal，nil 视为 0
func SafeDecimalFromFloat(f *float64) decimal.Decimal {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return decimal.Zero
	}
	return NonNegative(decimal.NewFromFloat(*f))
}

// SignedDecimalFromFloat 允许负数（涨跌幅）
func SignedDecimalFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Percent part / total * 100，total<=0 返回 0
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100))
}

// AdjustDecimals 调整精度显示
func AdjustDecimals(value *big.Int, decimals uint8) decimal.Decimal {
	decimalValue := decimal.NewFromBigInt(value, 0)
	divisor := decimal.New(1, int32(decimals))
	return decimalValue.Div(divisor)
}

// ShortenAddress abcd...wxyz
func ShortenAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}

// FormatUSD 千分位，最多两位小数，例如 12,345.5
func FormatUSD(d decimal.Decimal) string {
	return usdPrinter.Sprintf("%v", number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}
