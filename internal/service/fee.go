package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultFeeRate 平台抽成 10%
var DefaultFeeRate = decimal.RequireFromString("0.10")

// ParseFeeRate 解析配置中的费率，必须在 [0, 1) 区间
func ParseFeeRate(s string) (decimal.Decimal, error) {
	if s == "" {
		return DefaultFeeRate, nil
	}
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid fee rate %q: %w", s, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("fee rate %s out of range [0, 1)", rate)
	}
	return rate, nil
}

// SplitFee 计算手续费与创作者到账金额: fee = round(price * rate)，半数远离零取整。
// 返回值满足 fee + net == price
func SplitFee(price int64, rate decimal.Decimal) (fee, net int64) {
	fee = decimal.NewFromInt(price).Mul(rate).Round(0).IntPart()
	return fee, price - fee
}
