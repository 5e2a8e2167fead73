package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DropsPerXRP 1 XRP = 1,000,000 drops
const DropsPerXRP = 1_000_000

// xrpDecimalPlaces XRP 金额最多6位小数
const xrpDecimalPlaces = 6

// XRPToDrops XRP 转 drops，超过6位小数视为非法金额
func XRPToDrops(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(xrpDecimalPlaces)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, xrpDecimalPlaces)
	}
	if shifted.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", amount)
	}
	return shifted.IntPart(), nil
}

// DropsToXRP drops 转 XRP
func DropsToXRP(drops int64) decimal.Decimal {
	return decimal.NewFromInt(drops).Shift(-xrpDecimalPlaces)
}

// ParseDrops 解析账本返回的 drops 字符串
func ParseDrops(drops string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(drops)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid drops value %q: %w", drops, err)
	}
	if !d.IsInteger() {
		return decimal.Zero, fmt.Errorf("invalid drops value %q: not an integer", drops)
	}
	return d.Shift(-xrpDecimalPlaces), nil
}
