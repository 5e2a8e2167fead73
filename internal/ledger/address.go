package ledger

import "regexp"

// classicAddressPattern XRPL 经典地址：r 开头的 base58 串
var classicAddressPattern = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,34}$`)

// ValidAddress 校验地址语法是否合法
func ValidAddress(address string) bool {
	return classicAddressPattern.MatchString(address)
}
