package common

import (
	"fmt"
	"strings"
)

// NormalizeSymbol 生成现货统一交易对，例如 BTC/USDT
func NormalizeSymbol(base, quote string) string {
	return strings.ToUpper(base) + "/" + strings.ToUpper(quote)
}

// NormalizeContractSymbol 生成合约统一交易对，例如 BTC/USDT:USDT
func NormalizeContractSymbol(base, quote, settle string) string {
	if settle == "" {
		return NormalizeSymbol(base, quote)
	}
	return NormalizeSymbol(base, quote) + ":" + strings.ToUpper(settle)
}

// ParseSymbol 解析统一交易对，settle 仅合约交易对存在
func ParseSymbol(symbol string) (base, quote, settle string, err error) {
	pair := symbol
	if i := strings.IndexByte(symbol, ':'); i >= 0 {
		pair, settle = symbol[:i], symbol[i+1:]
		if settle == "" {
			return "", "", "", fmt.Errorf("invalid symbol format: %s, empty settle currency", symbol)
		}
	}
	parts := strings.Split(pair, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("invalid symbol format: %s, expected BASE/QUOTE or BASE/QUOTE:SETTLE", symbol)
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), strings.ToUpper(settle), nil
}
