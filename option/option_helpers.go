package option

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// 调用参数均以指针保存，nil 表示未设置

func deref[T comparable](p *T) (T, bool) {
	var zero T
	if p == nil || *p == zero {
		return zero, false
	}
	return *p, true
}

// GetString 非空字符串
func GetString(s *string) (string, bool) { return deref(s) }

// GetInt 已设置的整数，显式传 0 也视为已设置
func GetInt(i *int) (int, bool) {
	if i == nil {
		return 0, false
	}
	return *i, true
}

// GetBool 已设置的布尔值，第二个返回值表示是否设置过
func GetBool(b *bool) (bool, bool) {
	if b == nil {
		return false, false
	}
	return *b, true
}

// GetTime 非零时间
func GetTime(t *time.Time) (time.Time, bool) {
	if t == nil || t.IsZero() {
		return time.Time{}, false
	}
	return *t, true
}

// GetDecimalFromString 解析价格等十进制字符串，缺省或非法时返回 false
func GetDecimalFromString(s *string) (decimal.Decimal, bool) {
	str, ok := deref(s)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(str)
	return d, err == nil
}

// ParseAmount 解析下单数量
func ParseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	switch {
	case err != nil:
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
	case !d.IsPositive():
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return d, nil
}
