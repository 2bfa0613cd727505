package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ExDecimal 兼容交易所返回格式的 decimal 类型
//
// 交易所经常把数字编码为字符串，并用 "" 或 null 表示缺省，
// 这些情况统一解码为零值。
type ExDecimal struct {
	decimal.Decimal
}

// NewExDecimal 由字符串创建 ExDecimal，非法输入返回零值
func NewExDecimal(s string) ExDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return ExDecimal{}
	}
	return ExDecimal{Decimal: d}
}

// UnmarshalJSON 支持空字符串和 null
func (d *ExDecimal) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" || s == "null" {
		d.Decimal = decimal.Zero
		return nil
	}
	return d.Decimal.UnmarshalJSON(data)
}

// Ptr 返回非零值的指针，零值返回 nil
func (d ExDecimal) Ptr() *decimal.Decimal {
	if d.Decimal.IsZero() {
		return nil
	}
	v := d.Decimal
	return &v
}
