package model

import "github.com/shopspring/decimal"

// Balance 单币种余额
type Balance struct {
	Currency string          `json:"currency"`
	Free     decimal.Decimal `json:"free"`
	Used     decimal.Decimal `json:"used"`
	Total    decimal.Decimal `json:"total"`
}

// Balances 以币种为键的余额
type Balances map[string]*Balance

// Get 返回币种余额，不存在时返回零余额
func (b Balances) Get(currency string) *Balance {
	if balance, ok := b[currency]; ok {
		return balance
	}
	return &Balance{Currency: currency}
}

// Set 写入余额，缺省的 Total 由 Free + Used 补全
func (b Balances) Set(currency string, free, used, total decimal.Decimal) {
	if total.IsZero() {
		total = free.Add(used)
	}
	if used.IsZero() && total.GreaterThan(free) {
		used = total.Sub(free)
	}
	b[currency] = &Balance{Currency: currency, Free: free, Used: used, Total: total}
}

// NonZero 返回 Total 非零的余额
func (b Balances) NonZero() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		if !v.Total.IsZero() {
			out[k] = v
		}
	}
	return out
}
