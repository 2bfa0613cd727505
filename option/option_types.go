package option

import (
	"strings"
)

// SpotOrderSide 现货下单方向
type SpotOrderSide string

const (
	// Buy 买入
	Buy SpotOrderSide = "BUY"
	// Sell 卖出
	Sell SpotOrderSide = "SELL"
)

// Upper 返回大写方向，例如 BUY
func (o SpotOrderSide) Upper() string { return string(o) }

// Lower 返回小写方向，例如 buy
func (o SpotOrderSide) Lower() string { return strings.ToLower(string(o)) }

// Capitalize 返回首字母大写的方向，例如 Buy
func (o SpotOrderSide) Capitalize() string { return capitalize(string(o)) }

// Valid 是否为合法方向
func (o SpotOrderSide) Valid() bool { return o == Buy || o == Sell }

// PerpOrderSide 合约下单方向，同时描述开平仓
type PerpOrderSide string

const (
	// OpenLong 开多
	OpenLong PerpOrderSide = "OPEN_LONG"
	// OpenShort 开空
	OpenShort PerpOrderSide = "OPEN_SHORT"
	// CloseLong 平多
	CloseLong PerpOrderSide = "CLOSE_LONG"
	// CloseShort 平空
	CloseShort PerpOrderSide = "CLOSE_SHORT"
)

// ToSide 返回成交方向
func (o PerpOrderSide) ToSide() SpotOrderSide {
	switch o {
	case OpenLong, CloseShort:
		return Buy
	case OpenShort, CloseLong:
		return Sell
	}
	return ""
}

// ToPositionSide 返回持仓方向 LONG / SHORT
func (o PerpOrderSide) ToPositionSide() string {
	switch o {
	case OpenLong, CloseLong:
		return "LONG"
	case OpenShort, CloseShort:
		return "SHORT"
	}
	return ""
}

// ToReduceOnly 是否为平仓单
func (o PerpOrderSide) ToReduceOnly() bool {
	return o == CloseLong || o == CloseShort
}

// Valid 是否为合法方向
func (o PerpOrderSide) Valid() bool { return o.ToSide() != "" }

// OrderType 订单类型
type OrderType string

const (
	// Market 市价单
	Market OrderType = "MARKET"
	// Limit 限价单
	Limit OrderType = "LIMIT"
)

func (t OrderType) String() string { return string(t) }

// Upper 返回大写字符串
func (t OrderType) Upper() string { return string(t) }

// Lower 返回小写字符串
func (t OrderType) Lower() string { return strings.ToLower(string(t)) }

// Capitalize 返回首字母大写的字符串
func (t OrderType) Capitalize() string { return capitalize(string(t)) }

// IsMarket 是否为市价单
func (t OrderType) IsMarket() bool { return t == Market }

// IsLimit 是否为限价单
func (t OrderType) IsLimit() bool { return t == Limit }

// TimeInForce 订单有效期
type TimeInForce string

const (
	// GTC 成交为止
	GTC TimeInForce = "GTC"
	// IOC 无法立即成交的部分撤销
	IOC TimeInForce = "IOC"
	// FOK 无法全部立即成交则撤销
	FOK TimeInForce = "FOK"
)

func (t TimeInForce) String() string { return string(t) }

// Upper 返回大写字符串
func (t TimeInForce) Upper() string { return string(t) }

// Lower 返回小写字符串
func (t TimeInForce) Lower() string { return strings.ToLower(string(t)) }

// MarginType 保证金模式
type MarginType string

const (
	// ISOLATED 逐仓
	ISOLATED MarginType = "ISOLATED"
	// CROSSED 全仓
	CROSSED MarginType = "CROSSED"
)

func (m MarginType) String() string { return string(m) }

// Lower 返回小写字符串
func (m MarginType) Lower() string { return strings.ToLower(string(m)) }

// IsIsolated 是否为逐仓
func (m MarginType) IsIsolated() bool { return m == ISOLATED }

// IsCrossed 是否为全仓
func (m MarginType) IsCrossed() bool { return m == CROSSED }

// Valid 是否为合法模式
func (m MarginType) Valid() bool { return m == ISOLATED || m == CROSSED }

func capitalize(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
