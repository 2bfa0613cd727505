package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide 成交方向
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType 订单类型
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderStatus 统一订单状态
type OrderStatus string

const (
	// OrderStatusOpen 未完全成交（含部分成交）
	OrderStatusOpen OrderStatus = "open"
	// OrderStatusClosed 完全成交
	OrderStatusClosed OrderStatus = "closed"
	// OrderStatusCanceled 已撤销（含部分成交后撤销）
	OrderStatusCanceled OrderStatus = "canceled"
	// OrderStatusExpired 过期
	OrderStatusExpired OrderStatus = "expired"
	// OrderStatusRejected 被拒绝
	OrderStatusRejected OrderStatus = "rejected"
)

// PositionSide 持仓方向
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Fee 手续费
type Fee struct {
	Currency string          `json:"currency"`
	Cost     decimal.Decimal `json:"cost"`
}

// NewOrder 下单回执
type NewOrder struct {
	Symbol        string    `json:"symbol"`
	ID            string    `json:"id"`
	ClientOrderID string    `json:"client_order_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// Order 订单
type Order struct {
	ID            string          `json:"id"`
	ClientOrderID string          `json:"client_order_id,omitempty"`
	Symbol        string          `json:"symbol"`
	Type          OrderType       `json:"type"`
	Side          OrderSide       `json:"side"`
	PositionSide  PositionSide    `json:"position_side,omitempty"`
	ReduceOnly    bool            `json:"reduce_only,omitempty"`
	TimeInForce   string          `json:"time_in_force,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Average       decimal.Decimal `json:"average"`
	// Amount / Filled / Remaining 均以基础货币计，合约张数已换算
	Amount      decimal.Decimal `json:"amount"`
	Filled      decimal.Decimal `json:"filled"`
	Remaining   decimal.Decimal `json:"remaining"`
	Cost        decimal.Decimal `json:"cost"`
	Status      OrderStatus     `json:"status"`
	Fee         *Fee            `json:"fee,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Orders 订单列表
type Orders []*Order

// IsOpen 订单是否仍在挂单
func (o *Order) IsOpen() bool { return o.Status == OrderStatusOpen }

// FillDerived 补全 Remaining、Cost、Average
func (o *Order) FillDerived() {
	if o.Remaining.IsZero() && o.Amount.IsPositive() {
		o.Remaining = o.Amount.Sub(o.Filled)
		if o.Remaining.IsNegative() {
			o.Remaining = decimal.Zero
		}
	}
	if o.Cost.IsZero() && o.Filled.IsPositive() {
		price := o.Average
		if price.IsZero() {
			price = o.Price
		}
		o.Cost = o.Filled.Mul(price)
	}
	if o.Average.IsZero() && o.Filled.IsPositive() && o.Cost.IsPositive() {
		o.Average = o.Cost.Div(o.Filled)
	}
}
