package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade 成交记录
type Trade struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id,omitempty"`
	Symbol    string          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Cost      decimal.Decimal `json:"cost"`
	Fee       *Fee            `json:"fee,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Trades 成交列表
type Trades []*Trade
