package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarginType 保证金模式
type MarginType string

const (
	MarginTypeIsolated MarginType = "isolated"
	MarginTypeCross    MarginType = "cross"
)

// Position 合约持仓
type Position struct {
	Symbol string       `json:"symbol"`
	Side   PositionSide `json:"side"`
	// Contracts 持仓张数（按币计价的交易所与数量相同）
	Contracts        decimal.Decimal `json:"contracts"`
	ContractSize     decimal.Decimal `json:"contract_size"`
	EntryPrice       decimal.Decimal `json:"entry_price"`
	MarkPrice        decimal.Decimal `json:"mark_price"`
	LiquidationPrice decimal.Decimal `json:"liquidation_price"`
	UnrealizedPnl    decimal.Decimal `json:"unrealized_pnl"`
	Leverage         decimal.Decimal `json:"leverage"`
	MarginType       MarginType      `json:"margin_type"`
	Timestamp        time.Time       `json:"timestamp"`
}

// Positions 持仓列表
type Positions []*Position

// Amount 持仓数量（基础货币）
func (p *Position) Amount() decimal.Decimal {
	size := p.ContractSize
	if !size.IsPositive() {
		size = decimal.NewFromInt(1)
	}
	return p.Contracts.Mul(size)
}

// Notional 按标记价格计算的名义价值
func (p *Position) Notional() decimal.Decimal {
	return p.Amount().Mul(p.MarkPrice)
}
