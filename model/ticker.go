package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker 24 小时行情
type Ticker struct {
	Symbol      string          `json:"symbol"`
	Timestamp   time.Time       `json:"timestamp"`
	Bid         decimal.Decimal `json:"bid"`
	BidVolume   decimal.Decimal `json:"bid_volume"`
	Ask         decimal.Decimal `json:"ask"`
	AskVolume   decimal.Decimal `json:"ask_volume"`
	Last        decimal.Decimal `json:"last"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Change      decimal.Decimal `json:"change"`
	Percentage  decimal.Decimal `json:"percentage"`
	BaseVolume  decimal.Decimal `json:"base_volume"`
	QuoteVolume decimal.Decimal `json:"quote_volume"`
}

// Tickers 以统一交易对为键的行情集合
type Tickers map[string]*Ticker

// FillDerived 补全交易所未直接返回的字段
//
// Close 缺省时取 Last；Change / Percentage 缺省时由 Open 与 Last 计算。
func (t *Ticker) FillDerived() {
	if t.Close.IsZero() {
		t.Close = t.Last
	}
	if t.Change.IsZero() && t.Open.IsPositive() && t.Last.IsPositive() {
		t.Change = t.Last.Sub(t.Open)
	}
	if t.Percentage.IsZero() && t.Open.IsPositive() && !t.Change.IsZero() {
		t.Percentage = t.Change.Div(t.Open).Mul(decimal.NewFromInt(100)).Round(4)
	}
}
