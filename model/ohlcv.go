package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OHLCV K 线
type OHLCV struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// OHLCVs K 线列表
type OHLCVs []*OHLCV

// Sort 按时间升序排序，部分交易所（OKX、Bybit）返回倒序数据
func (o OHLCVs) Sort() OHLCVs {
	sort.SliceStable(o, func(i, j int) bool {
		return o[i].Timestamp.Before(o[j].Timestamp)
	})
	return o
}

// Last 返回最后一根 K 线
func (o OHLCVs) Last() *OHLCV {
	if len(o) == 0 {
		return nil
	}
	return o[len(o)-1]
}
