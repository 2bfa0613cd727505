package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingRate 资金费率
type FundingRate struct {
	Symbol          string          `json:"symbol"`
	FundingRate     decimal.Decimal `json:"funding_rate"`
	FundingTime     time.Time       `json:"funding_time"`
	NextFundingTime time.Time       `json:"next_funding_time"`
	MarkPrice       decimal.Decimal `json:"mark_price"`
	IndexPrice      decimal.Decimal `json:"index_price"`
	Timestamp       time.Time       `json:"timestamp"`
}
