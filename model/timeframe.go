package model

import (
	"fmt"
	"time"
)

// Timeframe K 线周期，统一使用 1m / 1h / 1d / 1w / 1M 格式
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe3m  Timeframe = "3m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe2h  Timeframe = "2h"
	Timeframe4h  Timeframe = "4h"
	Timeframe6h  Timeframe = "6h"
	Timeframe12h Timeframe = "12h"
	Timeframe1d  Timeframe = "1d"
	Timeframe1w  Timeframe = "1w"
	Timeframe1M  Timeframe = "1M"
)

type timeframeInfo struct {
	duration time.Duration
	okx      string
	bybit    string
	gate     string
}

var timeframes = map[Timeframe]timeframeInfo{
	Timeframe1m:  {time.Minute, "1m", "1", "1m"},
	Timeframe3m:  {3 * time.Minute, "3m", "3", ""},
	Timeframe5m:  {5 * time.Minute, "5m", "5", "5m"},
	Timeframe15m: {15 * time.Minute, "15m", "15", "15m"},
	Timeframe30m: {30 * time.Minute, "30m", "30", "30m"},
	Timeframe1h:  {time.Hour, "1H", "60", "1h"},
	Timeframe2h:  {2 * time.Hour, "2H", "120", ""},
	Timeframe4h:  {4 * time.Hour, "4H", "240", "4h"},
	Timeframe6h:  {6 * time.Hour, "6Hutc", "360", ""},
	Timeframe12h: {12 * time.Hour, "12Hutc", "720", ""},
	Timeframe1d:  {24 * time.Hour, "1Dutc", "D", "1d"},
	Timeframe1w:  {7 * 24 * time.Hour, "1Wutc", "W", "7d"},
	Timeframe1M:  {30 * 24 * time.Hour, "1Mutc", "M", "30d"},
}

// ParseTimeframe 校验并返回周期
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframes[tf]; !ok {
		return "", fmt.Errorf("unsupported timeframe: %s", s)
	}
	return tf, nil
}

// Duration 周期时长，1M 按 30 天计
func (t Timeframe) Duration() time.Duration { return timeframes[t].duration }

// ToBinance Binance 与统一格式一致
func (t Timeframe) ToBinance() string { return string(t) }

// ToOKX OKX 小时以上周期大写，日线以上使用 UTC 对齐
func (t Timeframe) ToOKX() string { return timeframes[t].okx }

// ToBybit Bybit 使用分钟数或 D/W/M
func (t Timeframe) ToBybit() string { return timeframes[t].bybit }

// ToGate Gate 不支持的周期返回空字符串
func (t Timeframe) ToGate() string { return timeframes[t].gate }
