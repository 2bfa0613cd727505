package binance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/model"
	"github.com/shopspring/decimal"
)

// wsTickerPaths 与 parseWsTicker 中 fields 的顺序一一对应
var wsTickerPaths = [][]string{
	{"c"}, {"b"}, {"B"}, {"a"}, {"A"}, {"o"}, {"h"}, {"l"}, {"p"}, {"P"}, {"v"}, {"q"},
}

// parseWsTicker 解析 24hrTicker 推送
func parseWsTicker(data []byte, symbol string) (*model.Ticker, error) {
	event, err := jsonparser.GetString(data, "e")
	if err != nil {
		return nil, fmt.Errorf("read event type: %w", err)
	}
	if event != "24hrTicker" {
		return nil, fmt.Errorf("unexpected event %q", event)
	}
	ts, err := jsonparser.GetInt(data, "E")
	if err != nil {
		return nil, fmt.Errorf("read event time: %w", err)
	}

	t := &model.Ticker{Symbol: symbol, Timestamp: time.UnixMilli(ts)}
	fields := []*decimal.Decimal{
		&t.Last, &t.Bid, &t.BidVolume, &t.Ask, &t.AskVolume, &t.Open,
		&t.High, &t.Low, &t.Change, &t.Percentage, &t.BaseVolume, &t.QuoteVolume,
	}
	var parseErr error
	jsonparser.EachKey(data, func(idx int, value []byte, _ jsonparser.ValueType, err error) {
		if err == nil {
			*fields[idx], err = decimal.NewFromString(string(value))
		}
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("field %s: %w", wsTickerPaths[idx][0], err)
		}
	}, wsTickerPaths...)
	if parseErr != nil {
		return nil, parseErr
	}
	t.FillDerived()
	return t, nil
}

// watchTicker 订阅 <symbol>@ticker 推送
//
// 返回的通道在 ctx 结束或连接断开时关闭；解析失败的消息会被跳过。
func watchTicker(ctx context.Context, b *Binance, wsURL string, market *model.Market) (<-chan *model.Ticker, error) {
	stream := strings.TrimRight(wsURL, "/") + "/" + strings.ToLower(market.ID) + "@ticker"
	conn, err := common.DialWS(ctx, stream, b.client.ProxyURL, b.logger)
	if err != nil {
		return nil, err
	}

	out := make(chan *model.Ticker, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !common.IsClosed(err) {
					b.logger.Warn().Err(err).Str("symbol", market.Symbol).Msg("ticker stream closed")
				}
				return
			}

			ticker, err := parseWsTicker(data, market.Symbol)
			if err != nil {
				b.logger.Debug().Err(err).Bytes("data", data).Msg("skip ticker message")
				continue
			}

			select {
			case out <- ticker:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
