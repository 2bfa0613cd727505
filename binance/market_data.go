package binance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
)

// 现货与合约的行情接口字段一致，只有路径不同

func collectTickers(markets *base.MarketCache, data []binanceTicker, symbols []string) model.Tickers {
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}

	tickers := make(model.Tickers, len(data))
	for i := range data {
		market, ok := markets.ByID(data[i].Symbol)
		if !ok {
			continue
		}
		if len(want) > 0 && !want[market.Symbol] {
			continue
		}
		tickers[market.Symbol] = parseTicker(&data[i], market.Symbol)
	}
	return tickers
}

func fetchOrderBook(ctx context.Context, b *Binance, client *common.HTTPClient, path string, market *model.Market, args *option.ExchangeArgsOptions) (*model.OrderBook, error) {
	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	if limit, ok := option.GetInt(args.Limit); ok {
		req.SetQuery("limit", limit)
	}

	resp, err := b.publicRequest(ctx, client, path, req)
	if err != nil {
		return nil, fmt.Errorf("fetch order book: %w", err)
	}

	var data binanceDepth
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal order book: %w", err)
	}
	ob := &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: data.E.Time,
		Bids:      model.ParseLevels(data.Bids),
		Asks:      model.ParseLevels(data.Asks),
	}
	ob.Sort()
	return ob, nil
}

func fetchOHLCVs(ctx context.Context, b *Binance, client *common.HTTPClient, path string, market *model.Market, timeframe model.Timeframe, args *option.ExchangeArgsOptions) (model.OHLCVs, error) {
	if _, err := model.ParseTimeframe(string(timeframe)); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBadRequest, err)
	}

	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	req.SetQuery("interval", timeframe.ToBinance())
	if since, ok := option.GetTime(args.Since); ok {
		req.SetQuery("startTime", since.UnixMilli())
	}
	if limit, ok := option.GetInt(args.Limit); ok {
		req.SetQuery("limit", limit)
	}

	resp, err := b.publicRequest(ctx, client, path, req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}

	var data []binanceKline
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal klines: %w", err)
	}

	ohlcvs := make(model.OHLCVs, 0, len(data))
	for _, k := range data {
		ohlcvs = append(ohlcvs, &model.OHLCV{
			Timestamp: k.OpenTime.Time,
			Open:      k.Open.Decimal,
			High:      k.High.Decimal,
			Low:       k.Low.Decimal,
			Close:     k.Close.Decimal,
			Volume:    k.Volume.Decimal,
		})
	}
	return ohlcvs.Sort(), nil
}

func fetchTrades(ctx context.Context, b *Binance, client *common.HTTPClient, path string, market *model.Market, args *option.ExchangeArgsOptions) (model.Trades, error) {
	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	if limit, ok := option.GetInt(args.Limit); ok {
		req.SetQuery("limit", limit)
	}

	resp, err := b.publicRequest(ctx, client, path, req)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}

	var data []binanceTrade
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}
	trades := make(model.Trades, 0, len(data))
	for _, t := range data {
		trades = append(trades, parseTrade(t, market.Symbol))
	}
	return trades, nil
}

func parseOrders(resp []byte, markets *base.MarketCache) (model.Orders, error) {
	var data []binanceOrder
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	orders := make(model.Orders, 0, len(data))
	for i := range data {
		orders = append(orders, parseOrder(&data[i], markets.SymbolOf(data[i].Symbol)))
	}
	return orders, nil
}

// setOrderType 设置 type / price / timeInForce
//
// 现货 post only 使用 LIMIT_MAKER 类型，合约使用 timeInForce=GTX（makerType 传空）。
func setOrderType(req *types.ExValues, market *model.Market, args *option.ExchangeArgsOptions, defaultTIF, makerType string) error {
	switch orderType := args.ResolveOrderType(); orderType {
	case option.Market:
		req.SetQuery("type", "MARKET")
	case option.Limit:
		price, ok := option.GetDecimalFromString(args.Price)
		if !ok || !price.IsPositive() {
			return fmt.Errorf("%w: limit order requires price", errs.ErrInvalidOrder)
		}
		req.SetQuery("price", market.PriceToPrecision(price).String())

		if postOnly, _ := option.GetBool(args.PostOnly); postOnly {
			if makerType != "" {
				req.SetQuery("type", makerType)
				return nil
			}
			req.SetQuery("type", "LIMIT")
			req.SetQuery("timeInForce", "GTX")
			return nil
		}

		req.SetQuery("type", "LIMIT")
		tif := defaultTIF
		if args.TimeInForce != nil {
			tif = args.TimeInForce.Upper()
		}
		req.SetQuery("timeInForce", tif)
	default:
		return fmt.Errorf("%w: unsupported order type %s", errs.ErrInvalidOrder, orderType)
	}
	return nil
}
