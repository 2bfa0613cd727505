package okx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
)

// 现货与永续共用同一套 v5 接口，通过 instType 区分

const defaultCandleLimit = 100

func fetchMarkets(ctx context.Context, o *OKX, instType string) (model.Markets, error) {
	req := types.NewExValues()
	req.SetQuery("instType", instType)
	resp, err := o.publicRequest(ctx, "/api/v5/public/instruments", req)
	if err != nil {
		return nil, fmt.Errorf("fetch instruments: %w", err)
	}

	data, err := decodeData[okxInstrument](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal instruments: %w", err)
	}

	markets := make(model.Markets, 0, len(data))
	for _, inst := range data {
		// 币本位合约不在支持范围内
		if instType == instTypeSwap && inst.CtType != "linear" {
			continue
		}
		markets = append(markets, parseMarket(inst))
	}
	return markets, nil
}

func fetchTicker(ctx context.Context, o *OKX, market *model.Market) (*model.Ticker, error) {
	req := types.NewExValues()
	req.SetQuery("instId", market.ID)
	resp, err := o.publicRequest(ctx, "/api/v5/market/ticker", req)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker: %w", err)
	}

	t, err := decodeFirst[okxTicker](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal ticker: %w", err)
	}
	return parseTicker(t, market), nil
}

func fetchTickers(ctx context.Context, o *OKX, markets *base.MarketCache, instType string, symbols []string) (model.Tickers, error) {
	if err := markets.Load(ctx, false); err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("instType", instType)
	resp, err := o.publicRequest(ctx, "/api/v5/market/tickers", req)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	data, err := decodeData[okxTicker](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tickers: %w", err)
	}

	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	tickers := make(model.Tickers, len(data))
	for i := range data {
		market, ok := markets.ByID(data[i].InstID)
		if !ok || (len(want) > 0 && !want[market.Symbol]) {
			continue
		}
		tickers[market.Symbol] = parseTicker(&data[i], market)
	}
	return tickers, nil
}

func fetchOrderBook(ctx context.Context, o *OKX, market *model.Market, args *option.ExchangeArgsOptions) (*model.OrderBook, error) {
	req := types.NewExValues()
	req.SetQuery("instId", market.ID)
	if limit, ok := option.GetInt(args.Limit); ok {
		req.SetQuery("sz", limit)
	}
	resp, err := o.publicRequest(ctx, "/api/v5/market/books", req)
	if err != nil {
		return nil, fmt.Errorf("fetch order book: %w", err)
	}

	book, err := decodeFirst[okxBook](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order book: %w", err)
	}
	ob := &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: book.Ts.Time,
		Bids:      contractLevels(model.ParseLevels(book.Bids), market),
		Asks:      contractLevels(model.ParseLevels(book.Asks), market),
	}
	ob.Sort()
	return ob, nil
}

// contractLevels 合约深度数量为张数，换算为基础货币
func contractLevels(levels []model.OrderBookLevel, market *model.Market) []model.OrderBookLevel {
	if !market.Contract {
		return levels
	}
	for i := range levels {
		levels[i].Amount = market.ContractsToAmount(levels[i].Amount)
	}
	return levels
}

// fetchOHLCVs 获取 K 线
//
// after 返回早于该时间的数据，before 返回晚于该时间的数据；
// 指定 since 时用两者夹出 [since, since+limit*周期) 的区间。
func fetchOHLCVs(ctx context.Context, o *OKX, market *model.Market, timeframe model.Timeframe, args *option.ExchangeArgsOptions) (model.OHLCVs, error) {
	if _, err := model.ParseTimeframe(string(timeframe)); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBadRequest, err)
	}
	limit, ok := option.GetInt(args.Limit)
	if !ok {
		limit = defaultCandleLimit
	}

	req := types.NewExValues()
	req.SetQuery("instId", market.ID)
	req.SetQuery("bar", timeframe.ToOKX())
	if since, ok := option.GetTime(args.Since); ok {
		end := since.Add(timeframe.Duration() * time.Duration(limit))
		req.SetQuery("after", end.UnixMilli())
		req.SetQuery("before", since.UnixMilli()-1)
	}
	req.SetQuery("limit", limit)

	resp, err := o.publicRequest(ctx, "/api/v5/market/candles", req)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	data, err := decodeData[okxCandle](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal candles: %w", err)
	}

	ohlcvs := make(model.OHLCVs, 0, len(data))
	for _, k := range data {
		volume := k.Vol.Decimal
		if market.Contract {
			volume = k.VolCcy.Decimal
		}
		ohlcvs = append(ohlcvs, &model.OHLCV{
			Timestamp: k.Ts.Time,
			Open:      k.Open.Decimal,
			High:      k.High.Decimal,
			Low:       k.Low.Decimal,
			Close:     k.Close.Decimal,
			Volume:    volume,
		})
	}
	// 接口按时间倒序返回
	return ohlcvs.Sort(), nil
}

func fetchTrades(ctx context.Context, o *OKX, market *model.Market, args *option.ExchangeArgsOptions) (model.Trades, error) {
	req := types.NewExValues()
	req.SetQuery("instId", market.ID)
	if limit, ok := option.GetInt(args.Limit); ok {
		req.SetQuery("limit", limit)
	}
	resp, err := o.publicRequest(ctx, "/api/v5/market/trades", req)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	data, err := decodeData[okxTrade](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}

	trades := make(model.Trades, 0, len(data))
	for _, t := range data {
		amount := market.ContractsToAmount(t.Sz.Decimal)
		trades = append(trades, &model.Trade{
			ID:        t.TradeID,
			Symbol:    market.Symbol,
			Side:      model.OrderSide(t.Side),
			Price:     t.Px.Decimal,
			Amount:    amount,
			Cost:      amount.Mul(t.Px.Decimal),
			Timestamp: t.Ts.Time,
		})
	}
	return trades, nil
}

// fetchBalance 统一账户，现货与合约共用同一份余额
func fetchBalance(ctx context.Context, o *OKX) (model.Balances, error) {
	resp, err := o.signAndRequest(ctx, http.MethodGet, "/api/v5/account/balance", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}
	data, err := decodeData[okxBalance](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}

	balances := make(model.Balances)
	for _, account := range data {
		for _, d := range account.Details {
			balances.Set(d.Ccy, d.AvailBal.Decimal, d.FrozenBal.Decimal, d.Eq.Decimal)
		}
	}
	return balances.NonZero(), nil
}

// setOrderType 设置 ordType 与 px
func setOrderType(req *types.ExValues, market *model.Market, args *option.ExchangeArgsOptions) error {
	switch orderType := args.ResolveOrderType(); orderType {
	case option.Market:
		req.SetBody("ordType", "market")
		return nil
	case option.Limit:
	default:
		return fmt.Errorf("%w: unsupported order type %s", errs.ErrInvalidOrder, orderType)
	}

	price, ok := option.GetDecimalFromString(args.Price)
	if !ok || !price.IsPositive() {
		return fmt.Errorf("%w: limit order requires price", errs.ErrInvalidOrder)
	}

	ordType := "limit"
	if postOnly, _ := option.GetBool(args.PostOnly); postOnly {
		ordType = "post_only"
	} else if args.TimeInForce != nil {
		switch *args.TimeInForce {
		case option.IOC:
			ordType = "ioc"
		case option.FOK:
			ordType = "fok"
		}
	}
	req.SetBody("ordType", ordType)
	req.SetBody("px", market.PriceToPrecision(price).String())
	return nil
}

// placeOrder 发送下单请求
func placeOrder(ctx context.Context, o *OKX, market *model.Market, req *types.ExValues) (*model.NewOrder, error) {
	resp, err := o.signAndRequest(ctx, http.MethodPost, "/api/v5/trade/order", req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	ack, err := decodeFirst[okxOrderAck](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}
	return &model.NewOrder{
		Symbol:        market.Symbol,
		ID:            ack.OrdID,
		ClientOrderID: ack.ClOrdID,
		Timestamp:     ack.Ts.Time,
	}, nil
}

// orderIdentity 设置 ordId 或 clOrdId
func orderIdentity(set func(string, any), orderID string, args *option.ExchangeArgsOptions) error {
	if orderID != "" {
		set("ordId", orderID)
		return nil
	}
	if clientOrderID, ok := option.GetString(args.ClientOrderID); ok {
		set("clOrdId", clientOrderID)
		return nil
	}
	return fmt.Errorf("%w: either orderId or ClientOrderID option must be provided", errs.ErrBadRequest)
}

func cancelOrder(ctx context.Context, o *OKX, market *model.Market, orderID string, args *option.ExchangeArgsOptions) error {
	req := types.NewExValues()
	req.SetBody("instId", market.ID)
	if err := orderIdentity(req.SetBody, orderID, args); err != nil {
		return err
	}
	if _, err := o.signAndRequest(ctx, http.MethodPost, "/api/v5/trade/cancel-order", req); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

func fetchOrder(ctx context.Context, o *OKX, market *model.Market, orderID string, args *option.ExchangeArgsOptions) (*model.Order, error) {
	req := types.NewExValues()
	req.SetQuery("instId", market.ID)
	if err := orderIdentity(req.SetQuery, orderID, args); err != nil {
		return nil, err
	}
	resp, err := o.signAndRequest(ctx, http.MethodGet, "/api/v5/trade/order", req)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	data, err := decodeFirst[okxOrder](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return parseOrder(data, market), nil
}

func fetchOpenOrders(ctx context.Context, o *OKX, markets *base.MarketCache, instType, symbol string) (model.Orders, error) {
	req := types.NewExValues()
	req.SetQuery("instType", instType)
	if symbol != "" {
		market, err := markets.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		req.SetQuery("instId", market.ID)
	} else if err := markets.Load(ctx, false); err != nil {
		return nil, err
	}

	resp, err := o.signAndRequest(ctx, http.MethodGet, "/api/v5/trade/orders-pending", req)
	if err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	data, err := decodeData[okxOrder](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}

	orders := make(model.Orders, 0, len(data))
	for i := range data {
		market, ok := markets.ByID(data[i].InstID)
		if !ok {
			continue
		}
		orders = append(orders, parseOrder(&data[i], market))
	}
	return orders, nil
}
