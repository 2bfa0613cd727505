package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
)

// 现货与 U 本位合约共用 v5 接口，通过 category 区分

const (
	defaultKlineLimit = 200
	instrumentsLimit  = 1000
	// maxInstrumentPages 合约列表分页上限
	maxInstrumentPages = 10
)

func fetchMarkets(ctx context.Context, b *Bybit, category string) (model.Markets, error) {
	var markets model.Markets
	cursor := ""
	for page := 0; page < maxInstrumentPages; page++ {
		req := types.NewExValues()
		req.SetQuery("category", category)
		if category == categoryLinear {
			req.SetQuery("limit", instrumentsLimit)
		}
		if cursor != "" {
			req.SetQuery("cursor", cursor)
		}
		resp, err := b.publicRequest(ctx, "/v5/market/instruments-info", req)
		if err != nil {
			return nil, fmt.Errorf("fetch instruments: %w", err)
		}
		result, err := decodeResult[bybitList[bybitInstrument]](resp)
		if err != nil {
			return nil, fmt.Errorf("unmarshal instruments: %w", err)
		}

		for _, inst := range result.List {
			// 交割合约不在支持范围内
			if category == categoryLinear && inst.ContractType != "LinearPerpetual" {
				continue
			}
			markets = append(markets, parseMarket(inst, category))
		}
		if result.NextPageCursor == "" {
			break
		}
		cursor = result.NextPageCursor
	}
	return markets, nil
}

func decodeTickers(resp []byte) ([]bybitTicker, time.Time, error) {
	var r bybitResponse[bybitList[bybitTicker]]
	if err := json.Unmarshal(resp, &r); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshal tickers: %w", err)
	}
	return r.Result.List, r.Time.Time, nil
}

func requestTickers(ctx context.Context, b *Bybit, category, symbolID string) ([]bybitTicker, time.Time, error) {
	req := types.NewExValues()
	req.SetQuery("category", category)
	if symbolID != "" {
		req.SetQuery("symbol", symbolID)
	}
	resp, err := b.publicRequest(ctx, "/v5/market/tickers", req)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("fetch tickers: %w", err)
	}
	return decodeTickers(resp)
}

func fetchTicker(ctx context.Context, b *Bybit, category string, market *model.Market) (*model.Ticker, error) {
	data, ts, err := requestTickers(ctx, b, category, market.ID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty ticker for %s", errs.ErrExchange, market.Symbol)
	}
	return parseTicker(&data[0], market.Symbol, ts), nil
}

func fetchTickers(ctx context.Context, b *Bybit, markets *base.MarketCache, category string, symbols []string) (model.Tickers, error) {
	if err := markets.Load(ctx, false); err != nil {
		return nil, err
	}
	data, ts, err := requestTickers(ctx, b, category, "")
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	tickers := make(model.Tickers, len(data))
	for i := range data {
		market, ok := markets.ByID(data[i].Symbol)
		if !ok || (len(want) > 0 && !want[market.Symbol]) {
			continue
		}
		tickers[market.Symbol] = parseTicker(&data[i], market.Symbol, ts)
	}
	return tickers, nil
}

func fetchOrderBook(ctx context.Context, b *Bybit, category string, market *model.Market, args *option.ExchangeArgsOptions) (*model.OrderBook, error) {
	req := types.NewExValues()
	req.SetQuery("category", category)
	req.SetQuery("symbol", market.ID)
	if limit, ok := option.GetInt(args.Limit); ok {
		req.SetQuery("limit", limit)
	}
	resp, err := b.publicRequest(ctx, "/v5/market/orderbook", req)
	if err != nil {
		return nil, fmt.Errorf("fetch order book: %w", err)
	}
	book, err := decodeResult[bybitOrderBook](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order book: %w", err)
	}

	ob := &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: book.Ts.Time,
		Bids:      model.ParseLevels(book.Bids),
		Asks:      model.ParseLevels(book.Asks),
	}
	ob.Sort()
	return ob, nil
}

func fetchOHLCVs(ctx context.Context, b *Bybit, category string, market *model.Market, timeframe model.Timeframe, args *option.ExchangeArgsOptions) (model.OHLCVs, error) {
	if _, err := model.ParseTimeframe(string(timeframe)); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBadRequest, err)
	}
	limit, ok := option.GetInt(args.Limit)
	if !ok {
		limit = defaultKlineLimit
	}

	req := types.NewExValues()
	req.SetQuery("category", category)
	req.SetQuery("symbol", market.ID)
	req.SetQuery("interval", timeframe.ToBybit())
	if since, ok := option.GetTime(args.Since); ok {
		req.SetQuery("start", since.UnixMilli())
	}
	req.SetQuery("limit", limit)

	resp, err := b.publicRequest(ctx, "/v5/market/kline", req)
	if err != nil {
		return nil, fmt.Errorf("fetch kline: %w", err)
	}
	data, err := decodeList[bybitKline](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal kline: %w", err)
	}

	ohlcvs := make(model.OHLCVs, 0, len(data))
	for _, k := range data {
		ohlcvs = append(ohlcvs, &model.OHLCV{
			Timestamp: k.Start.Time,
			Open:      k.Open.Decimal,
			High:      k.High.Decimal,
			Low:       k.Low.Decimal,
			Close:     k.Close.Decimal,
			Volume:    k.Volume.Decimal,
		})
	}
	// 接口按时间倒序返回
	return ohlcvs.Sort(), nil
}

func fetchTrades(ctx context.Context, b *Bybit, category string, market *model.Market, args *option.ExchangeArgsOptions) (model.Trades, error) {
	req := types.NewExValues()
	req.SetQuery("category", category)
	req.SetQuery("symbol", market.ID)
	if limit, ok := option.GetInt(args.Limit); ok {
		req.SetQuery("limit", limit)
	}
	resp, err := b.publicRequest(ctx, "/v5/market/recent-trade", req)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	data, err := decodeList[bybitTrade](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}

	trades := make(model.Trades, 0, len(data))
	for _, t := range data {
		trades = append(trades, &model.Trade{
			ID:        t.ExecID,
			Symbol:    market.Symbol,
			Side:      parseSide(t.Side),
			Price:     t.Price.Decimal,
			Amount:    t.Size.Decimal,
			Cost:      t.Size.Mul(t.Price.Decimal),
			Timestamp: t.Time.Time,
		})
	}
	return trades, nil
}

// fetchBalance 统一交易账户，现货与合约共用；占用部分包含挂单和持仓保证金
func fetchBalance(ctx context.Context, b *Bybit) (model.Balances, error) {
	req := types.NewExValues()
	req.SetQuery("accountType", "UNIFIED")
	resp, err := b.signAndRequest(ctx, http.MethodGet, "/v5/account/wallet-balance", req)
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}
	data, err := decodeList[bybitWallet](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}

	balances := make(model.Balances)
	for _, account := range data {
		for _, c := range account.Coin {
			used := c.Locked.Add(c.TotalOrderIM.Decimal).Add(c.TotalPositionIM.Decimal)
			total := c.WalletBalance.Decimal
			balances.Set(c.Coin, total.Sub(used), used, total)
		}
	}
	return balances.NonZero(), nil
}

// setOrderType 设置 orderType、timeInForce 与 price
func setOrderType(req *types.ExValues, market *model.Market, args *option.ExchangeArgsOptions) error {
	switch orderType := args.ResolveOrderType(); orderType {
	case option.Market:
		req.SetBody("orderType", "Market")
		return nil
	case option.Limit:
	default:
		return fmt.Errorf("%w: unsupported order type %s", errs.ErrInvalidOrder, orderType)
	}

	price, ok := option.GetDecimalFromString(args.Price)
	if !ok || !price.IsPositive() {
		return fmt.Errorf("%w: limit order requires price", errs.ErrInvalidOrder)
	}

	tif := "GTC"
	if postOnly, _ := option.GetBool(args.PostOnly); postOnly {
		tif = "PostOnly"
	} else if args.TimeInForce != nil {
		tif = args.TimeInForce.Upper()
	}
	req.SetBody("orderType", "Limit")
	req.SetBody("price", market.PriceToPrecision(price).String())
	req.SetBody("timeInForce", tif)
	return nil
}

func placeOrder(ctx context.Context, b *Bybit, market *model.Market, req *types.ExValues) (*model.NewOrder, error) {
	resp, err := b.signAndRequest(ctx, http.MethodPost, "/v5/order/create", req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	var r bybitResponse[bybitOrderAck]
	if err := json.Unmarshal(resp, &r); err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}
	return &model.NewOrder{
		Symbol:        market.Symbol,
		ID:            r.Result.OrderID,
		ClientOrderID: r.Result.OrderLinkID,
		Timestamp:     r.Time.Time,
	}, nil
}

// orderIdentity 设置 orderId 或 orderLinkId
func orderIdentity(set func(string, any), orderID string, args *option.ExchangeArgsOptions) error {
	if orderID != "" {
		set("orderId", orderID)
		return nil
	}
	if clientOrderID, ok := option.GetString(args.ClientOrderID); ok {
		set("orderLinkId", clientOrderID)
		return nil
	}
	return fmt.Errorf("%w: either orderId or ClientOrderID option must be provided", errs.ErrBadRequest)
}

func cancelOrder(ctx context.Context, b *Bybit, category string, market *model.Market, orderID string, args *option.ExchangeArgsOptions) error {
	req := types.NewExValues()
	req.SetBody("category", category)
	req.SetBody("symbol", market.ID)
	if err := orderIdentity(req.SetBody, orderID, args); err != nil {
		return err
	}
	if _, err := b.signAndRequest(ctx, http.MethodPost, "/v5/order/cancel", req); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// fetchOrder 先查活动订单，查不到再查历史订单
func fetchOrder(ctx context.Context, b *Bybit, category string, market *model.Market, orderID string, args *option.ExchangeArgsOptions) (*model.Order, error) {
	for _, path := range []string{"/v5/order/realtime", "/v5/order/history"} {
		req := types.NewExValues()
		req.SetQuery("category", category)
		req.SetQuery("symbol", market.ID)
		if err := orderIdentity(req.SetQuery, orderID, args); err != nil {
			return nil, err
		}
		resp, err := b.signAndRequest(ctx, http.MethodGet, path, req)
		if err != nil {
			return nil, fmt.Errorf("fetch order: %w", err)
		}
		data, err := decodeList[bybitOrder](resp)
		if err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		if len(data) > 0 {
			return parseOrder(&data[0], market.Symbol), nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", errs.ErrOrderNotFound, market.Symbol, orderID)
}

func fetchOpenOrders(ctx context.Context, b *Bybit, markets *base.MarketCache, category, symbol string) (model.Orders, error) {
	var filters [][2]string
	switch {
	case symbol != "":
		market, err := markets.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		filters = append(filters, [2]string{"symbol", market.ID})
	case category == categoryLinear:
		// 合约不指定交易对时必须提供结算币，按已加载市场的结算币逐个查询
		coins, err := settleCoins(ctx, markets)
		if err != nil {
			return nil, err
		}
		for _, coin := range coins {
			filters = append(filters, [2]string{"settleCoin", coin})
		}
	default:
		if err := markets.Load(ctx, false); err != nil {
			return nil, err
		}
		filters = append(filters, [2]string{})
	}

	orders := make(model.Orders, 0)
	for _, f := range filters {
		req := types.NewExValues()
		req.SetQuery("category", category)
		if f[0] != "" {
			req.SetQuery(f[0], f[1])
		}
		req.SetQuery("openOnly", 0)

		resp, err := b.signAndRequest(ctx, http.MethodGet, "/v5/order/realtime", req)
		if err != nil {
			return nil, fmt.Errorf("fetch open orders: %w", err)
		}
		data, err := decodeList[bybitOrder](resp)
		if err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		for i := range data {
			orders = append(orders, parseOrder(&data[i], markets.SymbolOf(data[i].Symbol)))
		}
	}
	return orders, nil
}

// settleCoins 已加载合约市场的全部结算币，按字母排序
func settleCoins(ctx context.Context, markets *base.MarketCache) ([]string, error) {
	if err := markets.Load(ctx, false); err != nil {
		return nil, err
	}
	all, err := markets.All()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var coins []string
	for _, m := range all {
		if m.Settle != "" && !seen[m.Settle] {
			seen[m.Settle] = true
			coins = append(coins, m.Settle)
		}
	}
	sort.Strings(coins)
	return coins, nil
}
