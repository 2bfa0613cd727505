package gate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
)

// GateSpot Gate 现货实现
type GateSpot struct {
	gate    *Gate
	markets *base.MarketCache
}

// NewGateSpot 创建 Gate 现货实例
func NewGateSpot(g *Gate) *GateSpot {
	s := &GateSpot{gate: g}
	s.markets = base.NewMarketCache(s.FetchMarkets)
	return s
}

// ========== SpotExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (s *GateSpot) LoadMarkets(ctx context.Context, reload bool) error {
	return s.markets.Load(ctx, reload)
}

// FetchMarkets 获取现货交易对列表
func (s *GateSpot) FetchMarkets(ctx context.Context) (model.Markets, error) {
	resp, err := s.gate.publicRequest(ctx, "/api/v4/spot/currency_pairs", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch currency pairs: %w", err)
	}
	data, err := decode[[]gateCurrencyPair](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal currency pairs: %w", err)
	}

	markets := make(model.Markets, 0, len(data))
	for _, p := range data {
		markets = append(markets, parseSpotMarket(p))
	}
	return markets, nil
}

// GetMarket 从缓存获取市场信息
func (s *GateSpot) GetMarket(symbol string) (*model.Market, error) {
	return s.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (s *GateSpot) GetMarkets() (model.Markets, error) {
	return s.markets.All()
}

func (s *GateSpot) requestTickers(ctx context.Context, marketID string) ([]gateSpotTicker, error) {
	req := types.NewExValues()
	if marketID != "" {
		req.SetQuery("currency_pair", marketID)
	}
	resp, err := s.gate.publicRequest(ctx, "/api/v4/spot/tickers", req)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	data, err := decode[[]gateSpotTicker](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tickers: %w", err)
	}
	return data, nil
}

// FetchTicker 获取行情
func (s *GateSpot) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	data, err := s.requestTickers(ctx, market.ID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty ticker for %s", errs.ErrExchange, symbol)
	}
	return parseSpotTicker(&data[0], market.Symbol), nil
}

// FetchTickers 批量获取行情
func (s *GateSpot) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	if err := s.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)
	data, err := s.requestTickers(ctx, "")
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(args.Symbols))
	for _, sym := range args.Symbols {
		want[sym] = true
	}
	tickers := make(model.Tickers, len(data))
	for i := range data {
		market, ok := s.markets.ByID(data[i].CurrencyPair)
		if !ok || (len(want) > 0 && !want[market.Symbol]) {
			continue
		}
		tickers[market.Symbol] = parseSpotTicker(&data[i], market.Symbol)
	}
	return tickers, nil
}

// FetchOrderBook 获取订单簿
func (s *GateSpot) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("currency_pair", market.ID)
	if limit, ok := option.GetInt(loadArgs(opts).Limit); ok {
		req.SetQuery("limit", limit)
	}
	resp, err := s.gate.publicRequest(ctx, "/api/v4/spot/order_book", req)
	if err != nil {
		return nil, fmt.Errorf("fetch order book: %w", err)
	}
	book, err := decode[gateSpotOrderBook](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order book: %w", err)
	}

	ob := &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: book.Current.Time,
		Bids:      model.ParseLevels(book.Bids),
		Asks:      model.ParseLevels(book.Asks),
	}
	ob.Sort()
	return ob, nil
}

// FetchOHLCVs 获取 K 线
func (s *GateSpot) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req, err := candleRequest(timeframe, loadArgs(opts))
	if err != nil {
		return nil, err
	}
	req.SetQuery("currency_pair", market.ID)

	resp, err := s.gate.publicRequest(ctx, "/api/v4/spot/candlesticks", req)
	if err != nil {
		return nil, fmt.Errorf("fetch candlesticks: %w", err)
	}
	data, err := decode[[]gateSpotCandle](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal candlesticks: %w", err)
	}

	ohlcvs := make(model.OHLCVs, 0, len(data))
	for _, c := range data {
		ohlcvs = append(ohlcvs, &model.OHLCV{
			Timestamp: c.Time.Time,
			Open:      c.Open.Decimal,
			High:      c.High.Decimal,
			Low:       c.Low.Decimal,
			Close:     c.Close.Decimal,
			Volume:    c.Volume.Decimal,
		})
	}
	return ohlcvs.Sort(), nil
}

// FetchTrades 获取最近成交
func (s *GateSpot) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("currency_pair", market.ID)
	if limit, ok := option.GetInt(loadArgs(opts).Limit); ok {
		req.SetQuery("limit", limit)
	}
	resp, err := s.gate.publicRequest(ctx, "/api/v4/spot/trades", req)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	data, err := decode[[]gateSpotTrade](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}

	trades := make(model.Trades, 0, len(data))
	for _, t := range data {
		trades = append(trades, &model.Trade{
			ID:        t.ID,
			Symbol:    market.Symbol,
			Side:      model.OrderSide(t.Side),
			Price:     t.Price.Decimal,
			Amount:    t.Amount.Decimal,
			Cost:      t.Amount.Mul(t.Price.Decimal),
			Timestamp: t.CreateTime.Time,
		})
	}
	return trades, nil
}

// FetchBalance 获取现货账户余额
func (s *GateSpot) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := s.gate.requireCredentials(); err != nil {
		return nil, err
	}
	resp, err := s.gate.signAndRequest(ctx, http.MethodGet, "/api/v4/spot/accounts", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}
	data, err := decode[[]gateSpotAccount](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}

	balances := make(model.Balances)
	for _, a := range data {
		balances.Set(a.Currency, a.Available.Decimal, a.Locked.Decimal, a.Available.Add(a.Locked.Decimal))
	}
	return balances.NonZero(), nil
}

// CreateOrder 创建现货订单
//
// 市价买单按计价货币金额下单：金额 = amount × 价格，价格取 option.WithPrice，未提供时取最新成交价。
func (s *GateSpot) CreateOrder(ctx context.Context, symbol string, side option.SpotOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := s.gate.requireCredentials(); err != nil {
		return nil, err
	}
	if !side.Valid() {
		return nil, fmt.Errorf("%w: invalid side %q", errs.ErrInvalidOrder, side)
	}
	args := loadArgs(opts)
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}

	qty, err := option.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidOrder, err)
	}
	qty = market.AmountToPrecision(qty)
	if err := market.CheckAmount(qty); err != nil {
		return nil, err
	}

	req := types.NewExValues()
	req.SetBody("text", clientOrderID(args))
	req.SetBody("currency_pair", market.ID)
	req.SetBody("account", "spot")
	req.SetBody("side", side.Lower())

	price, hasPrice := option.GetDecimalFromString(args.Price)
	switch orderType := args.ResolveOrderType(); orderType {
	case option.Market:
		req.SetBody("type", "market")
		req.SetBody("time_in_force", "ioc")
		if side == option.Buy {
			if !hasPrice || !price.IsPositive() {
				ticker, err := s.FetchTicker(ctx, symbol)
				if err != nil {
					return nil, fmt.Errorf("fetch ticker for market buy: %w", err)
				}
				price = ticker.Last
			}
			cost := qty.Mul(price).Truncate(int32(market.Precision.Price))
			req.SetBody("amount", cost.String())
		} else {
			req.SetBody("amount", qty.String())
		}
	case option.Limit:
		if !hasPrice || !price.IsPositive() {
			return nil, fmt.Errorf("%w: limit order requires price", errs.ErrInvalidOrder)
		}
		req.SetBody("type", "limit")
		req.SetBody("amount", qty.String())
		req.SetBody("price", market.PriceToPrecision(price).String())
		req.SetBody("time_in_force", timeInForce(args))
	default:
		return nil, fmt.Errorf("%w: unsupported order type %s", errs.ErrInvalidOrder, orderType)
	}
	applyParams(req, args)

	resp, err := s.gate.signAndRequest(ctx, http.MethodPost, "/api/v4/spot/orders", req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	data, err := decode[gateSpotOrder](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}
	return &model.NewOrder{
		Symbol:        market.Symbol,
		ID:            data.ID,
		ClientOrderID: data.Text,
		Timestamp:     data.CreateTimeMs.Time,
	}, nil
}

func (s *GateSpot) orderRequest(ctx context.Context, method, symbol, orderID string, opts []option.ArgsOption) (*model.Market, []byte, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	id, err := orderPathID(orderID, loadArgs(opts))
	if err != nil {
		return nil, nil, err
	}
	req := types.NewExValues()
	req.SetQuery("currency_pair", market.ID)
	resp, err := s.gate.signAndRequest(ctx, method, "/api/v4/spot/orders/"+url.PathEscape(id), req)
	return market, resp, err
}

// CancelOrder 撤销订单
func (s *GateSpot) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := s.gate.requireCredentials(); err != nil {
		return err
	}
	if _, _, err := s.orderRequest(ctx, http.MethodDelete, symbol, orderID, opts); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// FetchOrder 查询订单
func (s *GateSpot) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := s.gate.requireCredentials(); err != nil {
		return nil, err
	}
	market, resp, err := s.orderRequest(ctx, http.MethodGet, symbol, orderID, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	data, err := decode[gateSpotOrder](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return parseSpotOrder(&data, market.Symbol), nil
}

// FetchOpenOrders 查询当前挂单，未指定交易对时查询全部
func (s *GateSpot) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := s.gate.requireCredentials(); err != nil {
		return nil, err
	}
	if symbol != "" {
		market, err := s.markets.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		req := types.NewExValues()
		req.SetQuery("currency_pair", market.ID)
		req.SetQuery("status", "open")
		resp, err := s.gate.signAndRequest(ctx, http.MethodGet, "/api/v4/spot/orders", req)
		if err != nil {
			return nil, fmt.Errorf("fetch open orders: %w", err)
		}
		data, err := decode[[]gateSpotOrder](resp)
		if err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		orders := make(model.Orders, 0, len(data))
		for i := range data {
			orders = append(orders, parseSpotOrder(&data[i], market.Symbol))
		}
		return orders, nil
	}

	if err := s.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	resp, err := s.gate.signAndRequest(ctx, http.MethodGet, "/api/v4/spot/open_orders", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	data, err := decode[[]gateOpenOrders](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	orders := make(model.Orders, 0)
	for _, group := range data {
		sym := s.markets.SymbolOf(group.CurrencyPair)
		for i := range group.Orders {
			orders = append(orders, parseSpotOrder(&group.Orders[i], sym))
		}
	}
	return orders, nil
}

const defaultCandleLimit = 100

// candleRequest 构造 K 线请求，from/to 为秒级时间戳，区间两端均包含
func candleRequest(timeframe model.Timeframe, args *option.ExchangeArgsOptions) (*types.ExValues, error) {
	if _, err := model.ParseTimeframe(string(timeframe)); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBadRequest, err)
	}
	interval := timeframe.ToGate()
	if interval == "" {
		return nil, fmt.Errorf("%w: timeframe %s not supported by gate", errs.ErrBadRequest, timeframe)
	}

	limit, ok := option.GetInt(args.Limit)
	if !ok || limit <= 0 {
		limit = defaultCandleLimit
	}

	// limit 不能与 from/to 同时使用，指定 since 时换算为区间
	req := types.NewExValues()
	req.SetQuery("interval", interval)
	if since, ok := option.GetTime(args.Since); ok {
		req.SetQuery("from", since.Unix())
		req.SetQuery("to", since.Add(timeframe.Duration()*time.Duration(limit-1)).Unix())
	} else {
		req.SetQuery("limit", limit)
	}
	return req, nil
}

var _ exchange.SpotExchange = (*GateSpot)(nil)
