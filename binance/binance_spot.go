package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
	"github.com/shopspring/decimal"
)

// BinanceSpot Binance 现货实现
type BinanceSpot struct {
	binance *Binance
	markets *base.MarketCache
}

// NewBinanceSpot 创建 Binance 现货实例
func NewBinanceSpot(b *Binance) *BinanceSpot {
	s := &BinanceSpot{binance: b}
	s.markets = base.NewMarketCache(s.FetchMarkets)
	return s
}

func (s *BinanceSpot) http() *common.HTTPClient {
	return s.binance.client.SpotClient
}

// ========== SpotExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (s *BinanceSpot) LoadMarkets(ctx context.Context, reload bool) error {
	return s.markets.Load(ctx, reload)
}

// FetchMarkets 获取现货市场列表
func (s *BinanceSpot) FetchMarkets(ctx context.Context) (model.Markets, error) {
	resp, err := s.binance.publicRequest(ctx, s.http(), "/api/v3/exchangeInfo", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch exchange info: %w", err)
	}

	var info binanceExchangeInfo
	if err := json.Unmarshal(resp, &info); err != nil {
		return nil, fmt.Errorf("unmarshal exchange info: %w", err)
	}

	markets := make(model.Markets, 0, len(info.Symbols))
	for _, sym := range info.Symbols {
		markets = append(markets, parseMarket(sym, false))
	}
	return markets, nil
}

// GetMarket 从缓存获取市场信息
func (s *BinanceSpot) GetMarket(symbol string) (*model.Market, error) {
	return s.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (s *BinanceSpot) GetMarkets() (model.Markets, error) {
	return s.markets.All()
}

// FetchTicker 获取单个交易对行情
func (s *BinanceSpot) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}

	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	resp, err := s.binance.publicRequest(ctx, s.http(), "/api/v3/ticker/24hr", req)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker: %w", err)
	}

	var data binanceTicker
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal ticker: %w", err)
	}
	return parseTicker(&data, market.Symbol), nil
}

// FetchTickers 批量获取行情
func (s *BinanceSpot) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	if err := s.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)

	resp, err := s.binance.publicRequest(ctx, s.http(), "/api/v3/ticker/24hr", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	var data []binanceTicker
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal tickers: %w", err)
	}
	return collectTickers(s.markets, data, args.Symbols), nil
}

// FetchOrderBook 获取订单簿
func (s *BinanceSpot) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrderBook(ctx, s.binance, s.http(), "/api/v3/depth", market, loadArgs(opts))
}

// FetchOHLCVs 获取 K 线
func (s *BinanceSpot) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOHLCVs(ctx, s.binance, s.http(), "/api/v3/klines", market, timeframe, loadArgs(opts))
}

// FetchTrades 获取最近成交
func (s *BinanceSpot) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTrades(ctx, s.binance, s.http(), "/api/v3/trades", market, loadArgs(opts))
}

// FetchBalance 获取现货余额
func (s *BinanceSpot) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := s.binance.requireCredentials(); err != nil {
		return nil, err
	}
	resp, err := s.binance.signAndRequest(ctx, s.http(), http.MethodGet, "/api/v3/account", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}

	var data binanceSpotAccount
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}

	balances := make(model.Balances)
	for _, b := range data.Balances {
		balances.Set(b.Asset, b.Free.Decimal, b.Locked.Decimal, decimal.Zero)
	}
	return balances.NonZero(), nil
}

// CreateOrder 创建现货订单
func (s *BinanceSpot) CreateOrder(ctx context.Context, symbol string, side option.SpotOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := s.binance.requireCredentials(); err != nil {
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
	req.SetQuery("symbol", market.ID)
	req.SetQuery("side", side.Upper())
	req.SetQuery("quantity", qty.String())
	if err := setOrderType(req, market, args, "GTC", "LIMIT_MAKER"); err != nil {
		return nil, err
	}

	clientOrderID, ok := option.GetString(args.ClientOrderID)
	if !ok {
		clientOrderID = common.GenerateClientOrderID(binanceName)
	}
	req.SetQuery("newClientOrderId", clientOrderID)
	req.SetQuery("newOrderRespType", "ACK")
	applyParams(req, args)

	resp, err := s.binance.signAndRequest(ctx, s.http(), http.MethodPost, "/api/v3/order", req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var data binanceOrder
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}
	return &model.NewOrder{
		Symbol:        market.Symbol,
		ID:            strconv.FormatInt(data.OrderID, 10),
		ClientOrderID: data.ClientOrderID,
		Timestamp:     data.TransactTime.Time,
	}, nil
}

// CancelOrder 撤销订单
func (s *BinanceSpot) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := s.binance.requireCredentials(); err != nil {
		return err
	}
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	if err := orderIdentity(req, orderID, loadArgs(opts)); err != nil {
		return err
	}

	if _, err := s.binance.signAndRequest(ctx, s.http(), http.MethodDelete, "/api/v3/order", req); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// FetchOrder 查询订单
func (s *BinanceSpot) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := s.binance.requireCredentials(); err != nil {
		return nil, err
	}
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	if err := orderIdentity(req, orderID, loadArgs(opts)); err != nil {
		return nil, err
	}

	resp, err := s.binance.signAndRequest(ctx, s.http(), http.MethodGet, "/api/v3/order", req)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}

	var data binanceOrder
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return parseOrder(&data, market.Symbol), nil
}

// FetchOpenOrders 查询当前挂单
func (s *BinanceSpot) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := s.binance.requireCredentials(); err != nil {
		return nil, err
	}
	req := types.NewExValues()
	if symbol != "" {
		market, err := s.markets.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		req.SetQuery("symbol", market.ID)
	} else if err := s.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}

	resp, err := s.binance.signAndRequest(ctx, s.http(), http.MethodGet, "/api/v3/openOrders", req)
	if err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	return parseOrders(resp, s.markets)
}

// WatchTicker 订阅行情推送，ctx 结束时关闭通道
func (s *BinanceSpot) WatchTicker(ctx context.Context, symbol string) (<-chan *model.Ticker, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return watchTicker(ctx, s.binance, s.binance.client.SpotWsURL, market)
}

var _ exchange.SpotExchange = (*BinanceSpot)(nil)
