package bybit

import (
	"context"
	"fmt"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
)

// BybitSpot Bybit 现货实现
type BybitSpot struct {
	bybit   *Bybit
	markets *base.MarketCache
}

// NewBybitSpot 创建 Bybit 现货实例
func NewBybitSpot(b *Bybit) *BybitSpot {
	s := &BybitSpot{bybit: b}
	s.markets = base.NewMarketCache(s.FetchMarkets)
	return s
}

// ========== SpotExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (s *BybitSpot) LoadMarkets(ctx context.Context, reload bool) error {
	return s.markets.Load(ctx, reload)
}

// FetchMarkets 获取现货交易对列表
func (s *BybitSpot) FetchMarkets(ctx context.Context) (model.Markets, error) {
	return fetchMarkets(ctx, s.bybit, categorySpot)
}

// GetMarket 从缓存获取市场信息
func (s *BybitSpot) GetMarket(symbol string) (*model.Market, error) {
	return s.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (s *BybitSpot) GetMarkets() (model.Markets, error) {
	return s.markets.All()
}

// FetchTicker 获取行情
func (s *BybitSpot) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTicker(ctx, s.bybit, categorySpot, market)
}

// FetchTickers 批量获取行情
func (s *BybitSpot) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	return fetchTickers(ctx, s.bybit, s.markets, categorySpot, loadArgs(opts).Symbols)
}

// FetchOrderBook 获取订单簿
func (s *BybitSpot) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrderBook(ctx, s.bybit, categorySpot, market, loadArgs(opts))
}

// FetchOHLCVs 获取 K 线
func (s *BybitSpot) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOHLCVs(ctx, s.bybit, categorySpot, market, timeframe, loadArgs(opts))
}

// FetchTrades 获取最近成交
func (s *BybitSpot) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTrades(ctx, s.bybit, categorySpot, market, loadArgs(opts))
}

// FetchBalance 获取统一账户余额
func (s *BybitSpot) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := s.bybit.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchBalance(ctx, s.bybit)
}

// CreateOrder 创建现货订单
//
// 市价买单默认按计价货币下单，这里指定 marketUnit=baseCoin，amount 始终为基础货币数量。
func (s *BybitSpot) CreateOrder(ctx context.Context, symbol string, side option.SpotOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := s.bybit.requireCredentials(); err != nil {
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
	req.SetBody("category", categorySpot)
	req.SetBody("symbol", market.ID)
	req.SetBody("side", side.Capitalize())
	if err := setOrderType(req, market, args); err != nil {
		return nil, err
	}
	req.SetBody("qty", qty.String())
	if args.ResolveOrderType().IsMarket() {
		req.SetBody("marketUnit", "baseCoin")
	}

	clientOrderID, ok := option.GetString(args.ClientOrderID)
	if !ok {
		clientOrderID = common.GenerateClientOrderID(bybitName)
	}
	req.SetBody("orderLinkId", clientOrderID)
	applyParams(req, args)

	return placeOrder(ctx, s.bybit, market, req)
}

// CancelOrder 撤销订单
func (s *BybitSpot) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := s.bybit.requireCredentials(); err != nil {
		return err
	}
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	return cancelOrder(ctx, s.bybit, categorySpot, market, orderID, loadArgs(opts))
}

// FetchOrder 查询订单
func (s *BybitSpot) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := s.bybit.requireCredentials(); err != nil {
		return nil, err
	}
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrder(ctx, s.bybit, categorySpot, market, orderID, loadArgs(opts))
}

// FetchOpenOrders 查询当前挂单
func (s *BybitSpot) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := s.bybit.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchOpenOrders(ctx, s.bybit, s.markets, categorySpot, symbol)
}

var _ exchange.SpotExchange = (*BybitSpot)(nil)
