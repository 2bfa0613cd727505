package okx

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

// OKXSpot OKX 现货实现
type OKXSpot struct {
	okx     *OKX
	markets *base.MarketCache
}

// NewOKXSpot 创建 OKX 现货实例
func NewOKXSpot(o *OKX) *OKXSpot {
	s := &OKXSpot{okx: o}
	s.markets = base.NewMarketCache(s.FetchMarkets)
	return s
}

// ========== SpotExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (s *OKXSpot) LoadMarkets(ctx context.Context, reload bool) error {
	return s.markets.Load(ctx, reload)
}

// FetchMarkets 获取现货产品列表
func (s *OKXSpot) FetchMarkets(ctx context.Context) (model.Markets, error) {
	return fetchMarkets(ctx, s.okx, instTypeSpot)
}

// GetMarket 从缓存获取市场信息
func (s *OKXSpot) GetMarket(symbol string) (*model.Market, error) {
	return s.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (s *OKXSpot) GetMarkets() (model.Markets, error) {
	return s.markets.All()
}

// FetchTicker 获取行情
func (s *OKXSpot) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTicker(ctx, s.okx, market)
}

// FetchTickers 批量获取行情
func (s *OKXSpot) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	return fetchTickers(ctx, s.okx, s.markets, instTypeSpot, loadArgs(opts).Symbols)
}

// FetchOrderBook 获取订单簿
func (s *OKXSpot) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrderBook(ctx, s.okx, market, loadArgs(opts))
}

// FetchOHLCVs 获取 K 线
func (s *OKXSpot) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOHLCVs(ctx, s.okx, market, timeframe, loadArgs(opts))
}

// FetchTrades 获取最近成交
func (s *OKXSpot) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTrades(ctx, s.okx, market, loadArgs(opts))
}

// FetchBalance 获取余额
func (s *OKXSpot) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := s.okx.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchBalance(ctx, s.okx)
}

// CreateOrder 创建现货订单，tdMode=cash
//
// 市价买单默认以计价货币计数量，这里固定 tgtCcy=base_ccy 使 amount 始终为基础货币。
func (s *OKXSpot) CreateOrder(ctx context.Context, symbol string, side option.SpotOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := s.okx.requireCredentials(); err != nil {
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

	sz, err := option.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidOrder, err)
	}
	sz = market.AmountToPrecision(sz)
	if err := market.CheckAmount(sz); err != nil {
		return nil, err
	}

	req := types.NewExValues()
	req.SetBody("instId", market.ID)
	req.SetBody("tdMode", "cash")
	req.SetBody("side", side.Lower())
	if err := setOrderType(req, market, args); err != nil {
		return nil, err
	}
	req.SetBody("sz", sz.String())
	if req.GetBody("ordType") == "market" {
		req.SetBody("tgtCcy", "base_ccy")
	}

	clientOrderID, ok := option.GetString(args.ClientOrderID)
	if !ok {
		clientOrderID = common.GenerateAlnumClientOrderID(okxName)
	}
	req.SetBody("clOrdId", clientOrderID)
	applyParams(req, args)

	return placeOrder(ctx, s.okx, market, req)
}

// CancelOrder 撤销订单
func (s *OKXSpot) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := s.okx.requireCredentials(); err != nil {
		return err
	}
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	return cancelOrder(ctx, s.okx, market, orderID, loadArgs(opts))
}

// FetchOrder 查询订单
func (s *OKXSpot) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := s.okx.requireCredentials(); err != nil {
		return nil, err
	}
	market, err := s.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrder(ctx, s.okx, market, orderID, loadArgs(opts))
}

// FetchOpenOrders 查询当前挂单
func (s *OKXSpot) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := s.okx.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchOpenOrders(ctx, s.okx, s.markets, instTypeSpot, symbol)
}

var _ exchange.SpotExchange = (*OKXSpot)(nil)
