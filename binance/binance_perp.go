package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
	"github.com/shopspring/decimal"
)

const maxLeverage = 125

// BinancePerp Binance U 本位永续合约实现
type BinancePerp struct {
	binance *Binance
	markets *base.MarketCache
}

// NewBinancePerp 创建 Binance 永续合约实例
func NewBinancePerp(b *Binance) *BinancePerp {
	p := &BinancePerp{binance: b}
	p.markets = base.NewMarketCache(p.FetchMarkets)
	return p
}

func (p *BinancePerp) http() *common.HTTPClient {
	return p.binance.client.PerpClient
}

// ========== PerpExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (p *BinancePerp) LoadMarkets(ctx context.Context, reload bool) error {
	return p.markets.Load(ctx, reload)
}

// FetchMarkets 获取永续合约市场，只保留 PERPETUAL
func (p *BinancePerp) FetchMarkets(ctx context.Context) (model.Markets, error) {
	resp, err := p.binance.publicRequest(ctx, p.http(), "/fapi/v1/exchangeInfo", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch fapi exchange info: %w", err)
	}

	var info binanceExchangeInfo
	if err := json.Unmarshal(resp, &info); err != nil {
		return nil, fmt.Errorf("unmarshal fapi exchange info: %w", err)
	}

	markets := make(model.Markets, 0, len(info.Symbols))
	for _, sym := range info.Symbols {
		if sym.ContractType != "PERPETUAL" {
			continue
		}
		markets = append(markets, parseMarket(sym, true))
	}
	return markets, nil
}

// GetMarket 从缓存获取市场信息
func (p *BinancePerp) GetMarket(symbol string) (*model.Market, error) {
	return p.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (p *BinancePerp) GetMarkets() (model.Markets, error) {
	return p.markets.All()
}

// FetchTicker 获取单个合约行情
func (p *BinancePerp) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}

	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	resp, err := p.binance.publicRequest(ctx, p.http(), "/fapi/v1/ticker/24hr", req)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker: %w", err)
	}

	var data binanceTicker
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal ticker: %w", err)
	}
	return parseTicker(&data, market.Symbol), nil
}

// FetchTickers 批量获取合约行情
func (p *BinancePerp) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)

	resp, err := p.binance.publicRequest(ctx, p.http(), "/fapi/v1/ticker/24hr", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	var data []binanceTicker
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal tickers: %w", err)
	}
	return collectTickers(p.markets, data, args.Symbols), nil
}

// FetchOrderBook 获取订单簿
func (p *BinancePerp) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrderBook(ctx, p.binance, p.http(), "/fapi/v1/depth", market, loadArgs(opts))
}

// FetchOHLCVs 获取 K 线
func (p *BinancePerp) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOHLCVs(ctx, p.binance, p.http(), "/fapi/v1/klines", market, timeframe, loadArgs(opts))
}

// FetchTrades 获取最近成交
func (p *BinancePerp) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTrades(ctx, p.binance, p.http(), "/fapi/v1/trades", market, loadArgs(opts))
}

// FetchFundingRate 获取当前资金费率
func (p *BinancePerp) FetchFundingRate(ctx context.Context, symbol string) (*model.FundingRate, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}

	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	resp, err := p.binance.publicRequest(ctx, p.http(), "/fapi/v1/premiumIndex", req)
	if err != nil {
		return nil, fmt.Errorf("fetch premium index: %w", err)
	}

	var data binancePremiumIndex
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal premium index: %w", err)
	}
	return &model.FundingRate{
		Symbol:          market.Symbol,
		FundingRate:     data.LastFundingRate.Decimal,
		NextFundingTime: data.NextFundingTime.Time,
		MarkPrice:       data.MarkPrice.Decimal,
		IndexPrice:      data.IndexPrice.Decimal,
		Timestamp:       data.Time.Time,
	}, nil
}

// FetchBalance 获取合约账户余额
func (p *BinancePerp) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := p.binance.requireCredentials(); err != nil {
		return nil, err
	}
	resp, err := p.binance.signAndRequest(ctx, p.http(), http.MethodGet, "/fapi/v2/balance", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}

	var data []binancePerpBalance
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}

	balances := make(model.Balances)
	for _, b := range data {
		balances.Set(b.Asset, b.AvailableBalance.Decimal, decimal.Zero, b.Balance.Decimal)
	}
	return balances.NonZero(), nil
}

// FetchPositions 获取持仓，数量为 0 的记录会被过滤
func (p *BinancePerp) FetchPositions(ctx context.Context, opts ...option.ArgsOption) (model.Positions, error) {
	if err := p.binance.requireCredentials(); err != nil {
		return nil, err
	}
	if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)

	req := types.NewExValues()
	if len(args.Symbols) == 1 {
		market, err := p.markets.Get(args.Symbols[0])
		if err != nil {
			return nil, err
		}
		req.SetQuery("symbol", market.ID)
	}

	resp, err := p.binance.signAndRequest(ctx, p.http(), http.MethodGet, "/fapi/v2/positionRisk", req)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	var data []binancePosition
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}

	want := make(map[string]bool, len(args.Symbols))
	for _, s := range args.Symbols {
		want[s] = true
	}

	positions := make(model.Positions, 0, len(data))
	for _, pos := range data {
		if pos.PositionAmt.IsZero() {
			continue
		}
		symbol := p.markets.SymbolOf(pos.Symbol)
		if len(want) > 0 && !want[symbol] {
			continue
		}
		positions = append(positions, parsePosition(pos, symbol))
	}
	return positions, nil
}

func parsePosition(pos binancePosition, symbol string) *model.Position {
	side := model.PositionSideLong
	switch {
	case pos.PositionSide == "SHORT":
		side = model.PositionSideShort
	case pos.PositionSide == "BOTH" && pos.PositionAmt.IsNegative():
		side = model.PositionSideShort
	}
	marginType := model.MarginTypeCross
	if strings.EqualFold(pos.MarginType, "isolated") {
		marginType = model.MarginTypeIsolated
	}
	return &model.Position{
		Symbol:           symbol,
		Side:             side,
		Contracts:        pos.PositionAmt.Abs(),
		ContractSize:     decimal.NewFromInt(1),
		EntryPrice:       pos.EntryPrice.Decimal,
		MarkPrice:        pos.MarkPrice.Decimal,
		LiquidationPrice: pos.LiquidationPrice.Decimal,
		UnrealizedPnl:    pos.UnRealizedProfit.Decimal,
		Leverage:         pos.Leverage.Decimal,
		MarginType:       marginType,
		Timestamp:        pos.UpdateTime.Time,
	}
}

// CreateOrder 创建合约订单
//
// 双向持仓模式发送 positionSide=LONG/SHORT；单向持仓模式发送 BOTH，平仓单附带 reduceOnly。
func (p *BinancePerp) CreateOrder(ctx context.Context, symbol string, side option.PerpOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := p.binance.requireCredentials(); err != nil {
		return nil, err
	}
	if !side.Valid() {
		return nil, fmt.Errorf("%w: invalid side %q", errs.ErrInvalidOrder, side)
	}
	args := loadArgs(opts)
	market, err := p.markets.Market(ctx, symbol)
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
	req.SetQuery("side", side.ToSide().Upper())
	if args.ResolveHedgeMode(p.binance.hedged) {
		req.SetQuery("positionSide", side.ToPositionSide())
	} else {
		req.SetQuery("positionSide", "BOTH")
		if side.ToReduceOnly() {
			req.SetQuery("reduceOnly", true)
		}
	}
	req.SetQuery("quantity", qty.String())
	if err := setOrderType(req, market, args, "GTC", ""); err != nil {
		return nil, err
	}

	clientOrderID, ok := option.GetString(args.ClientOrderID)
	if !ok {
		clientOrderID = common.GenerateClientOrderID(binanceName)
	}
	req.SetQuery("newClientOrderId", clientOrderID)
	applyParams(req, args)

	resp, err := p.binance.signAndRequest(ctx, p.http(), http.MethodPost, "/fapi/v1/order", req)
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
		Timestamp:     data.UpdateTime.Time,
	}, nil
}

// CancelOrder 撤销订单
func (p *BinancePerp) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := p.binance.requireCredentials(); err != nil {
		return err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	if err := orderIdentity(req, orderID, loadArgs(opts)); err != nil {
		return err
	}

	if _, err := p.binance.signAndRequest(ctx, p.http(), http.MethodDelete, "/fapi/v1/order", req); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// FetchOrder 查询订单
func (p *BinancePerp) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := p.binance.requireCredentials(); err != nil {
		return nil, err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	if err := orderIdentity(req, orderID, loadArgs(opts)); err != nil {
		return nil, err
	}

	resp, err := p.binance.signAndRequest(ctx, p.http(), http.MethodGet, "/fapi/v1/order", req)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}

	var data binanceOrder
	if err := json.Unmarshal(resp, &data); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return parseOrder(&data, market.Symbol), nil
}

// FetchOpenOrders 查询当前挂单，symbol 为空时查询全部
func (p *BinancePerp) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := p.binance.requireCredentials(); err != nil {
		return nil, err
	}
	req := types.NewExValues()
	if symbol != "" {
		market, err := p.markets.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		req.SetQuery("symbol", market.ID)
	} else if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}

	resp, err := p.binance.signAndRequest(ctx, p.http(), http.MethodGet, "/fapi/v1/openOrders", req)
	if err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	return parseOrders(resp, p.markets)
}

// SetLeverage 设置杠杆倍数
func (p *BinancePerp) SetLeverage(ctx context.Context, symbol string, leverage int, opts ...option.ArgsOption) error {
	if err := p.binance.requireCredentials(); err != nil {
		return err
	}
	if leverage < 1 || leverage > maxLeverage {
		return fmt.Errorf("%w: leverage must be between 1 and %d", errs.ErrBadRequest, maxLeverage)
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}

	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	req.SetQuery("leverage", leverage)
	if _, err := p.binance.signAndRequest(ctx, p.http(), http.MethodPost, "/fapi/v1/leverage", req); err != nil {
		return fmt.Errorf("set leverage: %w", err)
	}
	return nil
}

// SetMarginType 设置保证金模式，已是目标模式时视为成功
func (p *BinancePerp) SetMarginType(ctx context.Context, symbol string, marginType option.MarginType) error {
	if err := p.binance.requireCredentials(); err != nil {
		return err
	}
	if !marginType.Valid() {
		return fmt.Errorf("%w: invalid margin type %q", errs.ErrBadRequest, marginType)
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}

	req := types.NewExValues()
	req.SetQuery("symbol", market.ID)
	req.SetQuery("marginType", marginType.String())
	_, err = p.binance.signAndRequest(ctx, p.http(), http.MethodPost, "/fapi/v1/marginType", req)
	var exErr *errs.ExchangeError
	if errors.As(err, &exErr) && exErr.Code == codeNoNeedChangeMarginType {
		p.binance.logger.Debug().Str("symbol", symbol).Msg("margin type unchanged")
		return nil
	}
	if err != nil {
		return fmt.Errorf("set margin type: %w", err)
	}
	return nil
}

// WatchTicker 订阅合约行情推送
func (p *BinancePerp) WatchTicker(ctx context.Context, symbol string) (<-chan *model.Ticker, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return watchTicker(ctx, p.binance, p.binance.client.PerpWsURL, market)
}

var _ exchange.PerpExchange = (*BinancePerp)(nil)
