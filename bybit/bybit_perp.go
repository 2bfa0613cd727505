package bybit

import (
	"context"
	"errors"
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

// positionIdx 取值：0 单向持仓，1 双向多仓，2 双向空仓
const (
	positionIdxOneWay = 0
	positionIdxLong   = 1
	positionIdxShort  = 2
)

// BybitPerp Bybit U 本位永续合约实现，下单数量为基础货币
type BybitPerp struct {
	bybit   *Bybit
	markets *base.MarketCache
}

// NewBybitPerp 创建 Bybit 永续合约实例
func NewBybitPerp(b *Bybit) *BybitPerp {
	p := &BybitPerp{bybit: b}
	p.markets = base.NewMarketCache(p.FetchMarkets)
	return p
}

// ========== PerpExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (p *BybitPerp) LoadMarkets(ctx context.Context, reload bool) error {
	return p.markets.Load(ctx, reload)
}

// FetchMarkets 获取 U 本位永续合约列表
func (p *BybitPerp) FetchMarkets(ctx context.Context) (model.Markets, error) {
	return fetchMarkets(ctx, p.bybit, categoryLinear)
}

// GetMarket 从缓存获取市场信息
func (p *BybitPerp) GetMarket(symbol string) (*model.Market, error) {
	return p.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (p *BybitPerp) GetMarkets() (model.Markets, error) {
	return p.markets.All()
}

// FetchTicker 获取行情
func (p *BybitPerp) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTicker(ctx, p.bybit, categoryLinear, market)
}

// FetchTickers 批量获取行情
func (p *BybitPerp) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	return fetchTickers(ctx, p.bybit, p.markets, categoryLinear, loadArgs(opts).Symbols)
}

// FetchOrderBook 获取订单簿
func (p *BybitPerp) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrderBook(ctx, p.bybit, categoryLinear, market, loadArgs(opts))
}

// FetchOHLCVs 获取 K 线
func (p *BybitPerp) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOHLCVs(ctx, p.bybit, categoryLinear, market, timeframe, loadArgs(opts))
}

// FetchTrades 获取最近成交
func (p *BybitPerp) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTrades(ctx, p.bybit, categoryLinear, market, loadArgs(opts))
}

// FetchFundingRate 资金费率取自合约行情
func (p *BybitPerp) FetchFundingRate(ctx context.Context, symbol string) (*model.FundingRate, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	data, ts, err := requestTickers(ctx, p.bybit, categoryLinear, market.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch funding rate: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty ticker for %s", errs.ErrExchange, symbol)
	}
	t := data[0]
	return &model.FundingRate{
		Symbol:          market.Symbol,
		FundingRate:     t.FundingRate.Decimal,
		FundingTime:     t.NextFundingTime.Time,
		NextFundingTime: t.NextFundingTime.Time,
		MarkPrice:       t.MarkPrice.Decimal,
		IndexPrice:      t.IndexPrice.Decimal,
		Timestamp:       ts,
	}, nil
}

// FetchBalance 获取统一账户余额
func (p *BybitPerp) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := p.bybit.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchBalance(ctx, p.bybit)
}

func (p *BybitPerp) requestPositions(ctx context.Context, marketID string) ([]bybitPosition, error) {
	if marketID != "" {
		return p.positionPage(ctx, "symbol", marketID)
	}
	// 不指定交易对时必须提供结算币
	coins, err := settleCoins(ctx, p.markets)
	if err != nil {
		return nil, err
	}
	var out []bybitPosition
	for _, coin := range coins {
		data, err := p.positionPage(ctx, "settleCoin", coin)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

func (p *BybitPerp) positionPage(ctx context.Context, key, value string) ([]bybitPosition, error) {
	req := types.NewExValues()
	req.SetQuery("category", categoryLinear)
	req.SetQuery(key, value)
	resp, err := p.bybit.signAndRequest(ctx, http.MethodGet, "/v5/position/list", req)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	data, err := decodeList[bybitPosition](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	return data, nil
}

// FetchPositions 获取持仓，忽略数量为零的记录
func (p *BybitPerp) FetchPositions(ctx context.Context, opts ...option.ArgsOption) (model.Positions, error) {
	if err := p.bybit.requireCredentials(); err != nil {
		return nil, err
	}
	if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)

	marketID := ""
	if len(args.Symbols) == 1 {
		market, err := p.markets.Get(args.Symbols[0])
		if err != nil {
			return nil, err
		}
		marketID = market.ID
	}
	data, err := p.requestPositions(ctx, marketID)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(args.Symbols))
	for _, s := range args.Symbols {
		want[s] = true
	}

	positions := make(model.Positions, 0, len(data))
	for _, item := range data {
		if item.Size.IsZero() {
			continue
		}
		market, ok := p.markets.ByID(item.Symbol)
		if !ok || (len(want) > 0 && !want[market.Symbol]) {
			continue
		}

		side := model.PositionSideLong
		if item.PositionIdx == positionIdxShort || (item.PositionIdx == positionIdxOneWay && item.Side == "Sell") {
			side = model.PositionSideShort
		}
		marginType := model.MarginTypeCross
		if item.TradeMode == 1 {
			marginType = model.MarginTypeIsolated
		}

		positions = append(positions, &model.Position{
			Symbol:           market.Symbol,
			Side:             side,
			Contracts:        item.Size.Abs(),
			ContractSize:     market.ContractMultiplier(),
			EntryPrice:       item.AvgPrice.Decimal,
			MarkPrice:        item.MarkPrice.Decimal,
			LiquidationPrice: item.LiqPrice.Decimal,
			UnrealizedPnl:    item.UnrealisedPnl.Decimal,
			Leverage:         item.Leverage.Decimal,
			MarginType:       marginType,
			Timestamp:        item.UpdatedTime.Time,
		})
	}
	return positions, nil
}

// CreateOrder 创建合约订单
//
// 双向持仓按开平方向发送 positionIdx=1/2；单向持仓发送 positionIdx=0，平仓单附带 reduceOnly。
func (p *BybitPerp) CreateOrder(ctx context.Context, symbol string, side option.PerpOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := p.bybit.requireCredentials(); err != nil {
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
	req.SetBody("category", categoryLinear)
	req.SetBody("symbol", market.ID)
	req.SetBody("side", side.ToSide().Capitalize())
	if err := setOrderType(req, market, args); err != nil {
		return nil, err
	}
	req.SetBody("qty", qty.String())
	if args.ResolveHedgeMode(p.bybit.hedged) {
		if side.ToPositionSide() == "LONG" {
			req.SetBody("positionIdx", positionIdxLong)
		} else {
			req.SetBody("positionIdx", positionIdxShort)
		}
	} else {
		req.SetBody("positionIdx", positionIdxOneWay)
		if side.ToReduceOnly() {
			req.SetBody("reduceOnly", true)
		}
	}

	clientOrderID, ok := option.GetString(args.ClientOrderID)
	if !ok {
		clientOrderID = common.GenerateClientOrderID(bybitName)
	}
	req.SetBody("orderLinkId", clientOrderID)
	applyParams(req, args)

	return placeOrder(ctx, p.bybit, market, req)
}

// CancelOrder 撤销订单
func (p *BybitPerp) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := p.bybit.requireCredentials(); err != nil {
		return err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	return cancelOrder(ctx, p.bybit, categoryLinear, market, orderID, loadArgs(opts))
}

// FetchOrder 查询订单
func (p *BybitPerp) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := p.bybit.requireCredentials(); err != nil {
		return nil, err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrder(ctx, p.bybit, categoryLinear, market, orderID, loadArgs(opts))
}

// FetchOpenOrders 查询当前挂单
func (p *BybitPerp) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := p.bybit.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchOpenOrders(ctx, p.bybit, p.markets, categoryLinear, symbol)
}

// SetLeverage 设置杠杆，多空两侧使用相同倍数；杠杆未变化时视为成功
func (p *BybitPerp) SetLeverage(ctx context.Context, symbol string, leverage int, opts ...option.ArgsOption) error {
	if err := p.bybit.requireCredentials(); err != nil {
		return err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	maxLever := market.Limits.Leverage.Max
	if !maxLever.IsPositive() {
		maxLever = decimal.NewFromInt(100)
	}
	if leverage < 1 || decimal.NewFromInt(int64(leverage)).GreaterThan(maxLever) {
		return fmt.Errorf("%w: leverage must be between 1 and %s", errs.ErrBadRequest, maxLever)
	}

	req := types.NewExValues()
	req.SetBody("category", categoryLinear)
	req.SetBody("symbol", market.ID)
	req.SetBody("buyLeverage", strconv.Itoa(leverage))
	req.SetBody("sellLeverage", strconv.Itoa(leverage))
	_, err = p.bybit.signAndRequest(ctx, http.MethodPost, "/v5/position/set-leverage", req)
	if isCode(err, codeLeverageNotModified) {
		p.bybit.logger.Debug().Str("symbol", symbol).Int("leverage", leverage).Msg("leverage not modified")
		return nil
	}
	if err != nil {
		return fmt.Errorf("set leverage: %w", err)
	}
	return nil
}

// SetMarginType 切换全仓/逐仓
//
// 接口要求同时提交杠杆，沿用当前持仓的杠杆倍数；模式未变化时视为成功。
// 统一账户不支持按合约切换，返回 errs.ErrNotSupported。
func (p *BybitPerp) SetMarginType(ctx context.Context, symbol string, marginType option.MarginType) error {
	if err := p.bybit.requireCredentials(); err != nil {
		return err
	}
	if !marginType.Valid() {
		return fmt.Errorf("%w: invalid margin type %q", errs.ErrBadRequest, marginType)
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}

	leverage := "1"
	positions, err := p.requestPositions(ctx, market.ID)
	if err != nil {
		return err
	}
	if len(positions) > 0 && positions[0].Leverage.IsPositive() {
		leverage = positions[0].Leverage.String()
	}

	tradeMode := 0
	if marginType.IsIsolated() {
		tradeMode = 1
	}
	req := types.NewExValues()
	req.SetBody("category", categoryLinear)
	req.SetBody("symbol", market.ID)
	req.SetBody("tradeMode", tradeMode)
	req.SetBody("buyLeverage", leverage)
	req.SetBody("sellLeverage", leverage)
	_, err = p.bybit.signAndRequest(ctx, http.MethodPost, "/v5/position/switch-isolated", req)
	if isCode(err, codeMarginModeNotModified) {
		p.bybit.logger.Debug().Str("symbol", symbol).Str("marginType", marginType.Lower()).Msg("margin mode not modified")
		return nil
	}
	if err != nil {
		return fmt.Errorf("set margin type: %w", err)
	}
	return nil
}

func isCode(err error, code string) bool {
	var exErr *errs.ExchangeError
	return errors.As(err, &exErr) && exErr.Code == code
}

var _ exchange.PerpExchange = (*BybitPerp)(nil)
