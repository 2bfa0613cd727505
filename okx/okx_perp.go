package okx

import (
	"context"
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

// OKXPerp OKX 永续合约实现，下单数量按张
type OKXPerp struct {
	okx     *OKX
	markets *base.MarketCache
}

// NewOKXPerp 创建 OKX 永续合约实例
func NewOKXPerp(o *OKX) *OKXPerp {
	p := &OKXPerp{okx: o}
	p.markets = base.NewMarketCache(p.FetchMarkets)
	return p
}

// ========== PerpExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (p *OKXPerp) LoadMarkets(ctx context.Context, reload bool) error {
	return p.markets.Load(ctx, reload)
}

// FetchMarkets 获取 U 本位永续合约列表
func (p *OKXPerp) FetchMarkets(ctx context.Context) (model.Markets, error) {
	return fetchMarkets(ctx, p.okx, instTypeSwap)
}

// GetMarket 从缓存获取市场信息
func (p *OKXPerp) GetMarket(symbol string) (*model.Market, error) {
	return p.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (p *OKXPerp) GetMarkets() (model.Markets, error) {
	return p.markets.All()
}

// FetchTicker 获取行情
func (p *OKXPerp) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTicker(ctx, p.okx, market)
}

// FetchTickers 批量获取行情
func (p *OKXPerp) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	return fetchTickers(ctx, p.okx, p.markets, instTypeSwap, loadArgs(opts).Symbols)
}

// FetchOrderBook 获取订单簿，数量已换算为基础货币
func (p *OKXPerp) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrderBook(ctx, p.okx, market, loadArgs(opts))
}

// FetchOHLCVs 获取 K 线
func (p *OKXPerp) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOHLCVs(ctx, p.okx, market, timeframe, loadArgs(opts))
}

// FetchTrades 获取最近成交
func (p *OKXPerp) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchTrades(ctx, p.okx, market, loadArgs(opts))
}

// FetchFundingRate 获取当前资金费率
func (p *OKXPerp) FetchFundingRate(ctx context.Context, symbol string) (*model.FundingRate, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}

	req := types.NewExValues()
	req.SetQuery("instId", market.ID)
	resp, err := p.okx.publicRequest(ctx, "/api/v5/public/funding-rate", req)
	if err != nil {
		return nil, fmt.Errorf("fetch funding rate: %w", err)
	}
	data, err := decodeFirst[okxFundingRate](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal funding rate: %w", err)
	}
	return &model.FundingRate{
		Symbol:          market.Symbol,
		FundingRate:     data.FundingRate.Decimal,
		FundingTime:     data.FundingTime.Time,
		NextFundingTime: data.NextFundingTime.Time,
		Timestamp:       data.Ts.Time,
	}, nil
}

// FetchBalance 获取余额
func (p *OKXPerp) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := p.okx.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchBalance(ctx, p.okx)
}

// FetchPositions 获取持仓
func (p *OKXPerp) FetchPositions(ctx context.Context, opts ...option.ArgsOption) (model.Positions, error) {
	if err := p.okx.requireCredentials(); err != nil {
		return nil, err
	}
	if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)

	req := types.NewExValues()
	req.SetQuery("instType", instTypeSwap)
	if len(args.Symbols) == 1 {
		market, err := p.markets.Get(args.Symbols[0])
		if err != nil {
			return nil, err
		}
		req.SetQuery("instId", market.ID)
	}

	resp, err := p.okx.signAndRequest(ctx, http.MethodGet, "/api/v5/account/positions", req)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	data, err := decodeData[okxPosition](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}

	want := make(map[string]bool, len(args.Symbols))
	for _, s := range args.Symbols {
		want[s] = true
	}

	positions := make(model.Positions, 0, len(data))
	for _, item := range data {
		if item.Pos.IsZero() {
			continue
		}
		market, ok := p.markets.ByID(item.InstID)
		if !ok || (len(want) > 0 && !want[market.Symbol]) {
			continue
		}

		// 单向持仓 posSide=net，方向由 pos 的符号决定
		side := model.PositionSideLong
		if item.PosSide == "short" || (item.PosSide == "net" && item.Pos.IsNegative()) {
			side = model.PositionSideShort
		}
		marginType := model.MarginTypeCross
		if item.MgnMode == "isolated" {
			marginType = model.MarginTypeIsolated
		}

		positions = append(positions, &model.Position{
			Symbol:           market.Symbol,
			Side:             side,
			Contracts:        item.Pos.Abs(),
			ContractSize:     market.ContractSize,
			EntryPrice:       item.AvgPx.Decimal,
			MarkPrice:        item.MarkPx.Decimal,
			LiquidationPrice: item.LiqPx.Decimal,
			UnrealizedPnl:    item.Upl.Decimal,
			Leverage:         item.Lever.Decimal,
			MarginType:       marginType,
			Timestamp:        item.UTime.Time,
		})
	}
	return positions, nil
}

// CreateOrder 创建合约订单，amount 为基础货币数量，按 ctVal 换算为张数
//
// 双向持仓发送 posSide=long/short；单向持仓发送 posSide=net，平仓单附带 reduceOnly。
func (p *OKXPerp) CreateOrder(ctx context.Context, symbol string, side option.PerpOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := p.okx.requireCredentials(); err != nil {
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
	contracts, err := market.AmountToContracts(qty)
	if err != nil {
		return nil, err
	}

	req := types.NewExValues()
	req.SetBody("instId", market.ID)
	req.SetBody("tdMode", p.okx.tdMode(market.ID, args))
	req.SetBody("side", side.ToSide().Lower())
	if args.ResolveHedgeMode(p.okx.hedged) {
		if side.ToPositionSide() == "LONG" {
			req.SetBody("posSide", "long")
		} else {
			req.SetBody("posSide", "short")
		}
	} else {
		req.SetBody("posSide", "net")
		if side.ToReduceOnly() {
			req.SetBody("reduceOnly", true)
		}
	}
	if err := setOrderType(req, market, args); err != nil {
		return nil, err
	}
	req.SetBody("sz", contracts.String())

	clientOrderID, ok := option.GetString(args.ClientOrderID)
	if !ok {
		clientOrderID = common.GenerateAlnumClientOrderID(okxName)
	}
	req.SetBody("clOrdId", clientOrderID)
	applyParams(req, args)

	return placeOrder(ctx, p.okx, market, req)
}

// CancelOrder 撤销订单
func (p *OKXPerp) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := p.okx.requireCredentials(); err != nil {
		return err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	return cancelOrder(ctx, p.okx, market, orderID, loadArgs(opts))
}

// FetchOrder 查询订单
func (p *OKXPerp) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := p.okx.requireCredentials(); err != nil {
		return nil, err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return fetchOrder(ctx, p.okx, market, orderID, loadArgs(opts))
}

// FetchOpenOrders 查询当前挂单
func (p *OKXPerp) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := p.okx.requireCredentials(); err != nil {
		return nil, err
	}
	return fetchOpenOrders(ctx, p.okx, p.markets, instTypeSwap, symbol)
}

// SetLeverage 设置杠杆，mgnMode 依次取 WithMarginType、SetMarginType 的设置，默认全仓
func (p *OKXPerp) SetLeverage(ctx context.Context, symbol string, leverage int, opts ...option.ArgsOption) error {
	if err := p.okx.requireCredentials(); err != nil {
		return err
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	maxLever := market.Limits.Leverage.Max
	if !maxLever.IsPositive() {
		maxLever = decimal.NewFromInt(125)
	}
	if leverage < 1 || decimal.NewFromInt(int64(leverage)).GreaterThan(maxLever) {
		return fmt.Errorf("%w: leverage must be between 1 and %s", errs.ErrBadRequest, maxLever)
	}

	req := types.NewExValues()
	req.SetBody("instId", market.ID)
	req.SetBody("lever", strconv.Itoa(leverage))
	req.SetBody("mgnMode", p.okx.tdMode(market.ID, loadArgs(opts)))
	if _, err := p.okx.signAndRequest(ctx, http.MethodPost, "/api/v5/account/set-leverage", req); err != nil {
		return fmt.Errorf("set leverage: %w", err)
	}
	return nil
}

// SetMarginType 设置保证金模式
//
// OKX 没有按合约切换保证金模式的接口，保证金模式随订单的 tdMode 提交；
// 这里记录该合约后续下单和设置杠杆使用的 tdMode。
func (p *OKXPerp) SetMarginType(ctx context.Context, symbol string, marginType option.MarginType) error {
	if err := p.okx.requireCredentials(); err != nil {
		return err
	}
	if !marginType.Valid() {
		return fmt.Errorf("%w: invalid margin type %q", errs.ErrBadRequest, marginType)
	}
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return err
	}
	p.okx.marginModes.Store(market.ID, marginMode(marginType))
	p.okx.logger.Debug().Str("symbol", symbol).Str("tdMode", marginMode(marginType)).Msg("margin mode set")
	return nil
}

var _ exchange.PerpExchange = (*OKXPerp)(nil)
