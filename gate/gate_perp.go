package gate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lemconn/ccxt/base"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
	"github.com/shopspring/decimal"
)

const futuresPath = "/api/v4/futures/" + settleUSDT

// GatePerp Gate USDT 永续合约实现，下单数量为整数张
type GatePerp struct {
	gate    *Gate
	markets *base.MarketCache
}

// NewGatePerp 创建 Gate 永续合约实例
func NewGatePerp(g *Gate) *GatePerp {
	p := &GatePerp{gate: g}
	p.markets = base.NewMarketCache(p.FetchMarkets)
	return p
}

// ========== PerpExchange 接口实现 ==========

// LoadMarkets 加载市场信息
func (p *GatePerp) LoadMarkets(ctx context.Context, reload bool) error {
	return p.markets.Load(ctx, reload)
}

// FetchMarkets 获取 USDT 永续合约列表
func (p *GatePerp) FetchMarkets(ctx context.Context) (model.Markets, error) {
	resp, err := p.gate.publicRequest(ctx, futuresPath+"/contracts", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch contracts: %w", err)
	}
	data, err := decode[[]gateContract](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal contracts: %w", err)
	}

	markets := make(model.Markets, 0, len(data))
	for _, c := range data {
		markets = append(markets, parseContract(c))
	}
	return markets, nil
}

// GetMarket 从缓存获取市场信息
func (p *GatePerp) GetMarket(symbol string) (*model.Market, error) {
	return p.markets.Get(symbol)
}

// GetMarkets 从缓存获取全部市场
func (p *GatePerp) GetMarkets() (model.Markets, error) {
	return p.markets.All()
}

func (p *GatePerp) requestTickers(ctx context.Context, marketID string) ([]gateFuturesTicker, error) {
	req := types.NewExValues()
	if marketID != "" {
		req.SetQuery("contract", marketID)
	}
	resp, err := p.gate.publicRequest(ctx, futuresPath+"/tickers", req)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	data, err := decode[[]gateFuturesTicker](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tickers: %w", err)
	}
	return data, nil
}

// FetchTicker 获取行情，买卖盘数量已换算为基础货币
func (p *GatePerp) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	data, err := p.requestTickers(ctx, market.ID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty ticker for %s", errs.ErrExchange, symbol)
	}
	return parseFuturesTicker(&data[0], market), nil
}

// FetchTickers 批量获取行情
func (p *GatePerp) FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error) {
	if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)
	data, err := p.requestTickers(ctx, "")
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(args.Symbols))
	for _, sym := range args.Symbols {
		want[sym] = true
	}
	tickers := make(model.Tickers, len(data))
	for i := range data {
		market, ok := p.markets.ByID(data[i].Contract)
		if !ok || (len(want) > 0 && !want[market.Symbol]) {
			continue
		}
		tickers[market.Symbol] = parseFuturesTicker(&data[i], market)
	}
	return tickers, nil
}

// FetchOrderBook 获取订单簿，数量已换算为基础货币
func (p *GatePerp) FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("contract", market.ID)
	if limit, ok := option.GetInt(loadArgs(opts).Limit); ok {
		req.SetQuery("limit", limit)
	}
	resp, err := p.gate.publicRequest(ctx, futuresPath+"/order_book", req)
	if err != nil {
		return nil, fmt.Errorf("fetch order book: %w", err)
	}
	book, err := decode[gateFuturesOrderBook](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order book: %w", err)
	}

	levels := func(raw []gateFuturesLevel) []model.OrderBookLevel {
		out := make([]model.OrderBookLevel, 0, len(raw))
		for _, l := range raw {
			out = append(out, model.OrderBookLevel{Price: l.Price.Decimal, Amount: market.ContractsToAmount(l.Size.Decimal)})
		}
		return out
	}
	ob := &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: book.Current.Time,
		Bids:      levels(book.Bids),
		Asks:      levels(book.Asks),
	}
	ob.Sort()
	return ob, nil
}

// FetchOHLCVs 获取 K 线，成交量换算为基础货币
func (p *GatePerp) FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req, err := candleRequest(timeframe, loadArgs(opts))
	if err != nil {
		return nil, err
	}
	req.SetQuery("contract", market.ID)

	resp, err := p.gate.publicRequest(ctx, futuresPath+"/candlesticks", req)
	if err != nil {
		return nil, fmt.Errorf("fetch candlesticks: %w", err)
	}
	data, err := decode[[]gateFuturesCandle](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal candlesticks: %w", err)
	}

	ohlcvs := make(model.OHLCVs, 0, len(data))
	for _, c := range data {
		ohlcvs = append(ohlcvs, &model.OHLCV{
			Timestamp: c.T.Time,
			Open:      c.Open.Decimal,
			High:      c.High.Decimal,
			Low:       c.Low.Decimal,
			Close:     c.Close.Decimal,
			Volume:    market.ContractsToAmount(c.V.Decimal),
		})
	}
	return ohlcvs.Sort(), nil
}

// FetchTrades 获取最近成交
func (p *GatePerp) FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("contract", market.ID)
	if limit, ok := option.GetInt(loadArgs(opts).Limit); ok {
		req.SetQuery("limit", limit)
	}
	resp, err := p.gate.publicRequest(ctx, futuresPath+"/trades", req)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	data, err := decode[[]gateFuturesTrade](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}

	trades := make(model.Trades, 0, len(data))
	for _, t := range data {
		side := model.OrderSideBuy
		if t.Size < 0 {
			side = model.OrderSideSell
		}
		amount := market.ContractsToAmount(decimal.NewFromInt(t.Size).Abs())
		trades = append(trades, &model.Trade{
			ID:        strconv.FormatInt(t.ID, 10),
			Symbol:    market.Symbol,
			Side:      side,
			Price:     t.Price.Decimal,
			Amount:    amount,
			Cost:      amount.Mul(t.Price.Decimal),
			Timestamp: t.CreateTime.Time,
		})
	}
	return trades, nil
}

// FetchFundingRate 获取当前资金费率
func (p *GatePerp) FetchFundingRate(ctx context.Context, symbol string) (*model.FundingRate, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	resp, err := p.gate.publicRequest(ctx, futuresPath+"/contracts/"+url.PathEscape(market.ID), types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch funding rate: %w", err)
	}
	c, err := decode[gateContract](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal funding rate: %w", err)
	}
	return &model.FundingRate{
		Symbol:          market.Symbol,
		FundingRate:     c.FundingRate.Decimal,
		FundingTime:     c.FundingNextApply.Time,
		NextFundingTime: c.FundingNextApply.Time,
		MarkPrice:       c.MarkPrice.Decimal,
		IndexPrice:      c.IndexPrice.Decimal,
	}, nil
}

// FetchBalance 获取 USDT 合约账户余额
func (p *GatePerp) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := p.gate.requireCredentials(); err != nil {
		return nil, err
	}
	resp, err := p.gate.signAndRequest(ctx, http.MethodGet, futuresPath+"/accounts", types.NewExValues())
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}
	a, err := decode[gateFuturesAccount](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}

	balances := make(model.Balances)
	used := a.OrderMargin.Add(a.PositionMargin.Decimal)
	balances.Set(a.Currency, a.Available.Decimal, used, a.Total.Decimal)
	return balances.NonZero(), nil
}

// FetchPositions 获取持仓
func (p *GatePerp) FetchPositions(ctx context.Context, opts ...option.ArgsOption) (model.Positions, error) {
	if err := p.gate.requireCredentials(); err != nil {
		return nil, err
	}
	if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	args := loadArgs(opts)

	req := types.NewExValues()
	req.SetQuery("holding", true)
	resp, err := p.gate.signAndRequest(ctx, http.MethodGet, futuresPath+"/positions", req)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	data, err := decode[[]gatePosition](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}

	want := make(map[string]bool, len(args.Symbols))
	for _, s := range args.Symbols {
		want[s] = true
	}

	positions := make(model.Positions, 0, len(data))
	for _, item := range data {
		if item.Size == 0 {
			continue
		}
		market, ok := p.markets.ByID(item.Contract)
		if !ok || (len(want) > 0 && !want[market.Symbol]) {
			continue
		}

		side := model.PositionSideLong
		if item.Mode == "dual_short" || (item.Mode != "dual_long" && item.Size < 0) {
			side = model.PositionSideShort
		}
		// leverage 为 0 表示全仓，实际倍数为 cross_leverage_limit
		marginType, leverage := model.MarginTypeIsolated, item.Leverage.Decimal
		if leverage.IsZero() {
			marginType, leverage = model.MarginTypeCross, item.CrossLeverageLimit.Decimal
		}

		positions = append(positions, &model.Position{
			Symbol:           market.Symbol,
			Side:             side,
			Contracts:        decimal.NewFromInt(item.Size).Abs(),
			ContractSize:     market.ContractSize,
			EntryPrice:       item.EntryPrice.Decimal,
			MarkPrice:        item.MarkPrice.Decimal,
			LiquidationPrice: item.LiqPrice.Decimal,
			UnrealizedPnl:    item.UnrealisedPnl.Decimal,
			Leverage:         leverage,
			MarginType:       marginType,
			Timestamp:        item.UpdateTime.Time,
		})
	}
	return positions, nil
}

// CreateOrder 创建合约订单，amount 为基础货币数量，按 quanto_multiplier 换算为整数张
//
// size 正数为买入，负数为卖出；平仓单附带 reduce_only。市价单发送 price=0、tif=ioc。
func (p *GatePerp) CreateOrder(ctx context.Context, symbol string, side option.PerpOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error) {
	if err := p.gate.requireCredentials(); err != nil {
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
	size := contracts.IntPart()
	if side.ToSide() == option.Sell {
		size = -size
	}

	req := types.NewExValues()
	req.SetBody("contract", market.ID)
	req.SetBody("size", size)
	switch orderType := args.ResolveOrderType(); orderType {
	case option.Market:
		req.SetBody("price", "0")
		req.SetBody("tif", "ioc")
	case option.Limit:
		price, ok := option.GetDecimalFromString(args.Price)
		if !ok || !price.IsPositive() {
			return nil, fmt.Errorf("%w: limit order requires price", errs.ErrInvalidOrder)
		}
		req.SetBody("price", market.PriceToPrecision(price).String())
		req.SetBody("tif", timeInForce(args))
	default:
		return nil, fmt.Errorf("%w: unsupported order type %s", errs.ErrInvalidOrder, orderType)
	}
	if side.ToReduceOnly() {
		req.SetBody("reduce_only", true)
	}
	req.SetBody("text", clientOrderID(args))
	applyParams(req, args)

	resp, err := p.gate.signAndRequest(ctx, http.MethodPost, futuresPath+"/orders", req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	data, err := decode[gateFuturesOrder](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}
	return &model.NewOrder{
		Symbol:        market.Symbol,
		ID:            strconv.FormatInt(data.ID, 10),
		ClientOrderID: data.Text,
		Timestamp:     data.CreateTime.Time,
	}, nil
}

func (p *GatePerp) orderRequest(ctx context.Context, method, symbol, orderID string, opts []option.ArgsOption) (*model.Market, []byte, error) {
	market, err := p.markets.Market(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	id, err := orderPathID(orderID, loadArgs(opts))
	if err != nil {
		return nil, nil, err
	}
	resp, err := p.gate.signAndRequest(ctx, method, futuresPath+"/orders/"+url.PathEscape(id), types.NewExValues())
	return market, resp, err
}

// CancelOrder 撤销订单
func (p *GatePerp) CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error {
	if err := p.gate.requireCredentials(); err != nil {
		return err
	}
	if _, _, err := p.orderRequest(ctx, http.MethodDelete, symbol, orderID, opts); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// FetchOrder 查询订单
func (p *GatePerp) FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error) {
	if err := p.gate.requireCredentials(); err != nil {
		return nil, err
	}
	market, resp, err := p.orderRequest(ctx, http.MethodGet, symbol, orderID, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	data, err := decode[gateFuturesOrder](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return parseFuturesOrder(&data, market), nil
}

// FetchOpenOrders 查询当前挂单
func (p *GatePerp) FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error) {
	if err := p.gate.requireCredentials(); err != nil {
		return nil, err
	}
	req := types.NewExValues()
	req.SetQuery("status", "open")
	if symbol != "" {
		market, err := p.markets.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		req.SetQuery("contract", market.ID)
	} else if err := p.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}

	resp, err := p.gate.signAndRequest(ctx, http.MethodGet, futuresPath+"/orders", req)
	if err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	data, err := decode[[]gateFuturesOrder](resp)
	if err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}

	orders := make(model.Orders, 0, len(data))
	for i := range data {
		market, ok := p.markets.ByID(data[i].Contract)
		if !ok {
			continue
		}
		orders = append(orders, parseFuturesOrder(&data[i], market))
	}
	return orders, nil
}

// SetLeverage 设置杠杆，双向持仓（账户设置或 WithHedgeMode）使用 dual_comp 接口
func (p *GatePerp) SetLeverage(ctx context.Context, symbol string, leverage int, opts ...option.ArgsOption) error {
	if err := p.gate.requireCredentials(); err != nil {
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

	path := futuresPath + "/positions/" + url.PathEscape(market.ID) + "/leverage"
	if loadArgs(opts).ResolveHedgeMode(p.gate.hedged) {
		path = futuresPath + "/dual_comp/positions/" + url.PathEscape(market.ID) + "/leverage"
	}
	req := types.NewExValues()
	req.SetQuery("leverage", leverage)
	if _, err := p.gate.signAndRequest(ctx, http.MethodPost, path, req); err != nil {
		return fmt.Errorf("set leverage: %w", err)
	}
	return nil
}

// SetMarginType Gate 不支持按合约切换保证金模式
func (p *GatePerp) SetMarginType(ctx context.Context, symbol string, marginType option.MarginType) error {
	if !marginType.Valid() {
		return fmt.Errorf("%w: invalid margin type %q", errs.ErrBadRequest, marginType)
	}
	return fmt.Errorf("%w: gate set margin type", errs.ErrNotSupported)
}

var _ exchange.PerpExchange = (*GatePerp)(nil)
