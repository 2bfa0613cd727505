package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lemconn/ccxt"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const (
	metaConfig = "config"
	metaLogger = "logger"

	marketSpot = "spot"
	marketPerp = "perp"
)

// trader 现货与合约共有的接口
type trader interface {
	exchange.MarketData
	FetchBalance(ctx context.Context) (model.Balances, error)
	CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error
	FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error)
	FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error)
}

// tickerWatcher 支持行情推送的市场
type tickerWatcher interface {
	WatchTicker(ctx context.Context, symbol string) (<-chan *model.Ticker, error)
}

var (
	limitFlag = &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"l"},
		Usage:   "maximum number of entries to return",
	}
	clientIDFlag = &cli.StringFlag{
		Name:  "client-id",
		Usage: "client order id, used when the order id is omitted",
	}
)

var exchangesCommand = &cli.Command{
	Name:   "exchanges",
	Usage:  "lists the supported exchanges",
	Action: listExchanges,
}

var marketsCommand = &cli.Command{
	Name:   "markets",
	Usage:  "lists the markets of the exchange",
	Action: listMarkets,
}

var tickerCommand = &cli.Command{
	Name:      "ticker",
	Usage:     "gets the 24h ticker of a symbol",
	ArgsUsage: "<symbol>",
	Action:    getTicker,
}

var tickersCommand = &cli.Command{
	Name:      "tickers",
	Usage:     "gets the tickers of all symbols, or only the given ones",
	ArgsUsage: "[symbol...]",
	Action:    getTickers,
}

var orderBookCommand = &cli.Command{
	Name:      "orderbook",
	Aliases:   []string{"ob"},
	Usage:     "gets the order book of a symbol",
	ArgsUsage: "<symbol>",
	Flags:     []cli.Flag{limitFlag},
	Action:    getOrderBook,
}

var ohlcvCommand = &cli.Command{
	Name:      "ohlcv",
	Aliases:   []string{"candles"},
	Usage:     "gets candles of a symbol",
	ArgsUsage: "<symbol>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "timeframe",
			Aliases: []string{"t"},
			Value:   string(model.Timeframe1h),
			Usage:   "candle interval, e.g. 1m, 15m, 1h, 1d",
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "start time, RFC3339 or unix milliseconds",
		},
		limitFlag,
	},
	Action: getOHLCVs,
}

var tradesCommand = &cli.Command{
	Name:      "trades",
	Usage:     "gets recent public trades of a symbol",
	ArgsUsage: "<symbol>",
	Flags:     []cli.Flag{limitFlag},
	Action:    getTrades,
}

var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "streams ticker updates until interrupted",
	ArgsUsage: "<symbol>",
	Action:    watchTicker,
}

var balanceCommand = &cli.Command{
	Name:   "balance",
	Usage:  "gets the account balance of the selected market",
	Action: getBalance,
}

var orderCommand = &cli.Command{
	Name:      "order",
	Usage:     "order management",
	ArgsUsage: "<command> <args>",
	Subcommands: []*cli.Command{
		{
			Name:      "create",
			Usage:     "places an order; spot side is buy/sell, perp side is open_long/open_short/close_long/close_short",
			ArgsUsage: "<symbol> <side> <amount>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "price",
					Aliases: []string{"p"},
					Usage:   "limit price; without it the order is a market order",
				},
				&cli.StringFlag{
					Name:  "type",
					Usage: "order type: market or limit",
				},
				&cli.StringFlag{
					Name:  "tif",
					Usage: "time in force: GTC, IOC or FOK",
				},
				&cli.BoolFlag{
					Name:  "post-only",
					Usage: "maker only",
				},
				clientIDFlag,
			},
			Action: createOrder,
		},
		{
			Name:      "cancel",
			Usage:     "cancels an order",
			ArgsUsage: "<symbol> [order id]",
			Flags:     []cli.Flag{clientIDFlag},
			Action:    cancelOrder,
		},
		{
			Name:      "get",
			Aliases:   []string{"fetch"},
			Usage:     "gets an order",
			ArgsUsage: "<symbol> [order id]",
			Flags:     []cli.Flag{clientIDFlag},
			Action:    getOrder,
		},
		{
			Name:      "open",
			Usage:     "lists open orders",
			ArgsUsage: "[symbol]",
			Action:    getOpenOrders,
		},
	},
}

var positionsCommand = &cli.Command{
	Name:      "positions",
	Usage:     "lists perp positions",
	ArgsUsage: "[symbol...]",
	Action:    getPositions,
}

var fundingCommand = &cli.Command{
	Name:      "funding",
	Usage:     "gets the current funding rate of a perp symbol",
	ArgsUsage: "<symbol>",
	Action:    getFundingRate,
}

var leverageCommand = &cli.Command{
	Name:      "leverage",
	Usage:     "sets the leverage of a perp symbol",
	ArgsUsage: "<symbol> <leverage>",
	Action:    setLeverage,
}

var marginTypeCommand = &cli.Command{
	Name:      "margin-type",
	Usage:     "sets the margin type of a perp symbol",
	ArgsUsage: "<symbol> <isolated|crossed>",
	Action:    setMarginType,
}

func appConfig(c *cli.Context) *config {
	cfg, _ := c.App.Metadata[metaConfig].(*config)
	if cfg == nil {
		cfg = &config{}
	}
	return cfg
}

func appLogger(c *cli.Context) zerolog.Logger {
	if logger, ok := c.App.Metadata[metaLogger].(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

func setupExchange(c *cli.Context) (exchange.Exchange, error) {
	cfg := appConfig(c)
	return ccxt.NewExchange(cfg.Exchange, cfg.options(appLogger(c))...)
}

func marketType(c *cli.Context) (string, error) {
	switch m := strings.ToLower(c.String("market")); m {
	case "", marketSpot:
		return marketSpot, nil
	case marketPerp, "swap", "futures":
		return marketPerp, nil
	default:
		return "", fmt.Errorf("unknown market type %q, use spot or perp", m)
	}
}

func setupTrader(c *cli.Context) (trader, error) {
	ex, err := setupExchange(c)
	if err != nil {
		return nil, err
	}
	m, err := marketType(c)
	if err != nil {
		return nil, err
	}
	if m == marketPerp {
		return ex.Perp(), nil
	}
	return ex.Spot(), nil
}

func setupPerp(c *cli.Context) (exchange.PerpExchange, error) {
	ex, err := setupExchange(c)
	if err != nil {
		return nil, err
	}
	return ex.Perp(), nil
}

func jsonOutput(c *cli.Context, in any) error {
	j, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(j))
	return err
}

func listExchanges(c *cli.Context) error {
	return jsonOutput(c, ccxt.SupportedExchanges())
}

func listMarkets(c *cli.Context) error {
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	if err := t.LoadMarkets(c.Context, false); err != nil {
		return err
	}
	markets, err := t.GetMarkets()
	if err != nil {
		return err
	}
	return jsonOutput(c, markets)
}

func getTicker(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	ticker, err := t.FetchTicker(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return jsonOutput(c, ticker)
}

func getTickers(c *cli.Context) error {
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	var opts []option.ArgsOption
	if c.NArg() > 0 {
		opts = append(opts, option.WithSymbols(c.Args().Slice()...))
	}
	tickers, err := t.FetchTickers(c.Context, opts...)
	if err != nil {
		return err
	}
	return jsonOutput(c, tickers)
}

func limitOption(c *cli.Context) []option.ArgsOption {
	if c.IsSet("limit") {
		return []option.ArgsOption{option.WithLimit(c.Int("limit"))}
	}
	return nil
}

func getOrderBook(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	book, err := t.FetchOrderBook(c.Context, c.Args().First(), limitOption(c)...)
	if err != nil {
		return err
	}
	return jsonOutput(c, book)
}

// parseSince 支持 RFC3339 与毫秒时间戳
func parseSince(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since %q: %w", s, err)
	}
	return t, nil
}

func getOHLCVs(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	timeframe, err := model.ParseTimeframe(c.String("timeframe"))
	if err != nil {
		return err
	}
	opts := limitOption(c)
	if s := c.String("since"); s != "" {
		since, err := parseSince(s)
		if err != nil {
			return err
		}
		opts = append(opts, option.WithSince(since))
	}

	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	ohlcvs, err := t.FetchOHLCVs(c.Context, c.Args().First(), timeframe, opts...)
	if err != nil {
		return err
	}
	return jsonOutput(c, ohlcvs)
}

func getTrades(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	trades, err := t.FetchTrades(c.Context, c.Args().First(), limitOption(c)...)
	if err != nil {
		return err
	}
	return jsonOutput(c, trades)
}

func watchTicker(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	w, ok := t.(tickerWatcher)
	if !ok {
		return fmt.Errorf("%w: %s ticker stream", errs.ErrNotSupported, appConfig(c).Exchange)
	}
	ch, err := w.WatchTicker(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	for ticker := range ch {
		if err := jsonOutput(c, ticker); err != nil {
			return err
		}
	}
	return nil
}

func getBalance(c *cli.Context) error {
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	balances, err := t.FetchBalance(c.Context)
	if err != nil {
		return err
	}
	return jsonOutput(c, balances)
}

// orderOptions 下单参数
func orderOptions(c *cli.Context) ([]option.ArgsOption, error) {
	var opts []option.ArgsOption
	if p := c.String("price"); p != "" {
		opts = append(opts, option.WithPrice(p))
	}
	if t := c.String("type"); t != "" {
		orderType := option.OrderType(strings.ToUpper(t))
		if !orderType.IsMarket() && !orderType.IsLimit() {
			return nil, fmt.Errorf("unknown order type %q", t)
		}
		opts = append(opts, option.WithOrderType(orderType))
	}
	if tif := c.String("tif"); tif != "" {
		opts = append(opts, option.WithTimeInForce(option.TimeInForce(strings.ToUpper(tif))))
	}
	if c.Bool("post-only") {
		opts = append(opts, option.WithPostOnly(true))
	}
	if id := c.String("client-id"); id != "" {
		opts = append(opts, option.WithClientOrderID(id))
	}
	return opts, nil
}

func createOrder(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.ShowSubcommandHelp(c)
	}
	symbol, side, amount := c.Args().Get(0), strings.ToUpper(c.Args().Get(1)), c.Args().Get(2)
	opts, err := orderOptions(c)
	if err != nil {
		return err
	}
	m, err := marketType(c)
	if err != nil {
		return err
	}
	ex, err := setupExchange(c)
	if err != nil {
		return err
	}

	var order *model.NewOrder
	if m == marketPerp {
		order, err = ex.Perp().CreateOrder(c.Context, symbol, option.PerpOrderSide(side), amount, opts...)
	} else {
		order, err = ex.Spot().CreateOrder(c.Context, symbol, option.SpotOrderSide(side), amount, opts...)
	}
	if err != nil {
		return err
	}
	return jsonOutput(c, order)
}

func orderRef(c *cli.Context) (string, string, []option.ArgsOption) {
	var opts []option.ArgsOption
	if id := c.String("client-id"); id != "" {
		opts = append(opts, option.WithClientOrderID(id))
	}
	return c.Args().Get(0), c.Args().Get(1), opts
}

func cancelOrder(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowSubcommandHelp(c)
	}
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	symbol, id, opts := orderRef(c)
	if err := t.CancelOrder(c.Context, symbol, id, opts...); err != nil {
		return err
	}
	return jsonOutput(c, map[string]string{"symbol": symbol, "id": id, "status": "canceled"})
}

func getOrder(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowSubcommandHelp(c)
	}
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	symbol, id, opts := orderRef(c)
	order, err := t.FetchOrder(c.Context, symbol, id, opts...)
	if err != nil {
		return err
	}
	return jsonOutput(c, order)
}

func getOpenOrders(c *cli.Context) error {
	t, err := setupTrader(c)
	if err != nil {
		return err
	}
	orders, err := t.FetchOpenOrders(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return jsonOutput(c, orders)
}

func getPositions(c *cli.Context) error {
	p, err := setupPerp(c)
	if err != nil {
		return err
	}
	var opts []option.ArgsOption
	if c.NArg() > 0 {
		opts = append(opts, option.WithSymbols(c.Args().Slice()...))
	}
	positions, err := p.FetchPositions(c.Context, opts...)
	if err != nil {
		return err
	}
	return jsonOutput(c, positions)
}

func getFundingRate(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	p, err := setupPerp(c)
	if err != nil {
		return err
	}
	rate, err := p.FetchFundingRate(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return jsonOutput(c, rate)
}

func setLeverage(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.ShowSubcommandHelp(c)
	}
	leverage, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid leverage %q: %w", c.Args().Get(1), err)
	}
	p, err := setupPerp(c)
	if err != nil {
		return err
	}
	if err := p.SetLeverage(c.Context, c.Args().First(), leverage); err != nil {
		return err
	}
	logger := appLogger(c)
	logger.Info().Str("symbol", c.Args().First()).Int("leverage", leverage).Msg("leverage updated")
	return nil
}

func setMarginType(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.ShowSubcommandHelp(c)
	}
	marginType := option.MarginType(strings.ToUpper(c.Args().Get(1)))
	if marginType == "CROSS" {
		marginType = option.CROSSED
	}
	p, err := setupPerp(c)
	if err != nil {
		return err
	}
	if err := p.SetMarginType(c.Context, c.Args().First(), marginType); err != nil {
		return err
	}
	logger := appLogger(c)
	logger.Info().Str("symbol", c.Args().First()).Str("margin_type", marginType.Lower()).Msg("margin type updated")
	return nil
}
