package exchange

import (
	"context"

	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
)

// Exchange 交易所实例，按市场类型拆分为现货与永续合约两个接口
type Exchange interface {
	// Name 交易所名称
	Name() string

	// Spot 现货交易接口
	Spot() SpotExchange

	// Perp U 本位永续合约交易接口
	Perp() PerpExchange
}

// MarketData 现货与合约共有的行情接口
type MarketData interface {
	// LoadMarkets 加载市场信息，reload 为 true 时强制刷新
	LoadMarkets(ctx context.Context, reload bool) error

	// FetchMarkets 从交易所拉取市场列表（不写入缓存）
	FetchMarkets(ctx context.Context) (model.Markets, error)

	// GetMarket 从缓存获取单个市场
	GetMarket(symbol string) (*model.Market, error)

	// GetMarkets 从缓存获取全部市场
	GetMarkets() (model.Markets, error)

	// FetchTicker 获取单个交易对行情
	FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error)

	// FetchTickers 批量获取行情，可通过 option.WithSymbols 过滤
	FetchTickers(ctx context.Context, opts ...option.ArgsOption) (model.Tickers, error)

	// FetchOrderBook 获取订单簿，可通过 option.WithLimit 指定深度
	FetchOrderBook(ctx context.Context, symbol string, opts ...option.ArgsOption) (*model.OrderBook, error)

	// FetchOHLCVs 获取 K 线，支持 option.WithSince / option.WithLimit
	FetchOHLCVs(ctx context.Context, symbol string, timeframe model.Timeframe, opts ...option.ArgsOption) (model.OHLCVs, error)

	// FetchTrades 获取最近公共成交
	FetchTrades(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Trades, error)
}
