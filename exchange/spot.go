package exchange

import (
	"context"

	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
)

// SpotExchange 现货交易接口
type SpotExchange interface {
	MarketData

	// ========== 账户 ==========

	// FetchBalance 获取现货余额
	FetchBalance(ctx context.Context) (model.Balances, error)

	// ========== 订单 ==========

	// CreateOrder 创建订单
	// amount 为基础货币数量；设置 option.WithPrice 时默认为限价单
	CreateOrder(ctx context.Context, symbol string, side option.SpotOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error)

	// CancelOrder 撤销订单，orderID 为空时可通过 option.WithClientOrderID 指定
	CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error

	// FetchOrder 查询订单
	FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error)

	// FetchOpenOrders 查询当前挂单
	FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error)
}
