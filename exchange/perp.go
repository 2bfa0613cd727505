package exchange

import (
	"context"

	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
)

// PerpExchange U 本位永续合约交易接口
type PerpExchange interface {
	MarketData

	// FetchFundingRate 获取当前资金费率
	FetchFundingRate(ctx context.Context, symbol string) (*model.FundingRate, error)

	// ========== 账户 ==========

	// FetchBalance 获取合约账户余额
	FetchBalance(ctx context.Context) (model.Balances, error)

	// FetchPositions 获取持仓，可通过 option.WithSymbols 过滤
	FetchPositions(ctx context.Context, opts ...option.ArgsOption) (model.Positions, error)

	// ========== 订单 ==========

	// CreateOrder 创建订单
	// amount 为基础货币数量，按张下单的交易所内部换算为张数
	CreateOrder(ctx context.Context, symbol string, side option.PerpOrderSide, amount string, opts ...option.ArgsOption) (*model.NewOrder, error)

	// CancelOrder 撤销订单
	CancelOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) error

	// FetchOrder 查询订单
	FetchOrder(ctx context.Context, symbol string, orderID string, opts ...option.ArgsOption) (*model.Order, error)

	// FetchOpenOrders 查询当前挂单
	FetchOpenOrders(ctx context.Context, symbol string, opts ...option.ArgsOption) (model.Orders, error)

	// ========== 合约设置 ==========

	// SetLeverage 设置杠杆倍数，支持 WithHedgeMode、WithMarginType 覆盖账户设置
	SetLeverage(ctx context.Context, symbol string, leverage int, opts ...option.ArgsOption) error

	// SetMarginType 设置保证金模式
	SetMarginType(ctx context.Context, symbol string, marginType option.MarginType) error
}
