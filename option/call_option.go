package option

import (
	"time"
)

// ExchangeArgsOptions 方法调用参数选项
type ExchangeArgsOptions struct {
	// ========== 通用查询参数 ==========
	// Limit 返回数量
	Limit *int
	// Since 起始时间
	Since *time.Time
	// Symbols 交易对列表（FetchTickers、FetchPositions）
	Symbols []string

	// ========== 订单相关参数 ==========
	// OrderType 订单类型，未设置时有价格为限价单，否则为市价单
	OrderType *OrderType
	// Price 订单价格
	Price *string
	// ClientOrderID 客户端订单ID
	ClientOrderID *string
	// TimeInForce 订单有效期
	TimeInForce *TimeInForce
	// PostOnly 只做 maker
	PostOnly *bool
	// HedgeMode 覆盖账户的双向持仓设置
	HedgeMode *bool
	// MarginType 合约下单使用的保证金模式（OKX tdMode）
	MarginType *MarginType

	// Params 透传给交易所的原始参数
	Params map[string]interface{}
}

// ArgsOption 方法调用参数选项函数
type ArgsOption func(*ExchangeArgsOptions)

// ApplyArgsOptions 应用方法调用参数选项
func ApplyArgsOptions(opts ...ArgsOption) *ExchangeArgsOptions {
	args := &ExchangeArgsOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(args)
		}
	}
	return args
}

// ResolveOrderType 返回最终订单类型
func (o *ExchangeArgsOptions) ResolveOrderType() OrderType {
	if o.OrderType != nil {
		return *o.OrderType
	}
	if _, ok := GetString(o.Price); ok {
		return Limit
	}
	return Market
}

// ResolveHedgeMode 返回最终持仓模式，未覆盖时使用账户默认值
func (o *ExchangeArgsOptions) ResolveHedgeMode(def bool) bool {
	if o.HedgeMode != nil {
		return *o.HedgeMode
	}
	return def
}

// ========== 通用查询参数选项 ==========

// WithLimit 设置返回数量
func WithLimit(limit int) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.Limit = &limit
	}
}

// WithSince 设置起始时间
func WithSince(since time.Time) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.Since = &since
	}
}

// WithSymbols 设置交易对列表
func WithSymbols(symbols ...string) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.Symbols = symbols
	}
}

// ========== 订单相关参数选项 ==========

// WithOrderType 设置订单类型
func WithOrderType(orderType OrderType) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.OrderType = &orderType
	}
}

// WithPrice 设置订单价格
func WithPrice(price string) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.Price = &price
	}
}

// WithClientOrderID 设置客户端订单ID
func WithClientOrderID(clientOrderID string) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.ClientOrderID = &clientOrderID
	}
}

// WithTimeInForce 设置订单有效期
func WithTimeInForce(timeInForce TimeInForce) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.TimeInForce = &timeInForce
	}
}

// WithPostOnly 设置只做 maker
func WithPostOnly(postOnly bool) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.PostOnly = &postOnly
	}
}

// WithHedgeMode 覆盖本次下单的持仓模式
func WithHedgeMode(hedgeMode bool) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.HedgeMode = &hedgeMode
	}
}

// WithMarginType 设置合约下单的保证金模式
func WithMarginType(marginType MarginType) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		opts.MarginType = &marginType
	}
}

// WithParams 设置透传参数，多次调用会合并
func WithParams(params map[string]interface{}) ArgsOption {
	return func(opts *ExchangeArgsOptions) {
		if opts.Params == nil {
			opts.Params = make(map[string]interface{}, len(params))
		}
		for k, v := range params {
			opts.Params[k] = v
		}
	}
}
