// Package ccxt 统一的加密货币交易所接入
//
// 通过 NewExchange 按名称创建交易所实例，现货与永续合约分别由
// Spot() 和 Perp() 提供：
//
//	ex, err := ccxt.NewExchange(ccxt.ExchangeBinance,
//		option.WithAPIKey("..."),
//		option.WithSecretKey("..."),
//	)
//	ticker, err := ex.Spot().FetchTicker(ctx, "BTC/USDT")
package ccxt

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lemconn/ccxt/binance"
	"github.com/lemconn/ccxt/bybit"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/gate"
	"github.com/lemconn/ccxt/okx"
	"github.com/lemconn/ccxt/option"
)

// 交易所名称常量
const (
	ExchangeBinance = "binance" // Binance 交易所
	ExchangeBybit   = "bybit"   // Bybit 交易所
	ExchangeOKX     = "okx"     // OKX 交易所
	ExchangeGate    = "gate"    // Gate 交易所
)

// Factory 交易所工厂函数
type Factory func(opts *option.ExchangeOptions) (exchange.Exchange, error)

// Registry 交易所注册表
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register 注册交易所，同名覆盖
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// NewExchange 按名称创建交易所实例
func (r *Registry) NewExchange(name string, opts ...option.Option) (exchange.Exchange, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrExchangeNotSupported, name)
	}

	ex, err := factory(option.NewExchangeOptions(opts...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return ex, nil
}

// Supported 已注册的交易所，按名称排序
func (r *Registry) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupported 是否已注册
func (r *Registry) IsSupported(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

var globalRegistry = NewRegistry()

func init() {
	Register(ExchangeBinance, binance.NewBinance)
	Register(ExchangeBybit, bybit.NewBybit)
	Register(ExchangeOKX, okx.NewOKX)
	Register(ExchangeGate, gate.NewGate)
}

// Register 向全局注册表注册交易所
func Register(name string, factory Factory) {
	globalRegistry.Register(name, factory)
}

// NewExchange 创建交易所实例
func NewExchange(name string, opts ...option.Option) (exchange.Exchange, error) {
	return globalRegistry.NewExchange(name, opts...)
}

// SupportedExchanges 获取支持的交易所列表
func SupportedExchanges() []string {
	return globalRegistry.Supported()
}

// IsExchangeSupported 检查交易所是否支持
func IsExchangeSupported(name string) bool {
	return globalRegistry.IsSupported(name)
}
