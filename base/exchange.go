// Package base 提供各交易所共用的市场缓存
package base

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/model"
)

// Loader 从交易所拉取市场列表
type Loader func(ctx context.Context) (model.Markets, error)

// MarketCache 市场信息缓存，按统一交易对和交易所原始ID双索引
//
// 首次访问时懒加载；Load 可被并发调用，同一时刻只有一个请求在拉取。
type MarketCache struct {
	loader Loader

	loadM    sync.Mutex
	mu       sync.RWMutex
	bySymbol map[string]*model.Market
	byID     map[string]*model.Market
}

// NewMarketCache 创建市场缓存
func NewMarketCache(loader Loader) *MarketCache {
	return &MarketCache{
		loader:   loader,
		bySymbol: make(map[string]*model.Market),
		byID:     make(map[string]*model.Market),
	}
}

// Loaded 是否已加载
func (c *MarketCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySymbol) > 0
}

// Load 加载市场信息，reload 为 false 且已加载时直接返回
func (c *MarketCache) Load(ctx context.Context, reload bool) error {
	if !reload && c.Loaded() {
		return nil
	}

	c.loadM.Lock()
	defer c.loadM.Unlock()
	if !reload && c.Loaded() {
		return nil
	}

	markets, err := c.loader(ctx)
	if err != nil {
		return fmt.Errorf("load markets: %w", err)
	}
	c.Set(markets)
	return nil
}

// Set 替换缓存内容
func (c *MarketCache) Set(markets model.Markets) {
	bySymbol := make(map[string]*model.Market, len(markets))
	byID := make(map[string]*model.Market, len(markets))
	for _, m := range markets {
		bySymbol[m.Symbol] = m
		byID[m.ID] = m
	}

	c.mu.Lock()
	c.bySymbol, c.byID = bySymbol, byID
	c.mu.Unlock()
}

// Market 按统一交易对查找，首次调用会懒加载
func (c *MarketCache) Market(ctx context.Context, symbol string) (*model.Market, error) {
	if err := c.Load(ctx, false); err != nil {
		return nil, err
	}
	return c.Get(symbol)
}

// Get 按统一交易对查找，不触发加载
func (c *MarketCache) Get(symbol string) (*model.Market, error) {
	c.mu.RLock()
	m, ok := c.bySymbol[symbol]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrMarketNotFound, symbol)
	}
	return m, nil
}

// ByID 按交易所原始ID查找
func (c *MarketCache) ByID(id string) (*model.Market, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	return m, ok
}

// SymbolOf 原始ID转统一交易对，未知ID原样返回
func (c *MarketCache) SymbolOf(id string) string {
	if m, ok := c.ByID(id); ok {
		return m.Symbol
	}
	return id
}

// All 返回全部市场，按交易对排序
func (c *MarketCache) All() (model.Markets, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.bySymbol) == 0 {
		return nil, fmt.Errorf("%w: markets not loaded", errs.ErrMarketNotFound)
	}
	out := make(model.Markets, 0, len(c.bySymbol))
	for _, m := range c.bySymbol {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}
