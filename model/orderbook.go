package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OrderBookLevel 订单簿档位
type OrderBookLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// OrderBook 订单簿，Bids 价格降序，Asks 价格升序
type OrderBook struct {
	Symbol    string           `json:"symbol"`
	Timestamp time.Time        `json:"timestamp"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
}

// Sort 整理档位顺序
func (ob *OrderBook) Sort() {
	sort.SliceStable(ob.Bids, func(i, j int) bool { return ob.Bids[i].Price.GreaterThan(ob.Bids[j].Price) })
	sort.SliceStable(ob.Asks, func(i, j int) bool { return ob.Asks[i].Price.LessThan(ob.Asks[j].Price) })
}

// BestBid 最优买价，无买单时 ok 为 false
func (ob *OrderBook) BestBid() (OrderBookLevel, bool) {
	if len(ob.Bids) == 0 {
		return OrderBookLevel{}, false
	}
	return ob.Bids[0], true
}

// BestAsk 最优卖价，无卖单时 ok 为 false
func (ob *OrderBook) BestAsk() (OrderBookLevel, bool) {
	if len(ob.Asks) == 0 {
		return OrderBookLevel{}, false
	}
	return ob.Asks[0], true
}

// ParseLevels 解析 [["price","amount",...], ...] 格式的档位
func ParseLevels(raw [][]string) []OrderBookLevel {
	levels := make([]OrderBookLevel, 0, len(raw))
	for _, lv := range raw {
		if len(lv) < 2 {
			continue
		}
		price, err1 := decimal.NewFromString(lv[0])
		amount, err2 := decimal.NewFromString(lv[1])
		if err1 != nil || err2 != nil {
			continue
		}
		levels = append(levels, OrderBookLevel{Price: price, Amount: amount})
	}
	return levels
}
