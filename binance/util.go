package binance

import (
	"strconv"
	"strings"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/model"
	"github.com/shopspring/decimal"
)

// parseMarket 将 exchangeInfo 中的交易对转换为统一市场
func parseMarket(s binanceSymbol, contract bool) *model.Market {
	m := &model.Market{
		ID:           s.Symbol,
		Base:         s.BaseAsset,
		Quote:        s.QuoteAsset,
		Active:       s.Status == "TRADING",
		ContractSize: decimal.NewFromInt(1),
	}
	if contract {
		settle := s.MarginAsset
		if settle == "" {
			settle = s.QuoteAsset
		}
		m.Symbol = common.NormalizeContractSymbol(s.BaseAsset, s.QuoteAsset, settle)
		m.Settle = settle
		m.Type = model.MarketTypeSwap
		m.Contract = true
		m.Linear = true
	} else {
		m.Symbol = common.NormalizeSymbol(s.BaseAsset, s.QuoteAsset)
		m.Type = model.MarketTypeSpot
	}

	for _, f := range s.Filters {
		switch f.FilterType {
		case "PRICE_FILTER":
			m.Precision.PriceStep = f.TickSize.Decimal
			m.Precision.Price = model.PrecisionFromStep(f.TickSize.Decimal)
			m.Limits.Price = model.MinMax{Min: f.MinPrice.Decimal, Max: f.MaxPrice.Decimal}
		case "LOT_SIZE":
			m.Precision.AmountStep = f.StepSize.Decimal
			m.Precision.Amount = model.PrecisionFromStep(f.StepSize.Decimal)
			m.Limits.Amount = model.MinMax{Min: f.MinQty.Decimal, Max: f.MaxQty.Decimal}
		case "MIN_NOTIONAL", "NOTIONAL":
			minCost := f.MinNotional.Decimal
			if minCost.IsZero() {
				minCost = f.Notional.Decimal
			}
			m.Limits.Cost = model.MinMax{Min: minCost, Max: f.MaxNotional.Decimal}
		}
	}
	return m
}

func parseTicker(t *binanceTicker, symbol string) *model.Ticker {
	ticker := &model.Ticker{
		Symbol:      symbol,
		Timestamp:   t.CloseTime.Time,
		Bid:         t.BidPrice.Decimal,
		BidVolume:   t.BidQty.Decimal,
		Ask:         t.AskPrice.Decimal,
		AskVolume:   t.AskQty.Decimal,
		Last:        t.LastPrice.Decimal,
		Open:        t.OpenPrice.Decimal,
		High:        t.HighPrice.Decimal,
		Low:         t.LowPrice.Decimal,
		Change:      t.PriceChange.Decimal,
		Percentage:  t.PriceChangePercent.Decimal,
		BaseVolume:  t.Volume.Decimal,
		QuoteVolume: t.QuoteVolume.Decimal,
	}
	ticker.FillDerived()
	return ticker
}

func parseTrade(t binanceTrade, symbol string) *model.Trade {
	side := model.OrderSideBuy
	if t.IsBuyerMaker {
		side = model.OrderSideSell
	}
	cost := t.QuoteQty.Decimal
	if cost.IsZero() {
		cost = t.Price.Mul(t.Qty.Decimal)
	}
	return &model.Trade{
		ID:        strconv.FormatInt(t.ID, 10),
		Symbol:    symbol,
		Side:      side,
		Price:     t.Price.Decimal,
		Amount:    t.Qty.Decimal,
		Cost:      cost,
		Timestamp: t.Time.Time,
	}
}

func parseOrder(o *binanceOrder, symbol string) *model.Order {
	order := &model.Order{
		ID:            strconv.FormatInt(o.OrderID, 10),
		ClientOrderID: o.ClientOrderID,
		Symbol:        symbol,
		Type:          parseOrderType(o.Type),
		Side:          model.OrderSide(strings.ToLower(o.Side)),
		ReduceOnly:    o.ReduceOnly,
		TimeInForce:   o.TimeInForce,
		Price:         o.Price.Decimal,
		Average:       o.AvgPrice.Decimal,
		Amount:        o.OrigQty.Decimal,
		Filled:        o.ExecutedQty.Decimal,
		Cost:          o.CummulativeQuoteQty.Decimal,
		Status:        parseOrderStatus(o.Status),
		Timestamp:     o.Time.Time,
		LastUpdated:   o.UpdateTime.Time,
	}
	if order.Cost.IsZero() {
		order.Cost = o.CumQuote.Decimal
	}
	if order.Timestamp.IsZero() {
		order.Timestamp = o.TransactTime.Time
	}
	switch o.PositionSide {
	case "LONG":
		order.PositionSide = model.PositionSideLong
	case "SHORT":
		order.PositionSide = model.PositionSideShort
	}
	order.FillDerived()
	return order
}

func parseOrderType(t string) model.OrderType {
	if strings.Contains(t, "MARKET") {
		return model.OrderTypeMarket
	}
	return model.OrderTypeLimit
}

func parseOrderStatus(status string) model.OrderStatus {
	switch status {
	case "NEW", "PARTIALLY_FILLED", "PENDING_CANCEL", "PENDING_NEW":
		return model.OrderStatusOpen
	case "FILLED":
		return model.OrderStatusClosed
	case "CANCELED":
		return model.OrderStatusCanceled
	case "REJECTED":
		return model.OrderStatusRejected
	case "EXPIRED", "EXPIRED_IN_MATCH":
		return model.OrderStatusExpired
	}
	return model.OrderStatus(strings.ToLower(status))
}
