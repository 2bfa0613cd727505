package bybit

import (
	"time"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/model"
	"github.com/shopspring/decimal"
)

const (
	categorySpot   = "spot"
	categoryLinear = "linear"
)

var hundred = decimal.NewFromInt(100)

func parseMarket(inst bybitInstrument, category string) *model.Market {
	m := &model.Market{
		ID:           inst.Symbol,
		Base:         inst.BaseCoin,
		Quote:        inst.QuoteCoin,
		Active:       inst.Status == "Trading",
		ContractSize: decimal.NewFromInt(1),
		Limits: model.Limits{
			Amount: model.MinMax{Min: inst.LotSizeFilter.MinOrderQty.Decimal, Max: inst.LotSizeFilter.MaxOrderQty.Decimal},
			Price:  model.MinMax{Min: inst.PriceFilter.MinPrice.Decimal, Max: inst.PriceFilter.MaxPrice.Decimal},
		},
	}

	amountStep := inst.LotSizeFilter.BasePrecision.Decimal
	if category == categoryLinear {
		m.Settle = inst.SettleCoin
		m.Symbol = common.NormalizeContractSymbol(inst.BaseCoin, inst.QuoteCoin, inst.SettleCoin)
		m.Type = model.MarketTypeSwap
		m.Contract = true
		m.Linear = true
		m.Limits.Cost.Min = inst.LotSizeFilter.MinNotionalValue.Decimal
		m.Limits.Leverage = model.MinMax{Min: inst.LeverageFilter.MinLeverage.Decimal, Max: inst.LeverageFilter.MaxLeverage.Decimal}
		amountStep = inst.LotSizeFilter.QtyStep.Decimal
	} else {
		m.Symbol = common.NormalizeSymbol(inst.BaseCoin, inst.QuoteCoin)
		m.Type = model.MarketTypeSpot
		m.Limits.Cost.Min = inst.LotSizeFilter.MinOrderAmt.Decimal
	}

	m.Precision = model.Precision{
		Amount:     model.PrecisionFromStep(amountStep),
		Price:      model.PrecisionFromStep(inst.PriceFilter.TickSize.Decimal),
		AmountStep: amountStep,
		PriceStep:  inst.PriceFilter.TickSize.Decimal,
	}
	return m
}

// parseTicker ts 取响应包的 time 字段
func parseTicker(t *bybitTicker, symbol string, ts time.Time) *model.Ticker {
	ticker := &model.Ticker{
		Symbol:      symbol,
		Timestamp:   ts,
		Bid:         t.Bid1Price.Decimal,
		BidVolume:   t.Bid1Size.Decimal,
		Ask:         t.Ask1Price.Decimal,
		AskVolume:   t.Ask1Size.Decimal,
		Last:        t.LastPrice.Decimal,
		Open:        t.PrevPrice24h.Decimal,
		High:        t.HighPrice24h.Decimal,
		Low:         t.LowPrice24h.Decimal,
		Percentage:  t.Price24hPcnt.Mul(hundred),
		BaseVolume:  t.Volume24h.Decimal,
		QuoteVolume: t.Turnover24h.Decimal,
	}
	ticker.FillDerived()
	return ticker
}

func parseOrder(o *bybitOrder, symbol string) *model.Order {
	order := &model.Order{
		ID:            o.OrderID,
		ClientOrderID: o.OrderLinkID,
		Symbol:        symbol,
		Type:          model.OrderTypeLimit,
		Side:          parseSide(o.Side),
		ReduceOnly:    o.ReduceOnly,
		TimeInForce:   o.TimeInForce,
		Price:         o.Price.Decimal,
		Average:       o.AvgPrice.Decimal,
		Amount:        o.Qty.Decimal,
		Filled:        o.CumExecQty.Decimal,
		Cost:          o.CumExecValue.Decimal,
		Status:        parseOrderStatus(o.OrderStatus),
		Timestamp:     o.CreatedTime.Time,
		LastUpdated:   o.UpdatedTime.Time,
	}
	if o.OrderType == "Market" {
		order.Type = model.OrderTypeMarket
	}
	if o.TimeInForce == "PostOnly" {
		order.TimeInForce = "PO"
	}

	switch o.PositionIdx {
	case 1:
		order.PositionSide = model.PositionSideLong
	case 2:
		order.PositionSide = model.PositionSideShort
	}

	if !o.CumExecFee.IsZero() {
		order.Fee = &model.Fee{Cost: o.CumExecFee.Decimal}
	}
	order.FillDerived()
	return order
}

func parseSide(side string) model.OrderSide {
	if side == "Sell" {
		return model.OrderSideSell
	}
	return model.OrderSideBuy
}

func parseOrderStatus(status string) model.OrderStatus {
	switch status {
	case "New", "PartiallyFilled", "Untriggered", "Created":
		return model.OrderStatusOpen
	case "Filled":
		return model.OrderStatusClosed
	case "Cancelled", "PartiallyFilledCanceled", "Deactivated":
		return model.OrderStatusCanceled
	case "Rejected":
		return model.OrderStatusRejected
	}
	return model.OrderStatus(status)
}
