package okx

import (
	"strings"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/model"
	"github.com/shopspring/decimal"
)

const (
	instTypeSpot = "SPOT"
	instTypeSwap = "SWAP"
)

// parseMarket 转换 instruments 接口返回的产品信息
func parseMarket(inst okxInstrument) *model.Market {
	m := &model.Market{
		ID:     inst.InstID,
		Active: inst.State == "live",
		Precision: model.Precision{
			Amount:     model.PrecisionFromStep(inst.LotSz.Decimal),
			Price:      model.PrecisionFromStep(inst.TickSz.Decimal),
			AmountStep: inst.LotSz.Decimal,
			PriceStep:  inst.TickSz.Decimal,
		},
		Limits: model.Limits{
			Amount: model.MinMax{Min: inst.MinSz.Decimal, Max: inst.MaxLmtSz.Decimal},
		},
	}

	if inst.InstType == instTypeSwap {
		base, quote := splitUly(inst.Uly)
		m.Base, m.Quote, m.Settle = base, quote, inst.SettleCcy
		m.Symbol = common.NormalizeContractSymbol(base, quote, inst.SettleCcy)
		m.Type = model.MarketTypeSwap
		m.Contract = true
		m.Linear = inst.CtType == "linear"
		m.Inverse = inst.CtType == "inverse"
		m.ContractSize = inst.CtVal.Decimal
		m.Limits.Leverage = model.MinMax{Min: decimal.NewFromInt(1), Max: inst.Lever.Decimal}
		return m
	}

	m.Base, m.Quote = inst.BaseCcy, inst.QuoteCcy
	m.Symbol = common.NormalizeSymbol(inst.BaseCcy, inst.QuoteCcy)
	m.Type = model.MarketTypeSpot
	m.ContractSize = decimal.NewFromInt(1)
	return m
}

// splitUly BTC-USDT -> BTC, USDT
func splitUly(uly string) (string, string) {
	parts := strings.SplitN(uly, "-", 2)
	if len(parts) != 2 {
		return uly, ""
	}
	return parts[0], parts[1]
}

func parseTicker(t *okxTicker, market *model.Market) *model.Ticker {
	ticker := &model.Ticker{
		Symbol:      market.Symbol,
		Timestamp:   t.Ts.Time,
		Bid:         t.BidPx.Decimal,
		BidVolume:   market.ContractsToAmount(t.BidSz.Decimal),
		Ask:         t.AskPx.Decimal,
		AskVolume:   market.ContractsToAmount(t.AskSz.Decimal),
		Last:        t.Last.Decimal,
		Open:        t.Open24h.Decimal,
		High:        t.High24h.Decimal,
		Low:         t.Low24h.Decimal,
		BaseVolume:  t.Vol24h.Decimal,
		QuoteVolume: t.VolCcy24h.Decimal,
	}
	if market.Contract {
		// 合约 vol24h 为张数，volCcy24h 为基础货币
		ticker.BaseVolume = t.VolCcy24h.Decimal
		ticker.QuoteVolume = t.VolCcy24h.Mul(t.Last.Decimal)
	}
	ticker.FillDerived()
	return ticker
}

func parseOrder(o *okxOrder, market *model.Market) *model.Order {
	order := &model.Order{
		ID:            o.OrdID,
		ClientOrderID: o.ClOrdID,
		Symbol:        market.Symbol,
		Type:          model.OrderTypeLimit,
		Side:          model.OrderSide(o.Side),
		ReduceOnly:    o.ReduceOnly == "true",
		Price:         o.Px.Decimal,
		Average:       o.AvgPx.Decimal,
		Amount:        market.ContractsToAmount(o.Sz.Decimal),
		Filled:        market.ContractsToAmount(o.AccFillSz.Decimal),
		Status:        parseOrderStatus(o.State),
		Timestamp:     o.CTime.Time,
		LastUpdated:   o.UTime.Time,
	}

	switch o.OrdType {
	case "market":
		order.Type = model.OrderTypeMarket
	case "ioc", "optimal_limit_ioc":
		order.TimeInForce = "IOC"
	case "fok":
		order.TimeInForce = "FOK"
	case "post_only":
		order.TimeInForce = "PO"
	default:
		order.TimeInForce = "GTC"
	}

	switch o.PosSide {
	case "long":
		order.PositionSide = model.PositionSideLong
	case "short":
		order.PositionSide = model.PositionSideShort
	}

	if !o.Fee.IsZero() {
		order.Fee = &model.Fee{Currency: o.FeeCcy, Cost: o.Fee.Neg()}
	}
	order.FillDerived()
	return order
}

func parseOrderStatus(state string) model.OrderStatus {
	switch state {
	case "live", "partially_filled":
		return model.OrderStatusOpen
	case "filled":
		return model.OrderStatusClosed
	case "canceled", "mmp_canceled":
		return model.OrderStatusCanceled
	}
	return model.OrderStatus(state)
}
