package gate

import (
	"strconv"
	"strings"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/model"
	"github.com/shopspring/decimal"
)

// settleUSDT 仅支持 USDT 结算的永续合约
const settleUSDT = "usdt"

// splitPair BTC_USDT -> BTC, USDT
func splitPair(id string) (string, string) {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		return id, ""
	}
	return parts[0], parts[1]
}

func parseSpotMarket(p gateCurrencyPair) *model.Market {
	amountStep := model.PrecisionFromDigits(p.AmountPrecision)
	priceStep := model.PrecisionFromDigits(p.Precision)
	return &model.Market{
		ID:           p.ID,
		Symbol:       common.NormalizeSymbol(p.Base, p.Quote),
		Base:         p.Base,
		Quote:        p.Quote,
		Type:         model.MarketTypeSpot,
		Active:       p.TradeStatus == "tradable",
		ContractSize: decimal.NewFromInt(1),
		Precision: model.Precision{
			Amount:     p.AmountPrecision,
			Price:      p.Precision,
			AmountStep: amountStep,
			PriceStep:  priceStep,
		},
		Limits: model.Limits{
			Amount: model.MinMax{Min: p.MinBaseAmount.Decimal, Max: p.MaxBaseAmount.Decimal},
			Cost:   model.MinMax{Min: p.MinQuoteAmount.Decimal, Max: p.MaxQuoteAmount.Decimal},
		},
	}
}

// parseContract 合约下单数量为整数张，Amount 精度与限制均以张计
func parseContract(c gateContract) *model.Market {
	base, quote := splitPair(c.Name)
	settle := strings.ToUpper(settleUSDT)
	return &model.Market{
		ID:           c.Name,
		Symbol:       common.NormalizeContractSymbol(base, quote, settle),
		Base:         base,
		Quote:        quote,
		Settle:       settle,
		Type:         model.MarketTypeSwap,
		Active:       !c.InDelisting,
		Contract:     true,
		Linear:       c.Type == "direct",
		Inverse:      c.Type == "inverse",
		ContractSize: c.QuantoMultiplier.Decimal,
		Precision: model.Precision{
			Amount:     0,
			Price:      model.PrecisionFromStep(c.OrderPriceRound.Decimal),
			AmountStep: decimal.NewFromInt(1),
			PriceStep:  c.OrderPriceRound.Decimal,
		},
		Limits: model.Limits{
			Amount:   model.MinMax{Min: decimal.NewFromInt(c.OrderSizeMin), Max: decimal.NewFromInt(c.OrderSizeMax)},
			Leverage: model.MinMax{Min: c.LeverageMin.Decimal, Max: c.LeverageMax.Decimal},
		},
	}
}

func parseSpotTicker(t *gateSpotTicker, symbol string) *model.Ticker {
	ticker := &model.Ticker{
		Symbol:      symbol,
		Timestamp:   common.Now(),
		Bid:         t.HighestBid.Decimal,
		BidVolume:   t.HighestSize.Decimal,
		Ask:         t.LowestAsk.Decimal,
		AskVolume:   t.LowestSize.Decimal,
		Last:        t.Last.Decimal,
		High:        t.High24h.Decimal,
		Low:         t.Low24h.Decimal,
		Percentage:  t.ChangePercentage.Decimal,
		BaseVolume:  t.BaseVolume.Decimal,
		QuoteVolume: t.QuoteVolume.Decimal,
	}
	fillOpen(ticker)
	ticker.FillDerived()
	return ticker
}

func parseFuturesTicker(t *gateFuturesTicker, market *model.Market) *model.Ticker {
	ticker := &model.Ticker{
		Symbol:      market.Symbol,
		Timestamp:   common.Now(),
		Bid:         t.HighestBid.Decimal,
		BidVolume:   market.ContractsToAmount(t.HighestSize.Decimal),
		Ask:         t.LowestAsk.Decimal,
		AskVolume:   market.ContractsToAmount(t.LowestSize.Decimal),
		Last:        t.Last.Decimal,
		High:        t.High24h.Decimal,
		Low:         t.Low24h.Decimal,
		Percentage:  t.ChangePercentage.Decimal,
		BaseVolume:  t.Volume24hBase.Decimal,
		QuoteVolume: t.Volume24hQuote.Decimal,
	}
	fillOpen(ticker)
	ticker.FillDerived()
	return ticker
}

// fillOpen Gate 行情不返回开盘价，由最新价和涨跌幅反推
func fillOpen(t *model.Ticker) {
	if !t.Last.IsPositive() || t.Percentage.IsZero() {
		return
	}
	ratio := decimal.NewFromInt(1).Add(t.Percentage.Div(decimal.NewFromInt(100)))
	if !ratio.IsPositive() {
		return
	}
	t.Open = t.Last.Div(ratio).Round(int32(model.PrecisionFromStep(t.Last) + 2))
	t.Change = t.Last.Sub(t.Open)
}

func parseSpotOrder(o *gateSpotOrder, symbol string) *model.Order {
	order := &model.Order{
		ID:            o.ID,
		ClientOrderID: o.Text,
		Symbol:        symbol,
		Type:          model.OrderType(o.Type),
		Side:          model.OrderSide(o.Side),
		TimeInForce:   strings.ToUpper(o.TimeInForce),
		Price:         o.Price.Decimal,
		Average:       o.AvgDealPrice.Decimal,
		Amount:        o.Amount.Decimal,
		Filled:        o.FilledAmount.Decimal,
		Cost:          o.FilledTotal.Decimal,
		Status:        parseSpotOrderStatus(o.Status),
		Timestamp:     o.CreateTimeMs.Time,
		LastUpdated:   o.UpdateTimeMs.Time,
	}
	if order.TimeInForce == "POC" {
		order.TimeInForce = "PO"
	}
	if o.Type == "market" && o.Side == "buy" {
		// 市价买单 amount 为计价货币金额
		order.Amount = o.FilledAmount.Decimal
	} else {
		order.Remaining = o.Left.Decimal
	}
	if !o.Fee.IsZero() {
		order.Fee = &model.Fee{Currency: o.FeeCurrency, Cost: o.Fee.Decimal}
	}
	order.FillDerived()
	return order
}

func parseSpotOrderStatus(status string) model.OrderStatus {
	switch status {
	case "open":
		return model.OrderStatusOpen
	case "closed":
		return model.OrderStatusClosed
	case "cancelled":
		return model.OrderStatusCanceled
	}
	return model.OrderStatus(status)
}

// parseFuturesOrder size 为带符号的张数，正数买入，负数卖出
func parseFuturesOrder(o *gateFuturesOrder, market *model.Market) *model.Order {
	size := decimal.NewFromInt(o.Size).Abs()
	left := decimal.NewFromInt(o.Left).Abs()
	order := &model.Order{
		ID:            strconv.FormatInt(o.ID, 10),
		ClientOrderID: o.Text,
		Symbol:        market.Symbol,
		Type:          model.OrderTypeLimit,
		Side:          model.OrderSideBuy,
		ReduceOnly:    o.IsReduceOnly,
		TimeInForce:   strings.ToUpper(o.Tif),
		Price:         o.Price.Decimal,
		Average:       o.FillPrice.Decimal,
		Amount:        market.ContractsToAmount(size),
		Filled:        market.ContractsToAmount(size.Sub(left)),
		Remaining:     market.ContractsToAmount(left),
		Status:        parseFuturesOrderStatus(o.Status, o.FinishAs),
		Timestamp:     o.CreateTime.Time,
		LastUpdated:   o.FinishTime.Time,
	}
	if o.Size < 0 {
		order.Side = model.OrderSideSell
	}
	if o.Price.IsZero() {
		order.Type = model.OrderTypeMarket
	}
	if order.TimeInForce == "POC" {
		order.TimeInForce = "PO"
	}
	order.FillDerived()
	return order
}

func parseFuturesOrderStatus(status, finishAs string) model.OrderStatus {
	if status == "open" {
		return model.OrderStatusOpen
	}
	switch finishAs {
	case "filled":
		return model.OrderStatusClosed
	case "":
		return model.OrderStatus(status)
	}
	return model.OrderStatusCanceled
}
