package gate

import (
	"encoding/json"
	"fmt"

	"github.com/lemconn/ccxt/types"
)

// ========== 现货 ==========

type gateCurrencyPair struct {
	ID              string          `json:"id"`
	Base            string          `json:"base"`
	Quote           string          `json:"quote"`
	MinBaseAmount   types.ExDecimal `json:"min_base_amount"`
	MaxBaseAmount   types.ExDecimal `json:"max_base_amount"`
	MinQuoteAmount  types.ExDecimal `json:"min_quote_amount"`
	MaxQuoteAmount  types.ExDecimal `json:"max_quote_amount"`
	AmountPrecision int             `json:"amount_precision"`
	Precision       int             `json:"precision"`
	TradeStatus     string          `json:"trade_status"`
}

type gateSpotTicker struct {
	CurrencyPair     string          `json:"currency_pair"`
	Last             types.ExDecimal `json:"last"`
	LowestAsk        types.ExDecimal `json:"lowest_ask"`
	LowestSize       types.ExDecimal `json:"lowest_size"`
	HighestBid       types.ExDecimal `json:"highest_bid"`
	HighestSize      types.ExDecimal `json:"highest_size"`
	ChangePercentage types.ExDecimal `json:"change_percentage"`
	BaseVolume       types.ExDecimal `json:"base_volume"`
	QuoteVolume      types.ExDecimal `json:"quote_volume"`
	High24h          types.ExDecimal `json:"high_24h"`
	Low24h           types.ExDecimal `json:"low_24h"`
}

type gateSpotOrderBook struct {
	Current types.ExTimestamp `json:"current"`
	Asks    [][]string        `json:"asks"`
	Bids    [][]string        `json:"bids"`
}

// gateSpotCandle [时间(秒), 计价货币成交额, 收, 高, 低, 开, 基础货币成交量, 是否完结]
type gateSpotCandle struct {
	Time   types.ExTimestamp
	Close  types.ExDecimal
	High   types.ExDecimal
	Low    types.ExDecimal
	Open   types.ExDecimal
	Volume types.ExDecimal
}

// UnmarshalJSON 解析数组格式
func (c *gateSpotCandle) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) < 7 {
		return fmt.Errorf("invalid candlestick array length: %d", len(arr))
	}
	if err := c.Time.UnmarshalJSON([]byte(arr[0])); err != nil {
		return fmt.Errorf("parse time: %w", err)
	}
	c.Close = types.NewExDecimal(arr[2])
	c.High = types.NewExDecimal(arr[3])
	c.Low = types.NewExDecimal(arr[4])
	c.Open = types.NewExDecimal(arr[5])
	c.Volume = types.NewExDecimal(arr[6])
	return nil
}

type gateSpotTrade struct {
	ID         string            `json:"id"`
	CreateTime types.ExTimestamp `json:"create_time"`
	Side       string            `json:"side"`
	Amount     types.ExDecimal   `json:"amount"`
	Price      types.ExDecimal   `json:"price"`
}

type gateSpotAccount struct {
	Currency  string          `json:"currency"`
	Available types.ExDecimal `json:"available"`
	Locked    types.ExDecimal `json:"locked"`
}

type gateSpotOrder struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	CreateTimeMs types.ExTimestamp `json:"create_time_ms"`
	UpdateTimeMs types.ExTimestamp `json:"update_time_ms"`
	Status       string            `json:"status"` // open / closed / cancelled
	CurrencyPair string            `json:"currency_pair"`
	Type         string            `json:"type"`
	Side         string            `json:"side"`
	Amount       types.ExDecimal   `json:"amount"` // 市价买单为计价货币金额
	Price        types.ExDecimal   `json:"price"`
	TimeInForce  string            `json:"time_in_force"`
	Left         types.ExDecimal   `json:"left"`
	FilledAmount types.ExDecimal   `json:"filled_amount"`
	FilledTotal  types.ExDecimal   `json:"filled_total"`
	AvgDealPrice types.ExDecimal   `json:"avg_deal_price"`
	Fee          types.ExDecimal   `json:"fee"`
	FeeCurrency  string            `json:"fee_currency"`
}

type gateOpenOrders struct {
	CurrencyPair string          `json:"currency_pair"`
	Orders       []gateSpotOrder `json:"orders"`
}

// ========== 永续合约 ==========

type gateContract struct {
	Name             string            `json:"name"`
	Type             string            `json:"type"` // direct 为 U 本位
	QuantoMultiplier types.ExDecimal   `json:"quanto_multiplier"`
	OrderPriceRound  types.ExDecimal   `json:"order_price_round"`
	OrderSizeMin     int64             `json:"order_size_min"`
	OrderSizeMax     int64             `json:"order_size_max"`
	LeverageMin      types.ExDecimal   `json:"leverage_min"`
	LeverageMax      types.ExDecimal   `json:"leverage_max"`
	InDelisting      bool              `json:"in_delisting"`
	MarkPrice        types.ExDecimal   `json:"mark_price"`
	IndexPrice       types.ExDecimal   `json:"index_price"`
	FundingRate      types.ExDecimal   `json:"funding_rate"`
	FundingNextApply types.ExTimestamp `json:"funding_next_apply"`
}

type gateFuturesTicker struct {
	Contract         string          `json:"contract"`
	Last             types.ExDecimal `json:"last"`
	ChangePercentage types.ExDecimal `json:"change_percentage"`
	High24h          types.ExDecimal `json:"high_24h"`
	Low24h           types.ExDecimal `json:"low_24h"`
	Volume24hBase    types.ExDecimal `json:"volume_24h_base"`
	Volume24hQuote   types.ExDecimal `json:"volume_24h_quote"`
	HighestBid       types.ExDecimal `json:"highest_bid"`
	HighestSize      types.ExDecimal `json:"highest_size"` // 张
	LowestAsk        types.ExDecimal `json:"lowest_ask"`
	LowestSize       types.ExDecimal `json:"lowest_size"` // 张
}

type gateFuturesLevel struct {
	Price types.ExDecimal `json:"p"`
	Size  types.ExDecimal `json:"s"`
}

type gateFuturesOrderBook struct {
	Current types.ExTimestamp  `json:"current"`
	Asks    []gateFuturesLevel `json:"asks"`
	Bids    []gateFuturesLevel `json:"bids"`
}

type gateFuturesCandle struct {
	T     types.ExTimestamp `json:"t"`
	V     types.ExDecimal   `json:"v"` // 张
	Open  types.ExDecimal   `json:"o"`
	High  types.ExDecimal   `json:"h"`
	Low   types.ExDecimal   `json:"l"`
	Close types.ExDecimal   `json:"c"`
}

type gateFuturesTrade struct {
	ID         int64             `json:"id"`
	CreateTime types.ExTimestamp `json:"create_time"`
	Size       int64             `json:"size"` // 负数为卖出
	Price      types.ExDecimal   `json:"price"`
}

type gateFuturesAccount struct {
	Currency       string          `json:"currency"`
	Total          types.ExDecimal `json:"total"`
	Available      types.ExDecimal `json:"available"`
	OrderMargin    types.ExDecimal `json:"order_margin"`
	PositionMargin types.ExDecimal `json:"position_margin"`
}

type gatePosition struct {
	Contract           string            `json:"contract"`
	Size               int64             `json:"size"`
	Leverage           types.ExDecimal   `json:"leverage"` // 0 表示全仓
	CrossLeverageLimit types.ExDecimal   `json:"cross_leverage_limit"`
	EntryPrice         types.ExDecimal   `json:"entry_price"`
	MarkPrice          types.ExDecimal   `json:"mark_price"`
	LiqPrice           types.ExDecimal   `json:"liq_price"`
	UnrealisedPnl      types.ExDecimal   `json:"unrealised_pnl"`
	Mode               string            `json:"mode"` // single / dual_long / dual_short
	UpdateTime         types.ExTimestamp `json:"update_time"`
}

type gateFuturesOrder struct {
	ID           int64             `json:"id"`
	Text         string            `json:"text"`
	Contract     string            `json:"contract"`
	Size         int64             `json:"size"`
	Left         int64             `json:"left"`
	Price        types.ExDecimal   `json:"price"`
	FillPrice    types.ExDecimal   `json:"fill_price"`
	Tif          string            `json:"tif"`
	IsReduceOnly bool              `json:"is_reduce_only"`
	Status       string            `json:"status"`    // open / finished
	FinishAs     string            `json:"finish_as"` // filled / cancelled / ioc ...
	CreateTime   types.ExTimestamp `json:"create_time"`
	FinishTime   types.ExTimestamp `json:"finish_time"`
}
