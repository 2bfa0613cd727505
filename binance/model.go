package binance

import (
	"encoding/json"
	"fmt"

	"github.com/lemconn/ccxt/types"
)

// binanceExchangeInfo 现货与合约 exchangeInfo 共用
type binanceExchangeInfo struct {
	Symbols []binanceSymbol `json:"symbols"`
}

type binanceSymbol struct {
	Symbol       string          `json:"symbol"`
	Status       string          `json:"status"`
	BaseAsset    string          `json:"baseAsset"`
	QuoteAsset   string          `json:"quoteAsset"`
	MarginAsset  string          `json:"marginAsset"`  // 仅合约
	ContractType string          `json:"contractType"` // 仅合约，PERPETUAL / CURRENT_QUARTER ...
	Filters      []binanceFilter `json:"filters"`
}

type binanceFilter struct {
	FilterType  string          `json:"filterType"`
	MinPrice    types.ExDecimal `json:"minPrice"`
	MaxPrice    types.ExDecimal `json:"maxPrice"`
	TickSize    types.ExDecimal `json:"tickSize"`
	MinQty      types.ExDecimal `json:"minQty"`
	MaxQty      types.ExDecimal `json:"maxQty"`
	StepSize    types.ExDecimal `json:"stepSize"`
	MinNotional types.ExDecimal `json:"minNotional"` // 现货 NOTIONAL / MIN_NOTIONAL
	MaxNotional types.ExDecimal `json:"maxNotional"`
	Notional    types.ExDecimal `json:"notional"` // 合约 MIN_NOTIONAL
}

// binanceTicker 24hr 行情，合约接口不返回 bid/ask
type binanceTicker struct {
	Symbol             string            `json:"symbol"`
	PriceChange        types.ExDecimal   `json:"priceChange"`
	PriceChangePercent types.ExDecimal   `json:"priceChangePercent"`
	LastPrice          types.ExDecimal   `json:"lastPrice"`
	BidPrice           types.ExDecimal   `json:"bidPrice"`
	BidQty             types.ExDecimal   `json:"bidQty"`
	AskPrice           types.ExDecimal   `json:"askPrice"`
	AskQty             types.ExDecimal   `json:"askQty"`
	OpenPrice          types.ExDecimal   `json:"openPrice"`
	HighPrice          types.ExDecimal   `json:"highPrice"`
	LowPrice           types.ExDecimal   `json:"lowPrice"`
	Volume             types.ExDecimal   `json:"volume"`
	QuoteVolume        types.ExDecimal   `json:"quoteVolume"`
	CloseTime          types.ExTimestamp `json:"closeTime"`
}

type binanceDepth struct {
	LastUpdateID int64             `json:"lastUpdateId"`
	E            types.ExTimestamp `json:"E"` // 仅合约
	Bids         [][]string        `json:"bids"`
	Asks         [][]string        `json:"asks"`
}

type binanceTrade struct {
	ID           int64             `json:"id"`
	Price        types.ExDecimal   `json:"price"`
	Qty          types.ExDecimal   `json:"qty"`
	QuoteQty     types.ExDecimal   `json:"quoteQty"`
	Time         types.ExTimestamp `json:"time"`
	IsBuyerMaker bool              `json:"isBuyerMaker"`
}

// binanceKline K 线，接口返回数组格式
// [openTime, open, high, low, close, volume, closeTime, quoteVolume, trades, takerBase, takerQuote, ignore]
type binanceKline struct {
	OpenTime types.ExTimestamp
	Open     types.ExDecimal
	High     types.ExDecimal
	Low      types.ExDecimal
	Close    types.ExDecimal
	Volume   types.ExDecimal
}

// UnmarshalJSON 解析数组格式
func (k *binanceKline) UnmarshalJSON(data []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) < 6 {
		return fmt.Errorf("invalid kline array length: %d", len(arr))
	}
	if err := k.OpenTime.UnmarshalJSON(arr[0]); err != nil {
		return fmt.Errorf("parse openTime: %w", err)
	}
	fields := []*types.ExDecimal{&k.Open, &k.High, &k.Low, &k.Close, &k.Volume}
	for i, f := range fields {
		if err := f.UnmarshalJSON(arr[i+1]); err != nil {
			return fmt.Errorf("parse kline field %d: %w", i+1, err)
		}
	}
	return nil
}

// binanceOrder 现货与合约订单共用
type binanceOrder struct {
	Symbol              string            `json:"symbol"`
	OrderID             int64             `json:"orderId"`
	ClientOrderID       string            `json:"clientOrderId"`
	Price               types.ExDecimal   `json:"price"`
	AvgPrice            types.ExDecimal   `json:"avgPrice"` // 仅合约
	OrigQty             types.ExDecimal   `json:"origQty"`
	ExecutedQty         types.ExDecimal   `json:"executedQty"`
	CummulativeQuoteQty types.ExDecimal   `json:"cummulativeQuoteQty"` // 现货
	CumQuote            types.ExDecimal   `json:"cumQuote"`            // 合约
	Status              string            `json:"status"`
	TimeInForce         string            `json:"timeInForce"`
	Type                string            `json:"type"`
	Side                string            `json:"side"`
	PositionSide        string            `json:"positionSide"`
	ReduceOnly          bool              `json:"reduceOnly"`
	Time                types.ExTimestamp `json:"time"`
	TransactTime        types.ExTimestamp `json:"transactTime"`
	UpdateTime          types.ExTimestamp `json:"updateTime"`
}

type binanceSpotAccount struct {
	Balances []struct {
		Asset  string          `json:"asset"`
		Free   types.ExDecimal `json:"free"`
		Locked types.ExDecimal `json:"locked"`
	} `json:"balances"`
}

type binancePerpBalance struct {
	Asset            string          `json:"asset"`
	Balance          types.ExDecimal `json:"balance"`
	AvailableBalance types.ExDecimal `json:"availableBalance"`
	CrossUnPnl       types.ExDecimal `json:"crossUnPnl"`
}

type binancePosition struct {
	Symbol           string            `json:"symbol"`
	PositionAmt      types.ExDecimal   `json:"positionAmt"`
	EntryPrice       types.ExDecimal   `json:"entryPrice"`
	MarkPrice        types.ExDecimal   `json:"markPrice"`
	UnRealizedProfit types.ExDecimal   `json:"unRealizedProfit"`
	LiquidationPrice types.ExDecimal   `json:"liquidationPrice"`
	Leverage         types.ExDecimal   `json:"leverage"`
	MarginType       string            `json:"marginType"`
	PositionSide     string            `json:"positionSide"`
	UpdateTime       types.ExTimestamp `json:"updateTime"`
}

type binancePremiumIndex struct {
	Symbol          string            `json:"symbol"`
	MarkPrice       types.ExDecimal   `json:"markPrice"`
	IndexPrice      types.ExDecimal   `json:"indexPrice"`
	LastFundingRate types.ExDecimal   `json:"lastFundingRate"`
	NextFundingTime types.ExTimestamp `json:"nextFundingTime"`
	Time            types.ExTimestamp `json:"time"`
}

