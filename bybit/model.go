package bybit

import (
	"encoding/json"
	"fmt"

	"github.com/lemconn/ccxt/types"
)

// bybitResponse v5 通用响应包
type bybitResponse[T any] struct {
	RetCode int               `json:"retCode"`
	RetMsg  string            `json:"retMsg"`
	Result  T                 `json:"result"`
	Time    types.ExTimestamp `json:"time"`
}

// bybitList 列表类接口的 result
type bybitList[T any] struct {
	Category       string `json:"category"`
	List           []T    `json:"list"`
	NextPageCursor string `json:"nextPageCursor"`
}

type bybitInstrument struct {
	Symbol        string `json:"symbol"`
	ContractType  string `json:"contractType"` // 仅合约，LinearPerpetual / LinearFutures
	Status        string `json:"status"`
	BaseCoin      string `json:"baseCoin"`
	QuoteCoin     string `json:"quoteCoin"`
	SettleCoin    string `json:"settleCoin"`
	LotSizeFilter struct {
		BasePrecision    types.ExDecimal `json:"basePrecision"` // 现货数量步长
		QtyStep          types.ExDecimal `json:"qtyStep"`       // 合约数量步长
		MinOrderQty      types.ExDecimal `json:"minOrderQty"`
		MaxOrderQty      types.ExDecimal `json:"maxOrderQty"`
		MinOrderAmt      types.ExDecimal `json:"minOrderAmt"`      // 现货最小金额
		MinNotionalValue types.ExDecimal `json:"minNotionalValue"` // 合约最小名义价值
	} `json:"lotSizeFilter"`
	PriceFilter struct {
		TickSize types.ExDecimal `json:"tickSize"`
		MinPrice types.ExDecimal `json:"minPrice"`
		MaxPrice types.ExDecimal `json:"maxPrice"`
	} `json:"priceFilter"`
	LeverageFilter struct {
		MinLeverage types.ExDecimal `json:"minLeverage"`
		MaxLeverage types.ExDecimal `json:"maxLeverage"`
	} `json:"leverageFilter"`
}

type bybitTicker struct {
	Symbol          string            `json:"symbol"`
	LastPrice       types.ExDecimal   `json:"lastPrice"`
	Bid1Price       types.ExDecimal   `json:"bid1Price"`
	Bid1Size        types.ExDecimal   `json:"bid1Size"`
	Ask1Price       types.ExDecimal   `json:"ask1Price"`
	Ask1Size        types.ExDecimal   `json:"ask1Size"`
	PrevPrice24h    types.ExDecimal   `json:"prevPrice24h"`
	Price24hPcnt    types.ExDecimal   `json:"price24hPcnt"` // 小数形式，0.01 表示 1%
	HighPrice24h    types.ExDecimal   `json:"highPrice24h"`
	LowPrice24h     types.ExDecimal   `json:"lowPrice24h"`
	Volume24h       types.ExDecimal   `json:"volume24h"`
	Turnover24h     types.ExDecimal   `json:"turnover24h"`
	MarkPrice       types.ExDecimal   `json:"markPrice"`
	IndexPrice      types.ExDecimal   `json:"indexPrice"`
	FundingRate     types.ExDecimal   `json:"fundingRate"`
	NextFundingTime types.ExTimestamp `json:"nextFundingTime"`
}

type bybitOrderBook struct {
	Symbol string            `json:"s"`
	Bids   [][]string        `json:"b"`
	Asks   [][]string        `json:"a"`
	Ts     types.ExTimestamp `json:"ts"`
}

// bybitKline [startTime, open, high, low, close, volume, turnover]
type bybitKline struct {
	Start  types.ExTimestamp
	Open   types.ExDecimal
	High   types.ExDecimal
	Low    types.ExDecimal
	Close  types.ExDecimal
	Volume types.ExDecimal
}

// UnmarshalJSON 解析数组格式
func (k *bybitKline) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) < 6 {
		return fmt.Errorf("invalid kline array length: %d", len(arr))
	}
	if err := k.Start.UnmarshalJSON([]byte(arr[0])); err != nil {
		return fmt.Errorf("parse start: %w", err)
	}
	fields := []*types.ExDecimal{&k.Open, &k.High, &k.Low, &k.Close, &k.Volume}
	for i, f := range fields {
		if err := f.UnmarshalJSON([]byte(`"` + arr[i+1] + `"`)); err != nil {
			return fmt.Errorf("parse kline field %d: %w", i+1, err)
		}
	}
	return nil
}

type bybitTrade struct {
	ExecID string            `json:"execId"`
	Symbol string            `json:"symbol"`
	Price  types.ExDecimal   `json:"price"`
	Size   types.ExDecimal   `json:"size"`
	Side   string            `json:"side"`
	Time   types.ExTimestamp `json:"time"`
}

type bybitWallet struct {
	AccountType string `json:"accountType"`
	Coin        []struct {
		Coin            string          `json:"coin"`
		WalletBalance   types.ExDecimal `json:"walletBalance"`
		Locked          types.ExDecimal `json:"locked"`
		TotalOrderIM    types.ExDecimal `json:"totalOrderIM"`
		TotalPositionIM types.ExDecimal `json:"totalPositionIM"`
	} `json:"coin"`
}

type bybitPosition struct {
	Symbol        string            `json:"symbol"`
	Side          string            `json:"side"` // Buy / Sell，无持仓时为空
	Size          types.ExDecimal   `json:"size"`
	AvgPrice      types.ExDecimal   `json:"avgPrice"`
	MarkPrice     types.ExDecimal   `json:"markPrice"`
	LiqPrice      types.ExDecimal   `json:"liqPrice"`
	UnrealisedPnl types.ExDecimal   `json:"unrealisedPnl"`
	Leverage      types.ExDecimal   `json:"leverage"`
	TradeMode     int               `json:"tradeMode"` // 0 全仓，1 逐仓
	PositionIdx   int               `json:"positionIdx"`
	UpdatedTime   types.ExTimestamp `json:"updatedTime"`
}

type bybitOrderAck struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}

type bybitOrder struct {
	OrderID      string            `json:"orderId"`
	OrderLinkID  string            `json:"orderLinkId"`
	Symbol       string            `json:"symbol"`
	Price        types.ExDecimal   `json:"price"`
	Qty          types.ExDecimal   `json:"qty"`
	Side         string            `json:"side"`
	OrderType    string            `json:"orderType"`
	TimeInForce  string            `json:"timeInForce"`
	OrderStatus  string            `json:"orderStatus"`
	CumExecQty   types.ExDecimal   `json:"cumExecQty"`
	CumExecValue types.ExDecimal   `json:"cumExecValue"`
	CumExecFee   types.ExDecimal   `json:"cumExecFee"`
	AvgPrice     types.ExDecimal   `json:"avgPrice"`
	PositionIdx  int               `json:"positionIdx"`
	ReduceOnly   bool              `json:"reduceOnly"`
	CreatedTime  types.ExTimestamp `json:"createdTime"`
	UpdatedTime  types.ExTimestamp `json:"updatedTime"`
}
