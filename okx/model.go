package okx

import (
	"encoding/json"
	"fmt"

	"github.com/lemconn/ccxt/types"
)

// okxResponse 通用响应包
type okxResponse[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

type okxInstrument struct {
	InstType  string          `json:"instType"`
	InstID    string          `json:"instId"`
	Uly       string          `json:"uly"` // 合约标的，如 BTC-USDT
	BaseCcy   string          `json:"baseCcy"`
	QuoteCcy  string          `json:"quoteCcy"`
	SettleCcy string          `json:"settleCcy"`
	CtVal     types.ExDecimal `json:"ctVal"`  // 合约面值
	CtType    string          `json:"ctType"` // linear / inverse
	State     string          `json:"state"`
	MinSz     types.ExDecimal `json:"minSz"`
	MaxLmtSz  types.ExDecimal `json:"maxLmtSz"`
	LotSz     types.ExDecimal `json:"lotSz"`
	TickSz    types.ExDecimal `json:"tickSz"`
	Lever     types.ExDecimal `json:"lever"`
}

type okxTicker struct {
	InstType  string            `json:"instType"`
	InstID    string            `json:"instId"`
	Last      types.ExDecimal   `json:"last"`
	AskPx     types.ExDecimal   `json:"askPx"`
	AskSz     types.ExDecimal   `json:"askSz"`
	BidPx     types.ExDecimal   `json:"bidPx"`
	BidSz     types.ExDecimal   `json:"bidSz"`
	Open24h   types.ExDecimal   `json:"open24h"`
	High24h   types.ExDecimal   `json:"high24h"`
	Low24h    types.ExDecimal   `json:"low24h"`
	VolCcy24h types.ExDecimal   `json:"volCcy24h"`
	Vol24h    types.ExDecimal   `json:"vol24h"`
	Ts        types.ExTimestamp `json:"ts"`
}

type okxBook struct {
	Asks [][]string        `json:"asks"`
	Bids [][]string        `json:"bids"`
	Ts   types.ExTimestamp `json:"ts"`
}

type okxTrade struct {
	InstID  string            `json:"instId"`
	TradeID string            `json:"tradeId"`
	Px      types.ExDecimal   `json:"px"`
	Sz      types.ExDecimal   `json:"sz"`
	Side    string            `json:"side"`
	Ts      types.ExTimestamp `json:"ts"`
}

// okxCandle K 线，接口返回字符串数组
// [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm]
type okxCandle struct {
	Ts     types.ExTimestamp
	Open   types.ExDecimal
	High   types.ExDecimal
	Low    types.ExDecimal
	Close  types.ExDecimal
	Vol    types.ExDecimal // 现货为基础货币，合约为张数
	VolCcy types.ExDecimal // 合约为基础货币
}

// UnmarshalJSON 解析数组格式
func (k *okxCandle) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) < 7 {
		return fmt.Errorf("invalid candle array length: %d", len(arr))
	}
	if err := k.Ts.UnmarshalJSON([]byte(arr[0])); err != nil {
		return fmt.Errorf("parse ts: %w", err)
	}
	fields := []*types.ExDecimal{&k.Open, &k.High, &k.Low, &k.Close, &k.Vol, &k.VolCcy}
	for i, f := range fields {
		if err := f.UnmarshalJSON([]byte(`"` + arr[i+1] + `"`)); err != nil {
			return fmt.Errorf("parse candle field %d: %w", i+1, err)
		}
	}
	return nil
}

type okxBalance struct {
	Details []struct {
		Ccy       string          `json:"ccy"`
		AvailBal  types.ExDecimal `json:"availBal"`
		FrozenBal types.ExDecimal `json:"frozenBal"`
		Eq        types.ExDecimal `json:"eq"`
	} `json:"details"`
}

type okxPosition struct {
	InstID  string            `json:"instId"`
	Pos     types.ExDecimal   `json:"pos"` // 张数，单向持仓时带符号
	PosSide string            `json:"posSide"`
	AvgPx   types.ExDecimal   `json:"avgPx"`
	MarkPx  types.ExDecimal   `json:"markPx"`
	LiqPx   types.ExDecimal   `json:"liqPx"`
	Upl     types.ExDecimal   `json:"upl"`
	Lever   types.ExDecimal   `json:"lever"`
	MgnMode string            `json:"mgnMode"`
	UTime   types.ExTimestamp `json:"uTime"`
}

type okxFundingRate struct {
	InstID          string            `json:"instId"`
	FundingRate     types.ExDecimal   `json:"fundingRate"`
	FundingTime     types.ExTimestamp `json:"fundingTime"`
	NextFundingTime types.ExTimestamp `json:"nextFundingTime"`
	Ts              types.ExTimestamp `json:"ts"`
}

// okxOrderAck 下单 / 撤单回执
type okxOrderAck struct {
	OrdID   string            `json:"ordId"`
	ClOrdID string            `json:"clOrdId"`
	SCode   string            `json:"sCode"`
	SMsg    string            `json:"sMsg"`
	Ts      types.ExTimestamp `json:"ts"`
}

type okxOrder struct {
	InstID     string            `json:"instId"`
	OrdID      string            `json:"ordId"`
	ClOrdID    string            `json:"clOrdId"`
	Px         types.ExDecimal   `json:"px"`
	Sz         types.ExDecimal   `json:"sz"`
	OrdType    string            `json:"ordType"`
	Side       string            `json:"side"`
	PosSide    string            `json:"posSide"`
	TgtCcy     string            `json:"tgtCcy"`
	AccFillSz  types.ExDecimal   `json:"accFillSz"`
	AvgPx      types.ExDecimal   `json:"avgPx"`
	State      string            `json:"state"`
	Fee        types.ExDecimal   `json:"fee"` // 负数表示扣除
	FeeCcy     string            `json:"feeCcy"`
	ReduceOnly string            `json:"reduceOnly"`
	CTime      types.ExTimestamp `json:"cTime"`
	UTime      types.ExTimestamp `json:"uTime"`
}
