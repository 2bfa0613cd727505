package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframeMapping(t *testing.T) {
	tf, err := ParseTimeframe("4h")
	require.NoError(t, err)
	assert.Equal(t, "4h", tf.ToBinance())
	assert.Equal(t, "4H", tf.ToOKX())
	assert.Equal(t, "240", tf.ToBybit())
	assert.Equal(t, "4h", tf.ToGate())
	assert.Equal(t, 4*time.Hour, tf.Duration())

	assert.Equal(t, "D", Timeframe1d.ToBybit())
	assert.Equal(t, "7d", Timeframe1w.ToGate())
	assert.Equal(t, "", Timeframe3m.ToGate())

	_, err = ParseTimeframe("7m")
	assert.Error(t, err)
}

func TestOHLCVsSort(t *testing.T) {
	now := time.Now()
	o := OHLCVs{
		{Timestamp: now},
		{Timestamp: now.Add(-2 * time.Minute)},
		{Timestamp: now.Add(-time.Minute)},
	}.Sort()
	assert.True(t, o[0].Timestamp.Before(o[1].Timestamp))
	assert.True(t, o[1].Timestamp.Before(o[2].Timestamp))
	assert.Equal(t, now, o.Last().Timestamp)
	assert.Nil(t, OHLCVs{}.Last())
}

func TestOrderBookSortAndParse(t *testing.T) {
	ob := &OrderBook{
		Bids: ParseLevels([][]string{{"99", "1"}, {"100", "2"}, {"bad", "1"}}),
		Asks: ParseLevels([][]string{{"102", "1"}, {"101", "3"}, {"103"}}),
	}
	ob.Sort()

	require.Len(t, ob.Bids, 2)
	require.Len(t, ob.Asks, 2)
	bid, ok := ob.BestBid()
	require.True(t, ok)
	assert.Equal(t, "100", bid.Price.String())
	ask, ok := ob.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "101", ask.Price.String())

	_, ok = (&OrderBook{}).BestBid()
	assert.False(t, ok)
}

func TestOrderFillDerived(t *testing.T) {
	o := &Order{
		Amount: d("2"),
		Filled: d("0.5"),
		Price:  d("100"),
	}
	o.FillDerived()
	assert.Equal(t, "1.5", o.Remaining.String())
	assert.Equal(t, "50", o.Cost.String())
	assert.Equal(t, "100", o.Average.String())
}

func TestTickerFillDerived(t *testing.T) {
	tk := &Ticker{Open: d("100"), Last: d("110")}
	tk.FillDerived()
	assert.Equal(t, "110", tk.Close.String())
	assert.Equal(t, "10", tk.Change.String())
	assert.Equal(t, "10", tk.Percentage.String())
}

func TestBalancesGetAndSet(t *testing.T) {
	b := Balances{}
	b.Set("USDT", d("80"), decimal.Zero, d("100"))
	b.Set("BTC", d("1"), d("0.5"), decimal.Zero)
	b.Set("ETH", decimal.Zero, decimal.Zero, decimal.Zero)

	assert.Equal(t, "20", b.Get("USDT").Used.String())
	assert.Equal(t, "1.5", b.Get("BTC").Total.String())
	assert.True(t, b.Get("DOGE").Total.IsZero())
	assert.Equal(t, "DOGE", b.Get("DOGE").Currency)
	assert.Len(t, b.NonZero(), 2)
}

func TestPositionAmount(t *testing.T) {
	p := &Position{Contracts: d("3"), ContractSize: d("0.01"), MarkPrice: d("60000")}
	assert.Equal(t, "0.03", p.Amount().String())
	assert.Equal(t, "1800", p.Notional().String())

	p = &Position{Contracts: d("2")}
	assert.Equal(t, "2", p.Amount().String())

	raw, err := json.Marshal(&Position{Symbol: "BTC/USDT:USDT", MarginType: MarginTypeCross})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"margin_type":"cross"`)
}

func TestTransactionZeroValue(t *testing.T) {
	tx := Transaction{Type: TransactionDeposit, Status: TransactionPending}
	assert.Equal(t, "deposit", string(tx.Type))
	assert.Nil(t, tx.Fee)
}
