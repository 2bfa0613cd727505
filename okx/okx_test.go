package okx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/model"
	"github.com/lemconn/ccxt/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey        = "test-key"
	testSecret     = "test-secret"
	testPassphrase = "test-pass"
)

const spotInstruments = `{"code":"0","msg":"","data":[
{"instType":"SPOT","instId":"BTC-USDT","baseCcy":"BTC","quoteCcy":"USDT","state":"live","minSz":"0.00001","maxLmtSz":"9999","lotSz":"0.00000001","tickSz":"0.1"}]}`

const swapInstruments = `{"code":"0","msg":"","data":[
{"instType":"SWAP","instId":"BTC-USDT-SWAP","uly":"BTC-USDT","settleCcy":"USDT","ctVal":"0.01","ctType":"linear","state":"live","minSz":"0.01","maxLmtSz":"100000","lotSz":"0.01","tickSz":"0.1","lever":"100"},
{"instType":"SWAP","instId":"BTC-USD-SWAP","uly":"BTC-USD","settleCcy":"BTC","ctVal":"100","ctType":"inverse","state":"live","minSz":"1","lotSz":"1","tickSz":"0.1","lever":"100"}]}`

type recorder struct {
	hits   atomic.Int32
	method string
	query  url.Values
	body   map[string]any
	header http.Header
}

func newTestOKX(t *testing.T, routes map[string]string, opts ...option.Option) (*OKX, *recorder) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		if r.URL.Path == "/api/v5/public/instruments" {
			if r.URL.Query().Get("instType") == "SWAP" {
				_, _ = w.Write([]byte(swapInstruments))
			} else {
				_, _ = w.Write([]byte(spotInstruments))
			}
			return
		}

		rec.method, rec.query, rec.header = r.Method, r.URL.Query(), r.Header.Clone()
		rec.body = nil
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		if ts := r.Header.Get("OK-ACCESS-TIMESTAMP"); ts != "" {
			want := common.SignHMAC256Base64(ts+r.Method+r.URL.RequestURI()+string(raw), testSecret)
			if r.Header.Get("OK-ACCESS-SIGN") != want {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":"50113","msg":"Invalid Sign"}`))
				return
			}
		}

		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			body, ok = routes[r.URL.Path]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"51000","msg":"unknown route"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	base := []option.Option{
		option.WithBaseURL(srv.URL),
		option.WithAPIKey(testKey),
		option.WithSecretKey(testSecret),
		option.WithPassword(testPassphrase),
		option.WithEnableRateLimit(false),
	}
	return New(option.NewExchangeOptions(append(base, opts...)...)), rec
}

func TestLoadMarkets(t *testing.T) {
	o, _ := newTestOKX(t, map[string]string{})
	ctx := context.Background()

	require.NoError(t, o.Spot().LoadMarkets(ctx, false))
	spot, err := o.Spot().GetMarket("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", spot.ID)
	assert.Equal(t, 8, spot.Precision.Amount)
	assert.Equal(t, 1, spot.Precision.Price)

	require.NoError(t, o.Perp().LoadMarkets(ctx, false))
	markets, err := o.Perp().GetMarkets()
	require.NoError(t, err)
	require.Len(t, markets, 1)
	swap := markets[0]
	assert.Equal(t, "BTC/USDT:USDT", swap.Symbol)
	assert.Equal(t, "BTC", swap.Base)
	assert.Equal(t, "0.01", swap.ContractSize.String())
	assert.Equal(t, "100", swap.Limits.Leverage.Max.String())
}

func TestFetchTickerAndOHLCVs(t *testing.T) {
	o, rec := newTestOKX(t, map[string]string{
		"/api/v5/market/ticker":  `{"code":"0","msg":"","data":[{"instType":"SWAP","instId":"BTC-USDT-SWAP","last":"60000","askPx":"60001","askSz":"10","bidPx":"59999","bidSz":"20","open24h":"59000","high24h":"61000","low24h":"58000","volCcy24h":"1000","vol24h":"100000","ts":"1700000000000"}]}`,
		"/api/v5/market/candles": `{"code":"0","msg":"","data":[["1700000060000","2","3","1","2.5","1000","10","25","1"],["1700000000000","1","2","0.5","2","500","5","10","1"]]}`,
	})
	ctx := context.Background()

	ticker, err := o.Perp().FetchTicker(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT-SWAP", rec.query.Get("instId"))
	assert.Equal(t, "60000", ticker.Last.String())
	assert.Equal(t, "0.1", ticker.AskVolume.String())
	assert.Equal(t, "1000", ticker.BaseVolume.String())
	assert.Equal(t, "1000", ticker.Change.String())

	since := time.UnixMilli(1700000000000)
	ohlcvs, err := o.Perp().FetchOHLCVs(ctx, "BTC/USDT:USDT", model.Timeframe1h, option.WithSince(since), option.WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, "1H", rec.query.Get("bar"))
	assert.Equal(t, "1700007200000", rec.query.Get("after"))
	assert.Equal(t, "1699999999999", rec.query.Get("before"))
	require.Len(t, ohlcvs, 2)
	assert.Equal(t, int64(1700000000000), ohlcvs[0].Timestamp.UnixMilli())
	assert.Equal(t, "5", ohlcvs[0].Volume.String())
}

func TestSpotCreateOrder(t *testing.T) {
	o, rec := newTestOKX(t, map[string]string{
		"POST /api/v5/trade/order": `{"code":"0","msg":"","data":[{"ordId":"312269865356374016","clOrdId":"abc","sCode":"0","sMsg":"","ts":"1700000000000"}]}`,
	})
	ctx := context.Background()

	order, err := o.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "0.5")
	require.NoError(t, err)
	assert.Equal(t, "312269865356374016", order.ID)
	assert.Equal(t, "cash", rec.body["tdMode"])
	assert.Equal(t, "buy", rec.body["side"])
	assert.Equal(t, "market", rec.body["ordType"])
	assert.Equal(t, "base_ccy", rec.body["tgtCcy"])
	assert.Equal(t, "0.5", rec.body["sz"])
	assert.Equal(t, testKey, rec.header.Get("OK-ACCESS-KEY"))
	assert.Equal(t, testPassphrase, rec.header.Get("OK-ACCESS-PASSPHRASE"))
	assert.Regexp(t, `^ccxtokx[0-9a-f]{16}$`, rec.body["clOrdId"])

	_, err = o.Spot().CreateOrder(ctx, "BTC/USDT", option.Sell, "0.5",
		option.WithPrice("65000.19"), option.WithTimeInForce(option.IOC))
	require.NoError(t, err)
	assert.Equal(t, "ioc", rec.body["ordType"])
	assert.Equal(t, "65000.1", rec.body["px"])
	assert.NotContains(t, rec.body, "tgtCcy")
}

func TestPerpCreateOrder(t *testing.T) {
	routes := map[string]string{
		"POST /api/v5/trade/order": `{"code":"0","msg":"","data":[{"ordId":"1","clOrdId":"c","sCode":"0","sMsg":""}]}`,
	}
	ctx := context.Background()

	t.Run("net mode close", func(t *testing.T) {
		o, rec := newTestOKX(t, routes)
		_, err := o.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.CloseLong, "0.0155")
		require.NoError(t, err)
		assert.Equal(t, "sell", rec.body["side"])
		assert.Equal(t, "net", rec.body["posSide"])
		assert.Equal(t, true, rec.body["reduceOnly"])
		assert.Equal(t, "cross", rec.body["tdMode"])
		assert.Equal(t, "1.55", rec.body["sz"])
	})

	t.Run("hedged isolated", func(t *testing.T) {
		o, rec := newTestOKX(t, routes, option.WithHedged(true))
		require.NoError(t, o.Perp().SetMarginType(ctx, "BTC/USDT:USDT", option.ISOLATED))
		_, err := o.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenShort, "1",
			option.WithPrice("60000"), option.WithPostOnly(true))
		require.NoError(t, err)
		assert.Equal(t, "short", rec.body["posSide"])
		assert.Equal(t, "isolated", rec.body["tdMode"])
		assert.Equal(t, "post_only", rec.body["ordType"])
		assert.Equal(t, "100", rec.body["sz"])
		assert.NotContains(t, rec.body, "reduceOnly")
	})

	t.Run("below one contract", func(t *testing.T) {
		o, _ := newTestOKX(t, routes)
		_, err := o.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "0.00001")
		assert.ErrorIs(t, err, errs.ErrInvalidOrder)
	})
}

func TestFetchOrderAndPositions(t *testing.T) {
	o, rec := newTestOKX(t, map[string]string{
		"/api/v5/trade/order":       `{"code":"0","msg":"","data":[{"instId":"BTC-USDT-SWAP","ordId":"9","clOrdId":"c9","px":"60000","sz":"10","ordType":"limit","side":"buy","posSide":"long","accFillSz":"4","avgPx":"60000","state":"partially_filled","fee":"-0.12","feeCcy":"USDT","reduceOnly":"false","cTime":"1700000000000","uTime":"1700000001000"}]}`,
		"/api/v5/account/positions": `{"code":"0","msg":"","data":[
{"instId":"BTC-USDT-SWAP","pos":"-3","posSide":"net","avgPx":"60000","markPx":"59000","liqPx":"70000","upl":"30","lever":"10","mgnMode":"cross","uTime":"1700000000000"},
{"instId":"BTC-USDT-SWAP","pos":"0","posSide":"net","avgPx":"","markPx":"59000","liqPx":"","upl":"0","lever":"10","mgnMode":"cross","uTime":"1700000000000"}]}`,
	})
	ctx := context.Background()

	order, err := o.Perp().FetchOrder(ctx, "BTC/USDT:USDT", "9")
	require.NoError(t, err)
	assert.Equal(t, "9", rec.query.Get("ordId"))
	assert.Equal(t, model.OrderStatusOpen, order.Status)
	assert.Equal(t, "0.1", order.Amount.String())
	assert.Equal(t, "0.04", order.Filled.String())
	assert.Equal(t, "0.06", order.Remaining.String())
	assert.Equal(t, "0.12", order.Fee.Cost.String())
	assert.Equal(t, model.PositionSideLong, order.PositionSide)

	_, err = o.Perp().FetchOrder(ctx, "BTC/USDT:USDT", "", option.WithClientOrderID("c9"))
	require.NoError(t, err)
	assert.Equal(t, "c9", rec.query.Get("clOrdId"))

	positions, err := o.Perp().FetchPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, model.PositionSideShort, positions[0].Side)
	assert.Equal(t, "3", positions[0].Contracts.String())
	assert.Equal(t, "0.03", positions[0].Amount().String())
}

func TestPerpMarketDataAndOpenOrders(t *testing.T) {
	o, rec := newTestOKX(t, map[string]string{
		"/api/v5/market/trades":        `{"code":"0","msg":"","data":[{"instId":"BTC-USDT-SWAP","tradeId":"9","px":"60000","sz":"3","side":"sell","ts":"1700000000000"}]}`,
		"/api/v5/market/books":         `{"code":"0","msg":"","data":[{"asks":[["60001","2","0","1"]],"bids":[["59999","5","0","2"],["60000","1","0","1"]],"ts":"1700000000000"}]}`,
		"/api/v5/market/tickers":       `{"code":"0","msg":"","data":[{"instId":"BTC-USDT-SWAP","last":"60000","ts":"1700000000000"},{"instId":"ETH-USDT-SWAP","last":"3000","ts":"1700000000000"}]}`,
		"/api/v5/public/funding-rate":  `{"code":"0","msg":"","data":[{"instId":"BTC-USDT-SWAP","fundingRate":"0.0002","fundingTime":"1700006400000","nextFundingTime":"1700035200000","ts":"1700000000000"}]}`,
		"/api/v5/trade/orders-pending": `{"code":"0","msg":"","data":[{"instId":"BTC-USDT-SWAP","ordId":"77","clOrdId":"ccxtokxabc","px":"59000","sz":"10","ordType":"post_only","side":"buy","posSide":"net","accFillSz":"4","state":"partially_filled","cTime":"1700000000000"}]}`,
	})
	ctx := context.Background()

	trades, err := o.Perp().FetchTrades(ctx, "BTC/USDT:USDT", option.WithLimit(1))
	require.NoError(t, err)
	assert.Equal(t, "1", rec.query.Get("limit"))
	require.Len(t, trades, 1)
	assert.Equal(t, model.OrderSideSell, trades[0].Side)
	assert.Equal(t, "0.03", trades[0].Amount.String())
	assert.Equal(t, "1800", trades[0].Cost.String())

	book, err := o.Perp().FetchOrderBook(ctx, "BTC/USDT:USDT", option.WithLimit(5))
	require.NoError(t, err)
	assert.Equal(t, "5", rec.query.Get("sz"))
	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, "60000", bid.Price.String())
	assert.Equal(t, "0.01", bid.Amount.String())

	tickers, err := o.Perp().FetchTickers(ctx, option.WithSymbols("BTC/USDT:USDT"))
	require.NoError(t, err)
	assert.Equal(t, "SWAP", rec.query.Get("instType"))
	require.Len(t, tickers, 1)

	rate, err := o.Perp().FetchFundingRate(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, "0.0002", rate.FundingRate.String())
	assert.Equal(t, int64(1700035200000), rate.NextFundingTime.UnixMilli())

	orders, err := o.Perp().FetchOpenOrders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rec.query.Get("instId"))
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusOpen, orders[0].Status)
	assert.Equal(t, "PO", orders[0].TimeInForce)
	assert.Equal(t, "0.1", orders[0].Amount.String())
	assert.Equal(t, "0.06", orders[0].Remaining.String())
}

func TestErrorMapping(t *testing.T) {
	o, rec := newTestOKX(t, map[string]string{
		"POST /api/v5/trade/order":          `{"code":"1","msg":"All operations failed","data":[{"ordId":"","clOrdId":"","sCode":"51008","sMsg":"Insufficient balance"}]}`,
		"POST /api/v5/trade/cancel-order":   `{"code":"1","msg":"","data":[{"ordId":"1","sCode":"51400","sMsg":"Order cancellation failed"}]}`,
		"POST /api/v5/account/set-leverage": `{"code":"0","msg":"","data":[{"lever":"5","mgnMode":"cross","instId":"BTC-USDT-SWAP"}]}`,
	})
	ctx := context.Background()

	_, err := o.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "1")
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
	var exErr *errs.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "51008", exErr.Code)
	assert.Equal(t, "Insufficient balance", exErr.Message)

	assert.ErrorIs(t, o.Spot().CancelOrder(ctx, "BTC/USDT", "1"), errs.ErrOrderNotFound)
	assert.NoError(t, o.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 5))
	assert.Equal(t, "cross", rec.body["mgnMode"])
	assert.NoError(t, o.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 5, option.WithMarginType(option.ISOLATED)))
	assert.Equal(t, "isolated", rec.body["mgnMode"])
	assert.ErrorIs(t, o.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 101), errs.ErrBadRequest)

	_, err = o.Spot().FetchTicker(ctx, "BTC/USDT")
	assert.ErrorIs(t, err, errs.ErrBadRequest)
}

func TestSignatureRejected(t *testing.T) {
	o, _ := newTestOKX(t, map[string]string{"/api/v5/account/balance": `{"code":"0","data":[]}`})
	o.signer = NewSigner("wrong-secret")
	_, err := o.Spot().FetchBalance(context.Background())
	assert.ErrorIs(t, err, errs.ErrAuthentication)
}

func TestAuthenticationRequired(t *testing.T) {
	o, rec := newTestOKX(t, map[string]string{}, option.WithPassword(""))
	ctx := context.Background()

	// 缺少凭证时私有接口不应发出任何请求，包括加载市场
	calls := map[string]func() error{
		"spot balance": func() error {
			_, err := o.Spot().FetchBalance(ctx)
			return err
		},
		"spot open orders": func() error {
			_, err := o.Spot().FetchOpenOrders(ctx, "BTC/USDT")
			return err
		},
		"perp create order": func() error {
			_, err := o.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "1")
			return err
		},
		"perp cancel order": func() error {
			return o.Perp().CancelOrder(ctx, "BTC/USDT:USDT", "1")
		},
		"perp positions": func() error {
			_, err := o.Perp().FetchPositions(ctx)
			return err
		},
		"perp set leverage": func() error {
			return o.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 10)
		},
		"perp margin type": func() error {
			return o.Perp().SetMarginType(ctx, "BTC/USDT:USDT", option.ISOLATED)
		},
		"spot create order": func() error {
			_, err := o.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "0.01")
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), errs.ErrAuthenticationRequired)
		})
	}
	assert.Equal(t, int32(0), rec.hits.Load())
}
