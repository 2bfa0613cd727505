package bybit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
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
	testKey    = "test-key"
	testSecret = "test-secret"
)

const spotInstruments = `{"retCode":0,"retMsg":"OK","result":{"category":"spot","list":[
{"symbol":"BTCUSDT","baseCoin":"BTC","quoteCoin":"USDT","status":"Trading","lotSizeFilter":{"basePrecision":"0.000001","minOrderQty":"0.000048","maxOrderQty":"71.7","minOrderAmt":"1"},"priceFilter":{"tickSize":"0.01"}}]},"time":1700000000000}`

const linearInstrumentsPage1 = `{"retCode":0,"retMsg":"OK","result":{"category":"linear","nextPageCursor":"page2","list":[
{"symbol":"BTCUSDT","contractType":"LinearPerpetual","status":"Trading","baseCoin":"BTC","quoteCoin":"USDT","settleCoin":"USDT","lotSizeFilter":{"qtyStep":"0.001","minOrderQty":"0.001","maxOrderQty":"100","minNotionalValue":"5"},"priceFilter":{"tickSize":"0.10","minPrice":"0.10","maxPrice":"199999.80"},"leverageFilter":{"minLeverage":"1","maxLeverage":"100.00"}},
{"symbol":"BTC-27DEC24","contractType":"LinearFutures","status":"Trading","baseCoin":"BTC","quoteCoin":"USDT","settleCoin":"USDT"}]},"time":1700000000000}`

const linearInstrumentsPage2 = `{"retCode":0,"retMsg":"OK","result":{"category":"linear","nextPageCursor":"","list":[
{"symbol":"ETHUSDT","contractType":"LinearPerpetual","status":"Trading","baseCoin":"ETH","quoteCoin":"USDT","settleCoin":"USDT","lotSizeFilter":{"qtyStep":"0.01","minOrderQty":"0.01","maxOrderQty":"1000"},"priceFilter":{"tickSize":"0.01"},"leverageFilter":{"minLeverage":"1","maxLeverage":"50.00"}},
{"symbol":"BTCPERP","contractType":"LinearPerpetual","status":"Trading","baseCoin":"BTC","quoteCoin":"USDC","settleCoin":"USDC","lotSizeFilter":{"qtyStep":"0.001","minOrderQty":"0.001","maxOrderQty":"100"},"priceFilter":{"tickSize":"0.5"},"leverageFilter":{"minLeverage":"1","maxLeverage":"100.00"}}]},"time":1700000000000}`

type recorder struct {
	hits    atomic.Int32
	method  string
	query   url.Values
	body    map[string]any
	header  http.Header
	queries []url.Values // 按顺序记录的全部请求 query
}

func newTestBybit(t *testing.T, routes map[string]string, opts ...option.Option) (*Bybit, *recorder) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		if r.URL.Path == "/v5/market/instruments-info" {
			q := r.URL.Query()
			switch {
			case q.Get("category") == "spot":
				_, _ = w.Write([]byte(spotInstruments))
			case q.Get("cursor") == "page2":
				_, _ = w.Write([]byte(linearInstrumentsPage2))
			default:
				_, _ = w.Write([]byte(linearInstrumentsPage1))
			}
			return
		}

		rec.method, rec.query, rec.header = r.Method, r.URL.Query(), r.Header.Clone()
		rec.queries = append(rec.queries, rec.query)
		rec.body = nil
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		if ts := r.Header.Get("X-BAPI-TIMESTAMP"); ts != "" {
			payload := r.URL.RawQuery
			if r.Method == http.MethodPost {
				payload = string(raw)
			}
			want := common.SignHMAC256(ts+testKey+r.Header.Get("X-BAPI-RECV-WINDOW")+payload, testSecret)
			if r.Header.Get("X-BAPI-SIGN") != want {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"retCode":10004,"retMsg":"error sign!"}`))
				return
			}
		}

		body, ok := routes[r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery]
		if !ok {
			body, ok = routes[r.Method+" "+r.URL.Path]
		}
		if !ok {
			body, ok = routes[r.URL.Path]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"retCode":10001,"retMsg":"unknown route"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	base := []option.Option{
		option.WithBaseURL(srv.URL),
		option.WithAPIKey(testKey),
		option.WithSecretKey(testSecret),
		option.WithEnableRateLimit(false),
	}
	return New(option.NewExchangeOptions(append(base, opts...)...)), rec
}

func TestLoadMarkets(t *testing.T) {
	b, _ := newTestBybit(t, map[string]string{})
	ctx := context.Background()

	require.NoError(t, b.Spot().LoadMarkets(ctx, false))
	spot, err := b.Spot().GetMarket("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", spot.ID)
	assert.Equal(t, 6, spot.Precision.Amount)
	assert.Equal(t, 2, spot.Precision.Price)
	assert.Equal(t, "1", spot.Limits.Cost.Min.String())

	require.NoError(t, b.Perp().LoadMarkets(ctx, false))
	markets, err := b.Perp().GetMarkets()
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USDC:USDC", "BTC/USDT:USDT", "ETH/USDT:USDT"}, markets.Symbols())

	perp, err := b.Perp().GetMarket("BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, 3, perp.Precision.Amount)
	assert.Equal(t, 1, perp.Precision.Price)
	assert.Equal(t, "100", perp.Limits.Leverage.Max.String())
	assert.Equal(t, "1", perp.ContractMultiplier().String())
}

func TestFetchTickerAndOHLCVs(t *testing.T) {
	b, rec := newTestBybit(t, map[string]string{
		"/v5/market/tickers": `{"retCode":0,"retMsg":"OK","result":{"category":"spot","list":[{"symbol":"BTCUSDT","bid1Price":"59999","bid1Size":"1.5","ask1Price":"60001","ask1Size":"2","lastPrice":"60000","prevPrice24h":"59000","price24hPcnt":"0.0169","highPrice24h":"61000","lowPrice24h":"58000","turnover24h":"6000000","volume24h":"100"}]},"time":1700000000123}`,
		"/v5/market/kline":   `{"retCode":0,"retMsg":"OK","result":{"category":"spot","symbol":"BTCUSDT","list":[["1700003600000","2","3","1","2.5","20","50"],["1700000000000","1","2","0.5","2","10","20"]]},"time":1700000000000}`,
	})
	ctx := context.Background()

	ticker, err := b.Spot().FetchTicker(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "spot", rec.query.Get("category"))
	assert.Equal(t, "BTCUSDT", rec.query.Get("symbol"))
	assert.Equal(t, "60000", ticker.Last.String())
	assert.Equal(t, "1.69", ticker.Percentage.String())
	assert.Equal(t, "1000", ticker.Change.String())
	assert.Equal(t, int64(1700000000123), ticker.Timestamp.UnixMilli())

	since := time.UnixMilli(1700000000000)
	ohlcvs, err := b.Spot().FetchOHLCVs(ctx, "BTC/USDT", model.Timeframe1h, option.WithSince(since), option.WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, "60", rec.query.Get("interval"))
	assert.Equal(t, "1700000000000", rec.query.Get("start"))
	assert.Equal(t, "2", rec.query.Get("limit"))
	require.Len(t, ohlcvs, 2)
	assert.Equal(t, int64(1700000000000), ohlcvs[0].Timestamp.UnixMilli())
	assert.Equal(t, "20", ohlcvs[1].Volume.String())

	_, err = b.Spot().FetchOHLCVs(ctx, "BTC/USDT", model.Timeframe("7m"))
	assert.ErrorIs(t, err, errs.ErrBadRequest)
}

func TestSpotCreateOrder(t *testing.T) {
	b, rec := newTestBybit(t, map[string]string{
		"POST /v5/order/create": `{"retCode":0,"retMsg":"OK","result":{"orderId":"1321003749386327552","orderLinkId":"spot-test-01"},"time":1700000000000}`,
	})
	ctx := context.Background()

	t.Run("market buy in base coin", func(t *testing.T) {
		order, err := b.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "0.0123456789")
		require.NoError(t, err)
		assert.Equal(t, "1321003749386327552", order.ID)
		assert.Equal(t, "spot", rec.body["category"])
		assert.Equal(t, "Buy", rec.body["side"])
		assert.Equal(t, "Market", rec.body["orderType"])
		assert.Equal(t, "0.012345", rec.body["qty"])
		assert.Equal(t, "baseCoin", rec.body["marketUnit"])
		assert.True(t, strings.HasPrefix(rec.body["orderLinkId"].(string), "ccxt-bybit-"))
		assert.NotEmpty(t, rec.header.Get("X-BAPI-SIGN"))
		assert.Equal(t, "5000", rec.header.Get("X-BAPI-RECV-WINDOW"))
	})

	t.Run("limit ioc", func(t *testing.T) {
		_, err := b.Spot().CreateOrder(ctx, "BTC/USDT", option.Sell, "0.5",
			option.WithPrice("65000.129"), option.WithTimeInForce(option.IOC), option.WithClientOrderID("spot-test-01"))
		require.NoError(t, err)
		assert.Equal(t, "Sell", rec.body["side"])
		assert.Equal(t, "Limit", rec.body["orderType"])
		assert.Equal(t, "65000.12", rec.body["price"])
		assert.Equal(t, "IOC", rec.body["timeInForce"])
		assert.Equal(t, "spot-test-01", rec.body["orderLinkId"])
		assert.NotContains(t, rec.body, "marketUnit")
	})

	t.Run("post only", func(t *testing.T) {
		_, err := b.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "0.5",
			option.WithPrice("60000"), option.WithPostOnly(true))
		require.NoError(t, err)
		assert.Equal(t, "PostOnly", rec.body["timeInForce"])
	})

	t.Run("validation", func(t *testing.T) {
		_, err := b.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "0.00001")
		assert.ErrorIs(t, err, errs.ErrInvalidOrder)
		_, err = b.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "1", option.WithOrderType(option.Limit))
		assert.ErrorIs(t, err, errs.ErrInvalidOrder)
		_, err = b.Spot().CreateOrder(ctx, "DOGE/USDT", option.Buy, "1")
		assert.ErrorIs(t, err, errs.ErrMarketNotFound)
	})
}

func TestPerpCreateOrder(t *testing.T) {
	routes := map[string]string{
		"POST /v5/order/create": `{"retCode":0,"retMsg":"OK","result":{"orderId":"perp-1","orderLinkId":"link-1"},"time":1700000000000}`,
	}
	ctx := context.Background()

	t.Run("one-way close", func(t *testing.T) {
		b, rec := newTestBybit(t, routes)
		_, err := b.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.CloseLong, "0.0159")
		require.NoError(t, err)
		assert.Equal(t, "linear", rec.body["category"])
		assert.Equal(t, "Sell", rec.body["side"])
		assert.Equal(t, "0.015", rec.body["qty"])
		assert.Equal(t, float64(0), rec.body["positionIdx"])
		assert.Equal(t, true, rec.body["reduceOnly"])
	})

	t.Run("hedged open short", func(t *testing.T) {
		b, rec := newTestBybit(t, routes, option.WithHedged(true))
		_, err := b.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenShort, "1",
			option.WithPrice("61000.15"), option.WithPostOnly(true))
		require.NoError(t, err)
		assert.Equal(t, "Sell", rec.body["side"])
		assert.Equal(t, float64(2), rec.body["positionIdx"])
		assert.Equal(t, "61000.1", rec.body["price"])
		assert.Equal(t, "PostOnly", rec.body["timeInForce"])
		assert.NotContains(t, rec.body, "reduceOnly")
	})

	t.Run("per-call hedge override", func(t *testing.T) {
		b, rec := newTestBybit(t, routes)
		_, err := b.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "1", option.WithHedgeMode(true))
		require.NoError(t, err)
		assert.Equal(t, "Buy", rec.body["side"])
		assert.Equal(t, float64(1), rec.body["positionIdx"])
	})

	t.Run("below minimum", func(t *testing.T) {
		b, _ := newTestBybit(t, routes)
		_, err := b.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "0.0009")
		assert.ErrorIs(t, err, errs.ErrInvalidOrder)
	})
}

func TestFetchOrderFallsBackToHistory(t *testing.T) {
	ctx := context.Background()
	b, rec := newTestBybit(t, map[string]string{
		"/v5/order/realtime": `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[]},"time":1700000000000}`,
		"/v5/order/history":  `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[{"orderId":"perp-1","orderLinkId":"link-1","symbol":"BTCUSDT","price":"60000","qty":"0.01","side":"Buy","orderType":"Limit","timeInForce":"GTC","orderStatus":"Filled","cumExecQty":"0.01","cumExecValue":"600","cumExecFee":"0.36","avgPrice":"60000","positionIdx":0,"reduceOnly":false,"createdTime":"1700000000000","updatedTime":"1700000001000"}]},"time":1700000000000}`,
	})

	order, err := b.Perp().FetchOrder(ctx, "BTC/USDT:USDT", "perp-1")
	require.NoError(t, err)
	assert.Equal(t, "perp-1", rec.query.Get("orderId"))
	assert.Equal(t, model.OrderStatusClosed, order.Status)
	assert.Equal(t, model.OrderSideBuy, order.Side)
	assert.Equal(t, "600", order.Cost.String())
	assert.Equal(t, "0", order.Remaining.String())
	require.NotNil(t, order.Fee)
	assert.Equal(t, "0.36", order.Fee.Cost.String())

	_, err = b.Perp().FetchOrder(ctx, "BTC/USDT:USDT", "", option.WithClientOrderID("link-1"))
	require.NoError(t, err)
	assert.Equal(t, "link-1", rec.query.Get("orderLinkId"))

	_, err = b.Perp().FetchOrder(ctx, "BTC/USDT:USDT", "")
	assert.ErrorIs(t, err, errs.ErrBadRequest)

	empty, _ := newTestBybit(t, map[string]string{
		"/v5/order/realtime": `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`,
		"/v5/order/history":  `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`,
	})
	_, err = empty.Spot().FetchOrder(ctx, "BTC/USDT", "missing")
	assert.ErrorIs(t, err, errs.ErrOrderNotFound)
}

func TestFetchPositionsAndBalance(t *testing.T) {
	ctx := context.Background()
	b, rec := newTestBybit(t, map[string]string{
		"/v5/position/list": `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[
{"symbol":"BTCUSDT","side":"Sell","size":"0.5","avgPrice":"60000","markPrice":"59000","liqPrice":"80000","unrealisedPnl":"500","leverage":"10","tradeMode":1,"positionIdx":0,"updatedTime":"1700000000000"},
{"symbol":"ETHUSDT","side":"","size":"0","leverage":"10","positionIdx":0}]},"time":1700000000000}`,
		"GET /v5/position/list?category=linear&settleCoin=USDC": `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[]},"time":1700000000000}`,
		"/v5/account/wallet-balance":                            `{"retCode":0,"retMsg":"OK","result":{"list":[{"accountType":"UNIFIED","coin":[
{"coin":"USDT","walletBalance":"1000","locked":"100","totalOrderIM":"50","totalPositionIM":"50"},
{"coin":"DOGE","walletBalance":"0","locked":"0"}]}]},"time":1700000000000}`,
	})

	positions, err := b.Perp().FetchPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USDT", rec.query.Get("settleCoin"))
	require.Len(t, positions, 1)
	p := positions[0]
	assert.Equal(t, "BTC/USDT:USDT", p.Symbol)
	assert.Equal(t, model.PositionSideShort, p.Side)
	assert.Equal(t, model.MarginTypeIsolated, p.MarginType)
	assert.Equal(t, "0.5", p.Amount().String())
	assert.Equal(t, "29500", p.Notional().String())

	_, err = b.Perp().FetchPositions(ctx, option.WithSymbols("ETH/USDT:USDT"))
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", rec.query.Get("symbol"))

	balances, err := b.Spot().FetchBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UNIFIED", rec.query.Get("accountType"))
	require.Len(t, balances, 1)
	usdt := balances.Get("USDT")
	assert.Equal(t, "800", usdt.Free.String())
	assert.Equal(t, "200", usdt.Used.String())
	assert.Equal(t, "1000", usdt.Total.String())
}

func TestPerpListsQueryEverySettleCoin(t *testing.T) {
	b, rec := newTestBybit(t, map[string]string{
		"GET /v5/position/list?category=linear&settleCoin=USDC":             `{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"BTCPERP","side":"Buy","size":"0.2","avgPrice":"60000","leverage":"5","tradeMode":0,"positionIdx":0}]}}`,
		"GET /v5/position/list?category=linear&settleCoin=USDT":             `{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"ETHUSDT","side":"Sell","size":"3","avgPrice":"3000","leverage":"5","tradeMode":0,"positionIdx":0}]}}`,
		"GET /v5/order/realtime?category=linear&settleCoin=USDC&openOnly=0": `{"retCode":0,"retMsg":"OK","result":{"list":[{"orderId":"c-1","symbol":"BTCPERP","side":"Buy","orderType":"Limit","price":"59000","qty":"0.1","orderStatus":"New"}]}}`,
		"GET /v5/order/realtime?category=linear&settleCoin=USDT&openOnly=0": `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`,
	})
	ctx := context.Background()

	positions, err := b.Perp().FetchPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "BTC/USDC:USDC", positions[0].Symbol)
	assert.Equal(t, "ETH/USDT:USDT", positions[1].Symbol)

	orders, err := b.Perp().FetchOpenOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "BTC/USDC:USDC", orders[0].Symbol)

	var coins []string
	for _, q := range rec.queries {
		coins = append(coins, q.Get("settleCoin"))
	}
	assert.Equal(t, []string{"USDC", "USDT", "USDC", "USDT"}, coins)
}

func TestFetchFundingRate(t *testing.T) {
	b, _ := newTestBybit(t, map[string]string{
		"/v5/market/tickers": `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[{"symbol":"BTCUSDT","lastPrice":"60000","markPrice":"60001","indexPrice":"59999","fundingRate":"0.0001","nextFundingTime":"1700006400000"}]},"time":1700000000000}`,
	})

	rate, err := b.Perp().FetchFundingRate(context.Background(), "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, "0.0001", rate.FundingRate.String())
	assert.Equal(t, "60001", rate.MarkPrice.String())
	assert.Equal(t, int64(1700006400000), rate.NextFundingTime.UnixMilli())
}

func TestPerpTickersBookAndTrades(t *testing.T) {
	b, rec := newTestBybit(t, map[string]string{
		"/v5/market/tickers":      `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[{"symbol":"BTCUSDT","lastPrice":"60000"},{"symbol":"ETHUSDT","lastPrice":"3000"},{"symbol":"BTC-27DEC24","lastPrice":"61000"}]},"time":1700000000000}`,
		"/v5/market/orderbook":    `{"retCode":0,"retMsg":"OK","result":{"s":"BTCUSDT","b":[["59999","1"],["60000","0.5"]],"a":[["60002","2"],["60001","3"]],"ts":1700000000000,"u":1}}`,
		"/v5/market/recent-trade": `{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[{"execId":"e-1","symbol":"BTCUSDT","price":"60000","size":"0.01","side":"Sell","time":"1700000000000"}]}}`,
	})
	ctx := context.Background()

	tickers, err := b.Perp().FetchTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "linear", rec.query.Get("category"))
	assert.Empty(t, rec.query.Get("symbol"))
	assert.Len(t, tickers, 2)

	tickers, err = b.Perp().FetchTickers(ctx, option.WithSymbols("ETH/USDT:USDT"))
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "3000", tickers["ETH/USDT:USDT"].Last.String())

	ob, err := b.Perp().FetchOrderBook(ctx, "BTC/USDT:USDT", option.WithLimit(50))
	require.NoError(t, err)
	assert.Equal(t, "50", rec.query.Get("limit"))
	bid, ok := ob.BestBid()
	require.True(t, ok)
	assert.Equal(t, "60000", bid.Price.String())
	ask, ok := ob.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "60001", ask.Price.String())

	trades, err := b.Perp().FetchTrades(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "e-1", trades[0].ID)
	assert.Equal(t, model.OrderSideSell, trades[0].Side)
	assert.Equal(t, "600", trades[0].Cost.String())
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	b, rec := newTestBybit(t, map[string]string{
		"POST /v5/order/create":             `{"retCode":110007,"retMsg":"ab not enough for new order","result":{}}`,
		"POST /v5/order/cancel":             `{"retCode":110001,"retMsg":"order not exists or too late to cancel","result":{}}`,
		"POST /v5/position/set-leverage":    `{"retCode":110043,"retMsg":"leverage not modified","result":{}}`,
		"/v5/position/list":                 `{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"BTCUSDT","side":"","size":"0","leverage":"10"}]}}`,
		"POST /v5/position/switch-isolated": `{"retCode":110026,"retMsg":"Cross/isolated margin mode is not modified","result":{}}`,
	})

	_, err := b.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "1")
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
	var exErr *errs.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "110007", exErr.Code)
	assert.Equal(t, http.StatusOK, exErr.HTTPStatus)

	err = b.Perp().CancelOrder(ctx, "BTC/USDT:USDT", "perp-1")
	assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	assert.Equal(t, "perp-1", rec.body["orderId"])

	require.NoError(t, b.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 10))
	assert.Equal(t, "10", rec.body["buyLeverage"])
	assert.ErrorIs(t, b.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 101), errs.ErrBadRequest)

	require.NoError(t, b.Perp().SetMarginType(ctx, "BTC/USDT:USDT", option.ISOLATED))
	assert.Equal(t, float64(1), rec.body["tradeMode"])
	assert.Equal(t, "10", rec.body["sellLeverage"])
	assert.ErrorIs(t, b.Perp().SetMarginType(ctx, "BTC/USDT:USDT", option.MarginType("BOTH")), errs.ErrBadRequest)
}

func TestSignatureRejected(t *testing.T) {
	b, _ := newTestBybit(t, map[string]string{
		"/v5/order/realtime": `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`,
	}, option.WithSecretKey("wrong-secret"))

	_, err := b.Spot().FetchOpenOrders(context.Background(), "BTC/USDT")
	assert.ErrorIs(t, err, errs.ErrAuthentication)
}

func TestAuthenticationRequired(t *testing.T) {
	b, rec := newTestBybit(t, map[string]string{}, option.WithAPIKey(""), option.WithSecretKey(""))
	ctx := context.Background()

	// 缺少凭证时私有接口不应发出任何请求，包括加载市场
	calls := map[string]func() error{
		"spot balance": func() error {
			_, err := b.Spot().FetchBalance(ctx)
			return err
		},
		"spot open orders": func() error {
			_, err := b.Spot().FetchOpenOrders(ctx, "BTC/USDT")
			return err
		},
		"perp create order": func() error {
			_, err := b.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "1")
			return err
		},
		"perp cancel order": func() error {
			return b.Perp().CancelOrder(ctx, "BTC/USDT:USDT", "1")
		},
		"perp positions": func() error {
			_, err := b.Perp().FetchPositions(ctx)
			return err
		},
		"perp set leverage": func() error {
			return b.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 10)
		},
		"perp margin type": func() error {
			return b.Perp().SetMarginType(ctx, "BTC/USDT:USDT", option.ISOLATED)
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), errs.ErrAuthenticationRequired)
		})
	}
	assert.Equal(t, int32(0), rec.hits.Load())
}
