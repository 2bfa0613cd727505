package gate

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

const currencyPairs = `[{"id":"BTC_USDT","base":"BTC","quote":"USDT","min_base_amount":"0.0001","min_quote_amount":"3","amount_precision":4,"precision":2,"trade_status":"tradable"},
{"id":"OLD_USDT","base":"OLD","quote":"USDT","amount_precision":2,"precision":4,"trade_status":"untradable"}]`

const contracts = `[{"name":"BTC_USDT","type":"direct","quanto_multiplier":"0.0001","order_price_round":"0.1","order_size_min":1,"order_size_max":1000000,"leverage_min":"1","leverage_max":"125","in_delisting":false}]`

type recorder struct {
	hits   atomic.Int32
	method string
	path   string
	query  url.Values
	body   map[string]any
	header http.Header
}

func newTestGate(t *testing.T, routes map[string]string, opts ...option.Option) (*Gate, *recorder) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/api/v4/spot/currency_pairs":
			_, _ = w.Write([]byte(currencyPairs))
			return
		case "/api/v4/futures/usdt/contracts":
			_, _ = w.Write([]byte(contracts))
			return
		}

		rec.method, rec.path, rec.query, rec.header = r.Method, r.URL.Path, r.URL.Query(), r.Header.Clone()
		rec.body = nil
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		if ts := r.Header.Get("Timestamp"); ts != "" {
			payload := strings.Join([]string{r.Method, r.URL.Path, r.URL.RawQuery, common.HashSHA512(raw), ts}, "\n")
			if r.Header.Get("SIGN") != common.SignHMAC512(payload, testSecret) || r.Header.Get("KEY") != testKey {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"label":"INVALID_SIGNATURE","message":"Signature mismatch"}`))
				return
			}
		}

		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			body, ok = routes[r.URL.Path]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"label":"INVALID_PARAM_VALUE","message":"unknown route"}`))
			return
		}
		status := http.StatusOK
		if strings.HasPrefix(body, "!") {
			status, body = http.StatusBadRequest, body[1:]
		}
		w.WriteHeader(status)
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
	g, _ := newTestGate(t, map[string]string{})
	ctx := context.Background()

	require.NoError(t, g.Spot().LoadMarkets(ctx, false))
	spot, err := g.Spot().GetMarket("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC_USDT", spot.ID)
	assert.True(t, spot.Active)
	assert.Equal(t, 4, spot.Precision.Amount)
	assert.Equal(t, "0.01", spot.Precision.PriceStep.String())
	assert.Equal(t, "3", spot.Limits.Cost.Min.String())

	old, err := g.Spot().GetMarket("OLD/USDT")
	require.NoError(t, err)
	assert.False(t, old.Active)

	require.NoError(t, g.Perp().LoadMarkets(ctx, false))
	perp, err := g.Perp().GetMarket("BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, "USDT", perp.Settle)
	assert.True(t, perp.Linear)
	assert.Equal(t, "0.0001", perp.ContractSize.String())
	assert.Equal(t, 0, perp.Precision.Amount)
	assert.Equal(t, 1, perp.Precision.Price)
	assert.Equal(t, "125", perp.Limits.Leverage.Max.String())
}

func TestFetchTickerAndOHLCVs(t *testing.T) {
	g, rec := newTestGate(t, map[string]string{
		"/api/v4/spot/tickers":            `[{"currency_pair":"BTC_USDT","last":"110","lowest_ask":"110.5","highest_bid":"109.5","change_percentage":"10","base_volume":"5","quote_volume":"550","high_24h":"120","low_24h":"95"}]`,
		"/api/v4/spot/candlesticks":       `[["1700000000","100","2","3","1","1.5","50","true"],["1700003600","200","2.5","3","2","2","80","false"]]`,
		"/api/v4/futures/usdt/tickers":    `[{"contract":"BTC_USDT","last":"60000","change_percentage":"-2","highest_bid":"59999","highest_size":"1000","lowest_ask":"60001","lowest_size":"500","volume_24h_base":"10","volume_24h_quote":"600000"}]`,
		"/api/v4/futures/usdt/order_book": `{"current":1700000000.123,"asks":[{"p":"60001","s":500},{"p":"60000.5","s":100}],"bids":[{"p":"59999","s":1000}]}`,
	})
	ctx := context.Background()

	ticker, err := g.Spot().FetchTicker(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTC_USDT", rec.query.Get("currency_pair"))
	assert.Equal(t, "110", ticker.Last.String())
	assert.Equal(t, "100", ticker.Open.String())
	assert.Equal(t, "10", ticker.Change.String())
	assert.Equal(t, "10", ticker.Percentage.String())

	since := time.Unix(1700000000, 0)
	ohlcvs, err := g.Spot().FetchOHLCVs(ctx, "BTC/USDT", model.Timeframe1h, option.WithSince(since), option.WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, "1h", rec.query.Get("interval"))
	assert.Equal(t, "1700000000", rec.query.Get("from"))
	assert.Equal(t, "1700003600", rec.query.Get("to"))
	assert.Empty(t, rec.query.Get("limit"))
	require.Len(t, ohlcvs, 2)
	assert.Equal(t, "1.5", ohlcvs[0].Open.String())
	assert.Equal(t, "50", ohlcvs[0].Volume.String())

	_, err = g.Spot().FetchOHLCVs(ctx, "BTC/USDT", model.Timeframe3m)
	assert.ErrorIs(t, err, errs.ErrBadRequest)

	// 非正数 limit 按默认 100 根处理
	_, err = g.Spot().FetchOHLCVs(ctx, "BTC/USDT", model.Timeframe1h, option.WithSince(since), option.WithLimit(0))
	require.NoError(t, err)
	assert.Equal(t, "1700000000", rec.query.Get("from"))
	assert.Equal(t, "1700356400", rec.query.Get("to"))
	_, err = g.Spot().FetchOHLCVs(ctx, "BTC/USDT", model.Timeframe1h, option.WithLimit(-5))
	require.NoError(t, err)
	assert.Equal(t, "100", rec.query.Get("limit"))

	perpTicker, err := g.Perp().FetchTicker(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, "0.1", perpTicker.BidVolume.String())
	assert.Equal(t, "10", perpTicker.BaseVolume.String())

	book, err := g.Perp().FetchOrderBook(ctx, "BTC/USDT:USDT", option.WithLimit(5))
	require.NoError(t, err)
	assert.Equal(t, "5", rec.query.Get("limit"))
	best, ok := book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "60000.5", best.Price.String())
	assert.Equal(t, "0.01", best.Amount.String())
}

func TestSpotCreateOrder(t *testing.T) {
	g, rec := newTestGate(t, map[string]string{
		"POST /api/v4/spot/orders": `{"id":"12345","text":"t-ccxt-abc","create_time_ms":"1700000000123","status":"open"}`,
		"/api/v4/spot/tickers":     `[{"currency_pair":"BTC_USDT","last":"60000"}]`,
	})
	ctx := context.Background()

	t.Run("limit post only", func(t *testing.T) {
		order, err := g.Spot().CreateOrder(ctx, "BTC/USDT", option.Sell, "0.12345", option.WithPrice("60000.129"), option.WithPostOnly(true))
		require.NoError(t, err)
		assert.Equal(t, "12345", order.ID)
		assert.Equal(t, int64(1700000000123), order.Timestamp.UnixMilli())
		assert.Equal(t, "limit", rec.body["type"])
		assert.Equal(t, "sell", rec.body["side"])
		assert.Equal(t, "0.1234", rec.body["amount"])
		assert.Equal(t, "60000.12", rec.body["price"])
		assert.Equal(t, "poc", rec.body["time_in_force"])
		assert.Equal(t, "spot", rec.body["account"])
		assert.True(t, strings.HasPrefix(rec.body["text"].(string), "t-ccxt-"))
	})

	t.Run("market buy converts to quote amount", func(t *testing.T) {
		_, err := g.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "0.01")
		require.NoError(t, err)
		assert.Equal(t, "market", rec.body["type"])
		assert.Equal(t, "ioc", rec.body["time_in_force"])
		assert.Equal(t, "600", rec.body["amount"])
		assert.NotContains(t, rec.body, "price")
	})

	t.Run("market sell keeps base amount", func(t *testing.T) {
		_, err := g.Spot().CreateOrder(ctx, "BTC/USDT", option.Sell, "0.01", option.WithClientOrderID("t-mine"))
		require.NoError(t, err)
		assert.Equal(t, "0.01", rec.body["amount"])
		assert.Equal(t, "t-mine", rec.body["text"])
	})

	t.Run("limit without price", func(t *testing.T) {
		_, err := g.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "1", option.WithOrderType(option.Limit))
		assert.ErrorIs(t, err, errs.ErrInvalidOrder)
	})
}

func TestPerpCreateOrder(t *testing.T) {
	g, rec := newTestGate(t, map[string]string{
		"POST /api/v4/futures/usdt/orders": `{"id":987654321,"text":"t-ccxt-abc","contract":"BTC_USDT","size":-15,"create_time":1700000000.5,"status":"open"}`,
	})
	ctx := context.Background()

	order, err := g.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.CloseLong, "0.00159")
	require.NoError(t, err)
	assert.Equal(t, "987654321", order.ID)
	assert.Equal(t, float64(-15), rec.body["size"])
	assert.Equal(t, "0", rec.body["price"])
	assert.Equal(t, "ioc", rec.body["tif"])
	assert.Equal(t, true, rec.body["reduce_only"])

	_, err = g.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "0.01", option.WithPrice("60000.15"), option.WithTimeInForce(option.FOK))
	require.NoError(t, err)
	assert.Equal(t, float64(100), rec.body["size"])
	assert.Equal(t, "60000.1", rec.body["price"])
	assert.Equal(t, "fok", rec.body["tif"])
	assert.NotContains(t, rec.body, "reduce_only")

	_, err = g.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenShort, "0.00005")
	assert.ErrorIs(t, err, errs.ErrInvalidOrder)
}

func TestFetchOrdersAndPositions(t *testing.T) {
	g, rec := newTestGate(t, map[string]string{
		"/api/v4/futures/usdt/orders/987654321": `{"id":987654321,"text":"t-ccxt-abc","contract":"BTC_USDT","size":-100,"left":40,"price":"60000","fill_price":"60000","tif":"poc","is_reduce_only":false,"status":"finished","finish_as":"cancelled","create_time":1700000000.5,"finish_time":1700000100}`,
		"/api/v4/futures/usdt/orders":           `[{"id":1,"contract":"BTC_USDT","size":10,"left":10,"price":"59000","tif":"gtc","status":"open","create_time":1700000000}]`,
		"/api/v4/futures/usdt/positions":        `[{"contract":"BTC_USDT","size":-200,"leverage":"0","cross_leverage_limit":"20","entry_price":"60000","mark_price":"59000","liq_price":"90000","unrealised_pnl":"20","mode":"single","update_time":1700000000},{"contract":"BTC_USDT","size":0,"mode":"single"}]`,
		"/api/v4/futures/usdt/accounts":         `{"currency":"USDT","total":"1000","available":"700","order_margin":"100","position_margin":"200"}`,
		"/api/v4/spot/orders/t-ccxt-abc":        `{"id":"1","text":"t-ccxt-abc","currency_pair":"BTC_USDT","type":"market","side":"buy","amount":"600","filled_amount":"0.01","filled_total":"600","avg_deal_price":"60000","status":"closed","time_in_force":"ioc","create_time_ms":"1700000000123"}`,
	})
	ctx := context.Background()

	order, err := g.Perp().FetchOrder(ctx, "BTC/USDT:USDT", "987654321")
	require.NoError(t, err)
	assert.Equal(t, model.OrderSideSell, order.Side)
	assert.Equal(t, model.OrderStatusCanceled, order.Status)
	assert.Equal(t, "0.01", order.Amount.String())
	assert.Equal(t, "0.006", order.Filled.String())
	assert.Equal(t, "PO", order.TimeInForce)

	open, err := g.Perp().FetchOpenOrders(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, "open", rec.query.Get("status"))
	assert.Equal(t, "BTC_USDT", rec.query.Get("contract"))
	require.Len(t, open, 1)
	assert.True(t, open[0].IsOpen())

	positions, err := g.Perp().FetchPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	p := positions[0]
	assert.Equal(t, model.PositionSideShort, p.Side)
	assert.Equal(t, model.MarginTypeCross, p.MarginType)
	assert.Equal(t, "20", p.Leverage.String())
	assert.Equal(t, "0.02", p.Amount().String())

	balances, err := g.Perp().FetchBalance(ctx)
	require.NoError(t, err)
	usdt := balances.Get("USDT")
	assert.Equal(t, "700", usdt.Free.String())
	assert.Equal(t, "300", usdt.Used.String())

	spotOrder, err := g.Spot().FetchOrder(ctx, "BTC/USDT", "", option.WithClientOrderID("t-ccxt-abc"))
	require.NoError(t, err)
	assert.Equal(t, "BTC_USDT", rec.query.Get("currency_pair"))
	assert.Equal(t, model.OrderStatusClosed, spotOrder.Status)
	assert.Equal(t, "0.01", spotOrder.Amount.String())
	assert.Equal(t, "600", spotOrder.Cost.String())
}

func TestPerpTradesTickersAndFunding(t *testing.T) {
	g, rec := newTestGate(t, map[string]string{
		"/api/v4/futures/usdt/trades":             `[{"id":11,"create_time":1700000000.25,"size":-30,"price":"60000"},{"id":12,"create_time":1700000001,"size":5,"price":"60001"}]`,
		"/api/v4/futures/usdt/tickers":            `[{"contract":"BTC_USDT","last":"60000"},{"contract":"ETH_USDT","last":"3000"}]`,
		"/api/v4/futures/usdt/contracts/BTC_USDT": `{"name":"BTC_USDT","funding_rate":"0.0001","funding_next_apply":1700006400,"mark_price":"60010","index_price":"60005"}`,
	})
	ctx := context.Background()

	trades, err := g.Perp().FetchTrades(ctx, "BTC/USDT:USDT", option.WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, "2", rec.query.Get("limit"))
	require.Len(t, trades, 2)
	assert.Equal(t, "11", trades[0].ID)
	assert.Equal(t, model.OrderSideSell, trades[0].Side)
	assert.Equal(t, "0.003", trades[0].Amount.String())
	assert.Equal(t, "180", trades[0].Cost.String())
	assert.Equal(t, model.OrderSideBuy, trades[1].Side)

	tickers, err := g.Perp().FetchTickers(ctx, option.WithSymbols("BTC/USDT:USDT"))
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "60000", tickers["BTC/USDT:USDT"].Last.String())

	rate, err := g.Perp().FetchFundingRate(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, "0.0001", rate.FundingRate.String())
	assert.Equal(t, int64(1700006400), rate.NextFundingTime.Unix())
	assert.Equal(t, "60010", rate.MarkPrice.String())
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	g, rec := newTestGate(t, map[string]string{
		"POST /api/v4/futures/usdt/orders":                      `!{"label":"INSUFFICIENT_AVAILABLE","message":"balance not enough"}`,
		"DELETE /api/v4/spot/orders/42":                         `!{"label":"ORDER_NOT_FOUND","message":"Order not found"}`,
		"POST /api/v4/futures/usdt/positions/BTC_USDT/leverage": `{"contract":"BTC_USDT","leverage":"10"}`,
	})

	_, err := g.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "1")
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
	var exErr *errs.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "INSUFFICIENT_AVAILABLE", exErr.Code)

	err = g.Spot().CancelOrder(ctx, "BTC/USDT", "42")
	assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	assert.Equal(t, http.MethodDelete, rec.method)

	require.NoError(t, g.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 10))
	assert.Equal(t, "10", rec.query.Get("leverage"))
	assert.ErrorIs(t, g.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 126), errs.ErrBadRequest)

	assert.ErrorIs(t, g.Perp().SetMarginType(ctx, "BTC/USDT:USDT", option.ISOLATED), errs.ErrNotSupported)

	_, err = g.Spot().FetchTicker(ctx, "BTC/USDT")
	assert.ErrorIs(t, err, errs.ErrBadRequest)
}

func TestHedgedLeverageUsesDualEndpoint(t *testing.T) {
	g, rec := newTestGate(t, map[string]string{
		"/api/v4/futures/usdt/dual_comp/positions/BTC_USDT/leverage": `[]`,
	}, option.WithHedged(true))

	require.NoError(t, g.Perp().SetLeverage(context.Background(), "BTC/USDT:USDT", 5))
	assert.Equal(t, "/api/v4/futures/usdt/dual_comp/positions/BTC_USDT/leverage", rec.path)
}

func TestLeverageHedgeModeOverride(t *testing.T) {
	routes := map[string]string{
		"/api/v4/futures/usdt/positions/BTC_USDT/leverage":           `{}`,
		"/api/v4/futures/usdt/dual_comp/positions/BTC_USDT/leverage": `[]`,
	}
	ctx := context.Background()

	g, rec := newTestGate(t, routes)
	require.NoError(t, g.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 5, option.WithHedgeMode(true)))
	assert.Equal(t, "/api/v4/futures/usdt/dual_comp/positions/BTC_USDT/leverage", rec.path)

	g, rec = newTestGate(t, routes, option.WithHedged(true))
	require.NoError(t, g.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 5, option.WithHedgeMode(false)))
	assert.Equal(t, "/api/v4/futures/usdt/positions/BTC_USDT/leverage", rec.path)
}

func TestSignatureRejected(t *testing.T) {
	g, _ := newTestGate(t, map[string]string{
		"/api/v4/spot/accounts": `[]`,
	}, option.WithSecretKey("wrong-secret"))

	_, err := g.Spot().FetchBalance(context.Background())
	assert.ErrorIs(t, err, errs.ErrAuthentication)
}

func TestSpotOpenOrdersEmpty(t *testing.T) {
	g, _ := newTestGate(t, map[string]string{
		"/api/v4/spot/open_orders": `[]`,
	})

	orders, err := g.Spot().FetchOpenOrders(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, orders)
	raw, err := json.Marshal(orders)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestAuthenticationRequired(t *testing.T) {
	g, rec := newTestGate(t, map[string]string{}, option.WithAPIKey(""), option.WithSecretKey(""))
	ctx := context.Background()

	// 缺少凭证时私有接口不应发出任何请求，包括加载市场
	calls := map[string]func() error{
		"spot balance": func() error {
			_, err := g.Spot().FetchBalance(ctx)
			return err
		},
		"spot open orders": func() error {
			_, err := g.Spot().FetchOpenOrders(ctx, "BTC/USDT")
			return err
		},
		"perp create order": func() error {
			_, err := g.Perp().CreateOrder(ctx, "BTC/USDT:USDT", option.OpenLong, "1")
			return err
		},
		"perp cancel order": func() error {
			return g.Perp().CancelOrder(ctx, "BTC/USDT:USDT", "1")
		},
		"perp positions": func() error {
			_, err := g.Perp().FetchPositions(ctx)
			return err
		},
		"perp set leverage": func() error {
			return g.Perp().SetLeverage(ctx, "BTC/USDT:USDT", 10)
		},
		"spot market buy": func() error {
			_, err := g.Spot().CreateOrder(ctx, "BTC/USDT", option.Buy, "0.01")
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
