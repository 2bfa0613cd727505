package base

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarkets() model.Markets {
	return model.Markets{
		{ID: "ETHUSDT", Symbol: "ETH/USDT"},
		{ID: "BTCUSDT", Symbol: "BTC/USDT"},
	}
}

func TestMarketCacheLazyLoad(t *testing.T) {
	var calls int32
	c := NewMarketCache(func(ctx context.Context) (model.Markets, error) {
		atomic.AddInt32(&calls, 1)
		return testMarkets(), nil
	})
	assert.False(t, c.Loaded())

	_, err := c.Get("BTC/USDT")
	assert.ErrorIs(t, err, errs.ErrMarketNotFound)

	m, err := c.Market(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", m.ID)
	assert.Equal(t, "ETH/USDT", c.SymbolOf("ETHUSDT"))
	assert.Equal(t, "XRPUSDT", c.SymbolOf("XRPUSDT"))

	all, err := c.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, all.Symbols())

	_, err = c.Market(context.Background(), "DOGE/USDT")
	assert.ErrorIs(t, err, errs.ErrMarketNotFound)

	require.NoError(t, c.Load(context.Background(), true))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMarketCacheConcurrentLoadFetchesOnce(t *testing.T) {
	var calls int32
	c := NewMarketCache(func(ctx context.Context) (model.Markets, error) {
		atomic.AddInt32(&calls, 1)
		return testMarkets(), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Market(context.Background(), "ETH/USDT")
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMarketCacheLoadError(t *testing.T) {
	boom := errors.New("boom")
	c := NewMarketCache(func(ctx context.Context) (model.Markets, error) { return nil, boom })
	_, err := c.Market(context.Background(), "BTC/USDT")
	assert.ErrorIs(t, err, boom)

	_, err = c.All()
	assert.ErrorIs(t, err, errs.ErrMarketNotFound)
}
