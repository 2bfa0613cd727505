package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExValuesQueryFormatting(t *testing.T) {
	v := NewExValues()
	ts := time.Date(2025, 12, 19, 1, 2, 3, 4, time.FixedZone("CST", 8*3600))

	v.SetQuery("a", 1)
	v.SetQuery("b", true)
	v.SetQuery("c", decimal.RequireFromString("12.34"))
	v.SetQuery("d", ts)
	v.SetQuery("e", json.RawMessage(`{"x":1}`))

	assert.Equal(t, "1", v.GetQuery("a"))
	assert.Equal(t, "true", v.GetQuery("b"))
	assert.Equal(t, "12.34", v.GetQuery("c"))
	assert.Equal(t, "2025-12-18T17:02:03.000000004Z", v.GetQuery("d"))
	assert.Equal(t, `{"x":1}`, v.GetQuery("e"))
	assert.Equal(t,
		"a=1&b=true&c=12.34&d=2025-12-18T17%3A02%3A03.000000004Z&e=%7B%22x%22%3A1%7D",
		v.EncodeQuery())
}

func TestExValuesSliceExpansion(t *testing.T) {
	v := NewExValues()
	v.SetQuery("k", []int{1, 2, 3})
	assert.Equal(t, "k=1&k=2&k=3", v.EncodeQuery())

	v.SetQuery("k", []string{"a"})
	assert.Equal(t, "k=a", v.EncodeQuery())

	v.AddQuery("k", []int{2, 3})
	v.AddQuery("k", "4")
	assert.Equal(t, "k=a&k=2&k=3&k=4", v.EncodeQuery())
}

func TestExValuesJoinPath(t *testing.T) {
	v := NewExValues()
	assert.Equal(t, "/path", v.JoinPath("/path"))

	v.SetQuery("single", 1)
	v.AddQuery("multi", "a")
	v.AddQuery("multi", "b")
	assert.Equal(t, "/path?single=1&multi=a&multi=b", v.JoinPath("/path"))
	assert.Equal(t, "/path?x=1&single=1&multi=a&multi=b", v.JoinPath("/path?x=1"))
}

func TestExValuesBody(t *testing.T) {
	v := NewExValues()
	assert.False(t, v.HasBody("k"))
	assert.Empty(t, v.GetBody("k"))

	v.SetBody("k", 123)
	assert.True(t, v.HasBody("k"))
	assert.Equal(t, "123", v.GetBody("k"))
	assert.Equal(t, "123", v.EncodeBody()["k"])

	v.AddBody("k", "value")
	assert.Equal(t, []string{"123", "value"}, v.EncodeBody()["k"])
	assert.Equal(t, "123", v.GetBody("k"))
	assert.Equal(t, 1, v.BodyLen())

	v.Reset()
	assert.False(t, v.HasBody("k"))
	assert.Empty(t, v.EncodeBody())
}

func TestExValuesEncodeBodyJSON(t *testing.T) {
	v := NewExValues()
	b, err := v.EncodeBodyJSON()
	require.NoError(t, err)
	assert.Nil(t, b)

	v.SetBody("contract", "BTC_USDT")
	v.SetBody("size", int64(-3))
	v.SetBody("price", decimal.RequireFromString("65000.10"))
	v.SetBody("reduce_only", true)
	v.AddBody("ids", "1")
	v.AddBody("ids", "2")

	b, err = v.EncodeBodyJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"contract":"BTC_USDT","size":-3,"price":"65000.1","reduce_only":true,"ids":["1","2"]}`, string(b))
}

func TestExValuesEncodeBodyJSONKeepsSlices(t *testing.T) {
	v := NewExValues()
	v.SetBody("orders", []map[string]string{{"text": "t-1"}})
	v.SetBody("ids", []string{})
	v.SetBody("tag", "x")

	b, err := v.EncodeBodyJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"orders":[{"text":"t-1"}],"ids":[],"tag":"x"}`, string(b))

	v.SetBody("orders", "single")
	b, err = v.EncodeBodyJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"orders":"single","ids":[],"tag":"x"}`, string(b))
}

func TestExValuesHeader(t *testing.T) {
	v := NewExValues()
	assert.False(t, v.HasHeader("X-Test"))

	v.SetHeader("X-Test", "value1")
	v.AddHeader("X-Test", "value2")
	v.SetHeader("X-Single", 1)

	headers := v.EncodeHeader()
	assert.Equal(t, []string{"value1", "value2"}, headers["X-Test"])
	assert.Equal(t, "1", headers["X-Single"])
	assert.Equal(t, map[string]string{"X-Test": "value1", "X-Single": "1"}, v.Headers())

	v.Reset()
	assert.False(t, v.HasHeader("X-Test"))
	assert.Empty(t, v.EncodeHeader())
}
