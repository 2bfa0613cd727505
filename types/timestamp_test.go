package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExTimestampFormats(t *testing.T) {
	want := time.UnixMilli(1700000000123)

	for name, tc := range map[string]struct {
		in   string
		want time.Time
	}{
		"seconds":      {`1700000000`, time.Unix(1700000000, 0)},
		"millis quote": {`"1700000000123"`, want},
		"millis":       {`1700000000123`, want},
		"micros":       {`1700000000123000`, want},
		"nanos":        {`1700000000123000000`, want},
		"float secs":   {`1700000000.123`, want},
		"rfc3339":      {`"2023-11-14T22:13:20.123Z"`, want},
		"empty":        {`""`, time.Time{}},
		"zero":         {`0`, time.Time{}},
		"null":         {`null`, time.Time{}},
	} {
		t.Run(name, func(t *testing.T) {
			var ts ExTimestamp
			require.NoError(t, json.Unmarshal([]byte(tc.in), &ts))
			assert.True(t, tc.want.Equal(ts.Time), "got %s want %s", ts.Time, tc.want)
		})
	}
}

func TestExTimestampRejectsGarbage(t *testing.T) {
	var ts ExTimestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
}

func TestExTimestampRoundTripKeepsFormat(t *testing.T) {
	var ts ExTimestamp
	require.NoError(t, json.Unmarshal([]byte(`1700000000`), &ts))
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `1700000000`, string(b))
}

func TestExDecimalEmpty(t *testing.T) {
	var v struct {
		A ExDecimal `json:"a"`
		B ExDecimal `json:"b"`
		C ExDecimal `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"","b":null,"c":"1.50"}`), &v))
	assert.True(t, v.A.IsZero())
	assert.True(t, v.B.IsZero())
	assert.Equal(t, "1.5", v.C.String())
	assert.Nil(t, v.A.Ptr())
	assert.NotNil(t, v.C.Ptr())
	assert.Equal(t, "0", NewExDecimal("abc").String())
}
