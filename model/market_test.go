package model

import (
	"testing"

	"github.com/lemconn/ccxt/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPrecisionFromStep(t *testing.T) {
	cases := map[string]int{
		"0.001":   3,
		"0.0100":  2,
		"1":       0,
		"10":      0,
		"0.5":     1,
		"0.00025": 5,
		"0":       0,
	}
	for step, want := range cases {
		assert.Equal(t, want, PrecisionFromStep(d(step)), step)
	}
	assert.Equal(t, "0.001", PrecisionFromDigits(3).String())
}

func TestAmountAndPriceToPrecision(t *testing.T) {
	m := &Market{
		Symbol: "BTC/USDT",
		Precision: Precision{
			Amount:     5,
			Price:      1,
			AmountStep: d("0.00001"),
			PriceStep:  d("0.5"),
		},
	}
	assert.Equal(t, "0.12345", m.AmountToPrecision(d("0.123459")).String())
	assert.Equal(t, "65000.5", m.PriceToPrecision(d("65000.99")).String())
	assert.Equal(t, "65000", m.PriceToPrecision(d("65000.49")).String())
}

func TestAmountToContracts(t *testing.T) {
	m := &Market{
		Symbol:       "BTC/USDT:USDT",
		Base:         "BTC",
		Contract:     true,
		ContractSize: d("0.01"),
		Precision:    Precision{Amount: 0, AmountStep: d("1")},
		Limits:       Limits{Amount: MinMax{Min: d("1"), Max: d("1000")}},
	}

	c, err := m.AmountToContracts(d("0.057"))
	require.NoError(t, err)
	assert.Equal(t, "5", c.String())
	assert.Equal(t, "0.05", m.ContractsToAmount(c).String())

	_, err = m.AmountToContracts(d("0.005"))
	assert.ErrorIs(t, err, errs.ErrInvalidOrder)

	_, err = m.AmountToContracts(d("20"))
	assert.ErrorIs(t, err, errs.ErrInvalidOrder)
}

func TestAmountToContractsFractionalLot(t *testing.T) {
	// OKX BTC-USDT-SWAP: ctVal=0.01, lotSz=minSz=0.01
	m := &Market{
		Symbol:       "BTC/USDT:USDT",
		Base:         "BTC",
		Contract:     true,
		ContractSize: d("0.01"),
		Precision:    Precision{Amount: 2, AmountStep: d("0.01")},
		Limits:       Limits{Amount: MinMax{Min: d("0.01")}},
	}

	c, err := m.AmountToContracts(d("0.005"))
	require.NoError(t, err)
	assert.Equal(t, "0.5", c.String())

	c, err = m.AmountToContracts(d("0.012345"))
	require.NoError(t, err)
	assert.Equal(t, "1.23", c.String())

	_, err = m.AmountToContracts(d("0.00009"))
	assert.ErrorIs(t, err, errs.ErrInvalidOrder)
	assert.Contains(t, err.Error(), "less than one lot of 0.01 contracts")

	m.Limits.Amount.Min = d("1")
	_, err = m.AmountToContracts(d("0.005"))
	assert.ErrorIs(t, err, errs.ErrInvalidOrder)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestContractMultiplierDefaultsToOne(t *testing.T) {
	m := &Market{}
	assert.True(t, m.ContractMultiplier().Equal(decimal.NewFromInt(1)))
}

func TestMarketsSymbols(t *testing.T) {
	ms := Markets{{Symbol: "BTC/USDT"}, {Symbol: "ETH/USDT"}}
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, ms.Symbols())
}
