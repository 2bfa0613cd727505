package model

import (
	"fmt"

	"github.com/lemconn/ccxt/errs"
	"github.com/shopspring/decimal"
)

// MarketType 市场类型
type MarketType string

const (
	// MarketTypeSpot 现货市场
	MarketTypeSpot MarketType = "spot"
	// MarketTypeSwap 永续合约市场
	MarketTypeSwap MarketType = "swap"
)

// MinMax 取值范围，零值表示不限制
type MinMax struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Precision 精度信息
//
// Amount / Price 为小数位数；AmountStep / PriceStep 为交易所给出的步长，
// 步长不是 10 的整数次幂（例如 0.5）时按步长截断。
// 合约市场中，若交易所按张数下单（OKX、Gate），Amount 相关字段表示张数。
type Precision struct {
	Amount     int             `json:"amount"`
	Price      int             `json:"price"`
	AmountStep decimal.Decimal `json:"amount_step"`
	PriceStep  decimal.Decimal `json:"price_step"`
}

// Limits 下单限制
type Limits struct {
	Amount   MinMax `json:"amount"`
	Price    MinMax `json:"price"`
	Cost     MinMax `json:"cost"`
	Leverage MinMax `json:"leverage"`
}

// Market 市场信息
type Market struct {
	// ID 交易所原始市场ID，如 "BTCUSDT"、"BTC-USDT-SWAP"、"BTC_USDT"
	ID string `json:"id"`
	// Symbol 统一交易对，现货 "BTC/USDT"，永续 "BTC/USDT:USDT"
	Symbol string `json:"symbol"`
	// Base 基础货币
	Base string `json:"base"`
	// Quote 计价货币
	Quote string `json:"quote"`
	// Settle 结算货币（合约市场）
	Settle string `json:"settle,omitempty"`
	// Type 市场类型
	Type MarketType `json:"type"`
	// Active 是否可交易
	Active bool `json:"active"`
	// Contract 是否为合约市场
	Contract bool `json:"contract"`
	// Linear 是否为 U 本位合约
	Linear bool `json:"linear,omitempty"`
	// Inverse 是否为币本位合约
	Inverse bool `json:"inverse,omitempty"`
	// ContractSize 每张合约对应的基础货币数量，现货和按币下单的合约为 1
	ContractSize decimal.Decimal `json:"contract_size"`
	// Precision 精度
	Precision Precision `json:"precision"`
	// Limits 下单限制
	Limits Limits `json:"limits"`
}

// Markets 市场列表
type Markets []*Market

// Symbols 返回全部统一交易对
func (ms Markets) Symbols() []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Symbol)
	}
	return out
}

// IsSpot 是否为现货市场
func (m *Market) IsSpot() bool { return m.Type == MarketTypeSpot }

// ContractMultiplier 返回合约面值，未设置时为 1
func (m *Market) ContractMultiplier() decimal.Decimal {
	if m.ContractSize.IsPositive() {
		return m.ContractSize
	}
	return decimal.NewFromInt(1)
}

// AmountToPrecision 将数量向零截断到交易所精度
func (m *Market) AmountToPrecision(amount decimal.Decimal) decimal.Decimal {
	return truncate(amount, m.Precision.AmountStep, m.Precision.Amount)
}

// PriceToPrecision 将价格向零截断到交易所精度
func (m *Market) PriceToPrecision(price decimal.Decimal) decimal.Decimal {
	return truncate(price, m.Precision.PriceStep, m.Precision.Price)
}

// AmountToContracts 将基础货币数量换算为合约张数，向零截断到张数步长
//
// 张数步长可以是小数（如 OKX 的 lotSz=0.01），步长为 1 时即取整张。
// 截断后不足一个步长或低于最小下单量时返回 errs.ErrInvalidOrder。
func (m *Market) AmountToContracts(amount decimal.Decimal) (decimal.Decimal, error) {
	contracts := m.AmountToPrecision(amount.Div(m.ContractMultiplier()))
	if !contracts.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount %s %s is less than one lot of %s contracts",
			errs.ErrInvalidOrder, amount, m.Base, m.lotStep())
	}
	if err := m.CheckAmount(contracts); err != nil {
		return decimal.Zero, err
	}
	return contracts, nil
}

func (m *Market) lotStep() decimal.Decimal {
	if m.Precision.AmountStep.IsPositive() {
		return m.Precision.AmountStep
	}
	return decimal.New(1, -int32(m.Precision.Amount))
}

// ContractsToAmount 将合约张数换算为基础货币数量
func (m *Market) ContractsToAmount(contracts decimal.Decimal) decimal.Decimal {
	return contracts.Mul(m.ContractMultiplier())
}

// CheckAmount 校验下单数量是否在限制范围内
func (m *Market) CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", errs.ErrInvalidOrder)
	}
	if lim := m.Limits.Amount.Min; lim.IsPositive() && amount.LessThan(lim) {
		return fmt.Errorf("%w: amount %s below minimum %s for %s", errs.ErrInvalidOrder, amount, lim, m.Symbol)
	}
	if lim := m.Limits.Amount.Max; lim.IsPositive() && amount.GreaterThan(lim) {
		return fmt.Errorf("%w: amount %s above maximum %s for %s", errs.ErrInvalidOrder, amount, lim, m.Symbol)
	}
	return nil
}

// PrecisionFromStep 由步长推导小数位数，例如 0.001 -> 3，1 -> 0，0.5 -> 1
func PrecisionFromStep(step decimal.Decimal) int {
	if !step.IsPositive() {
		return 0
	}
	places := -step.Exponent()
	// 去掉尾随零：0.0100 的 exponent 为 -4，实际精度为 2
	for places > 0 && step.Shift(places-1).Equal(step.Shift(places-1).Truncate(0)) {
		places--
	}
	if places < 0 {
		return 0
	}
	return int(places)
}

// PrecisionFromDigits 由小数位数生成步长，例如 3 -> 0.001
func PrecisionFromDigits(digits int) decimal.Decimal {
	return decimal.New(1, -int32(digits))
}

func truncate(v, step decimal.Decimal, places int) decimal.Decimal {
	if step.IsPositive() {
		v = v.Div(step).Truncate(0).Mul(step)
	}
	return v.Truncate(int32(places))
}
