package irm

import (
	"ironbank/core"
	"ironbank/pkg/compound"
	"ironbank/pkg/number"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// SecondsPerYear 365 days
const SecondsPerYear = 365 * 24 * 60 * 60

// JumpRateModel borrow rate rising linearly with utilization and jumping after kink
type JumpRateModel struct {
	BaseRatePerSecond       uint256.Int
	MultiplierPerSecond     uint256.Int
	JumpMultiplierPerSecond uint256.Int
	// utilization, scaled by 1e18
	Kink uint256.Int
}

var _ core.IInterestRateModel = (*JumpRateModel)(nil)

// NewJumpRateModel from yearly rates, e.g. baseRate 0.025 is 2.5% per year
func NewJumpRateModel(baseRate, multiplier, jumpMultiplier, kink decimal.Decimal) (*JumpRateModel, error) {
	var (
		m   JumpRateModel
		err error
	)

	year := decimal.NewFromInt(SecondsPerYear)
	for _, f := range []struct {
		v   decimal.Decimal
		out *uint256.Int
	}{
		{baseRate.Div(year), &m.BaseRatePerSecond},
		{multiplier.Div(year), &m.MultiplierPerSecond},
		{jumpMultiplier.Div(year), &m.JumpMultiplierPerSecond},
		{kink, &m.Kink},
	} {
		v, e := number.Wad(f.v)
		if e != nil {
			err = e
			break
		}

		f.out.Set(v)
	}

	if err != nil {
		return nil, err
	}

	return &m, nil
}

// GetBorrowRate per second borrow rate
func (m *JumpRateModel) GetBorrowRate(cash, borrow *uint256.Int) (*uint256.Int, error) {
	util := compound.UtilizationRate(cash, borrow)

	if m.Kink.IsZero() || !util.Gt(&m.Kink) {
		return m.linear(util)
	}

	normal, err := m.linear(&m.Kink)
	if err != nil {
		return nil, err
	}

	excess := new(uint256.Int).Sub(util, &m.Kink)
	jump, err := compound.MulDiv(excess, &m.JumpMultiplierPerSecond, compound.Scale())
	if err != nil {
		return nil, err
	}

	return compound.Add(normal, jump)
}

// GetSupplyRate per second supply rate, borrow rate * utilization * (1 - reserve factor)
func (m *JumpRateModel) GetSupplyRate(cash, borrow *uint256.Int, reserveFactor uint16) (*uint256.Int, error) {
	borrowRate, err := m.GetBorrowRate(cash, borrow)
	if err != nil {
		return nil, err
	}

	toPool, err := compound.MulDiv(borrowRate, compound.Factor(compound.FactorScale-reserveFactor), compound.Factor(compound.FactorScale))
	if err != nil {
		return nil, err
	}

	return compound.MulDiv(toPool, compound.UtilizationRate(cash, borrow), compound.Scale())
}

func (m *JumpRateModel) linear(util *uint256.Int) (*uint256.Int, error) {
	v, err := compound.MulDiv(util, &m.MultiplierPerSecond, compound.Scale())
	if err != nil {
		return nil, err
	}

	return compound.Add(v, &m.BaseRatePerSecond)
}

// APY yearly rate of a per second rate, without compounding
func APY(perSecond *uint256.Int) decimal.Decimal {
	return number.FromWad(perSecond).Mul(decimal.NewFromInt(SecondsPerYear))
}
