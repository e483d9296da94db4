package compound

import (
	"errors"
	"testing"

	"ironbank/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRate struct {
	rate *uint256.Int
}

func (f fixedRate) GetBorrowRate(cash, borrow *uint256.Int) (*uint256.Int, error) {
	return f.rate.Clone(), nil
}

func newMarket(rate uint64, reserveFactor uint16) *core.Market {
	m := core.NewMarket("usdc")
	m.Config.IsListed = true
	m.Config.ReserveFactor = reserveFactor
	m.Config.InitialExchangeRate = *Scale()
	m.Config.InterestRateModel = fixedRate{rate: uint256.NewInt(rate)}
	m.BorrowIndex = *Scale()
	m.LastUpdateTimestamp = 100
	return m
}

func TestExchangeRate(t *testing.T) {
	m := newMarket(0, 0)
	rate, err := ExchangeRate(m)
	require.Nil(t, err)
	assert.Equal(t, "1000000000000000000", rate.Dec())

	m.TotalCash = *uint256.NewInt(500)
	m.TotalBorrow = *uint256.NewInt(600)
	m.TotalSupply = *uint256.NewInt(1000)
	rate, err = ExchangeRate(m)
	require.Nil(t, err)
	assert.Equal(t, "1100000000000000000", rate.Dec())
}

func TestAccrueInterest(t *testing.T) {
	// 1000 supplied, 500 borrowed, 20% per second
	m := newMarket(2e17, 0)
	m.TotalCash = *uint256.NewInt(500)
	m.TotalBorrow = *uint256.NewInt(500)
	m.TotalSupply = *uint256.NewInt(1000)

	accrual, err := AccrueInterest(m, 101)
	require.Nil(t, err)
	assert.Equal(t, uint64(100), accrual.Interest.Uint64())
	assert.True(t, accrual.Fee.IsZero())
	assert.Equal(t, uint64(600), m.TotalBorrow.Uint64())
	assert.Equal(t, uint64(1000), m.TotalSupply.Uint64())
	assert.Equal(t, "1200000000000000000", m.BorrowIndex.Dec())
	assert.Equal(t, uint64(101), m.LastUpdateTimestamp)

	rate, err := ExchangeRate(m)
	require.Nil(t, err)
	assert.Equal(t, "1100000000000000000", rate.Dec())

	redeemed, err := ToAmount(uint256.NewInt(1000), rate)
	require.Nil(t, err)
	assert.Equal(t, uint64(1100), redeemed.Uint64())

	t.Run("same timestamp is a no-op", func(t *testing.T) {
		accrual, err := AccrueInterest(m, 101)
		require.Nil(t, err)
		assert.Nil(t, accrual)
		assert.Equal(t, uint64(600), m.TotalBorrow.Uint64())
	})

	t.Run("stale timestamp", func(t *testing.T) {
		_, err := AccrueInterest(m, 50)
		assert.True(t, errors.Is(err, core.ErrStaleTimestamp))
	})
}

func TestAccrueInterestWithReserves(t *testing.T) {
	m := newMarket(1e17, 5000)
	m.TotalCash = *uint256.NewInt(1000)
	m.TotalBorrow = *uint256.NewInt(1000)
	m.TotalSupply = *uint256.NewInt(2000)

	accrual, err := AccrueInterest(m, 101)
	require.Nil(t, err)
	// interest 100, fee 50, pool 2100
	assert.Equal(t, uint64(100), accrual.Interest.Uint64())
	assert.Equal(t, uint64(50), accrual.Fee.Uint64())
	// 2000 * 2100 / 2050
	assert.Equal(t, uint64(2048), m.TotalSupply.Uint64())
	assert.Equal(t, uint64(48), m.TotalReserves.Uint64())
	assert.Equal(t, uint64(48), accrual.Reserves.Uint64())
}

func TestExchangeRateMonotonic(t *testing.T) {
	m := newMarket(3e15, 1500)
	m.TotalCash = *uint256.NewInt(7_000_000)
	m.TotalBorrow = *uint256.NewInt(3_000_000)
	m.TotalSupply = *uint256.NewInt(10_000_000)

	last, err := ExchangeRate(m)
	require.Nil(t, err)
	for now := uint64(101); now < 1000; now += 37 {
		_, err := AccrueInterest(m, now)
		require.Nil(t, err)

		rate, err := ExchangeRate(m)
		require.Nil(t, err)
		assert.False(t, rate.Lt(last), "exchange rate decreased at %d", now)
		last = rate
	}
}

func TestBorrowCompounding(t *testing.T) {
	index := Scale()
	b, err := NextBorrow(core.BorrowSnapshot{}, index, uint256.NewInt(1000), Zero())
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), b.Balance.Uint64())

	// index grows by 1.5x
	grown := uint256.NewInt(15e17)
	balance, err := CurrentBorrow(b, grown)
	require.Nil(t, err)
	assert.Equal(t, uint64(1500), balance.Uint64())

	b, err = NextBorrow(b, grown, Zero(), uint256.NewInt(500))
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), b.Balance.Uint64())
	assert.Equal(t, grown.Dec(), b.Index.Dec())

	_, err = NextBorrow(b, grown, uint256.NewInt(1), uint256.NewInt(1))
	assert.True(t, errors.Is(err, core.ErrIncreaseAndDecrease))

	_, err = NextBorrow(b, grown, Zero(), uint256.NewInt(1001))
	assert.True(t, errors.Is(err, core.ErrRepayTooMuch))

	zero, err := CurrentBorrow(core.BorrowSnapshot{}, grown)
	require.Nil(t, err)
	assert.True(t, zero.IsZero())
}

func TestCollateralGrant(t *testing.T) {
	for _, tc := range []struct {
		name               string
		total, cap, amount uint64
		expect             uint64
	}{
		{"uncapped", 500, 0, 1000, 1000},
		{"enough headroom", 500, 2000, 1000, 1000},
		{"partial", 500, 1200, 1000, 700},
		{"full", 1200, 1200, 1000, 0},
		{"over", 1300, 1200, 1000, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := CollateralGrant(uint256.NewInt(tc.total), uint256.NewInt(tc.cap), uint256.NewInt(tc.amount))
			assert.Equal(t, tc.expect, got.Uint64())
		})
	}
}

func TestSeizeAmount(t *testing.T) {
	price := uint256.NewInt(2e18)
	seize, err := SeizeAmount(uint256.NewInt(100), price, price, Scale(), 11000)
	require.Nil(t, err)
	assert.Equal(t, uint64(110), seize.Uint64())

	_, err = SeizeAmount(uint256.NewInt(100), Zero(), price, Scale(), 11000)
	assert.True(t, errors.Is(err, core.ErrInvalidPrice))
}

func TestLiquidityValues(t *testing.T) {
	// 1000 shares at 1.0, price 1.0, 75% collateral factor
	v, err := CollateralValue(uint256.NewInt(1000), Scale(), Scale(), 7500)
	require.Nil(t, err)
	assert.Equal(t, uint64(750), v.Uint64())

	d, err := DebtValue(uint256.NewInt(700), uint256.NewInt(2e18))
	require.Nil(t, err)
	assert.Equal(t, uint64(1400), d.Uint64())

	_, err = CollateralValue(Max(), Scale(), Scale(), 7500)
	assert.True(t, errors.Is(err, core.ErrMathOverflow))
}

func TestRequire(t *testing.T) {
	assert.Nil(t, Require(true, core.ErrMarketFrozen, "frozen"))

	err := Require(false, core.ErrMarketFrozen, "frozen")
	assert.True(t, errors.Is(err, core.ErrMarketFrozen))
	assert.Equal(t, core.ErrMarketFrozen, CodeOf(err))
	assert.Equal(t, "100202: frozen", err.Error())
}
