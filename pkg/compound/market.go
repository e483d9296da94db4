package compound

import (
	"ironbank/core"

	"github.com/holiman/uint256"
)

// ExchangeRate exchange rate of shares to underlying, scaled by 1e18
// exchange_rate = (market.total_cash + market.total_borrow) / market.total_supply
func ExchangeRate(m *core.Market) (*uint256.Int, error) {
	if m.TotalSupply.IsZero() {
		return m.Config.InitialExchangeRate.Clone(), nil
	}

	pool, err := Add(&m.TotalCash, &m.TotalBorrow)
	if err != nil {
		return nil, err
	}

	return MulDiv(pool, Scale(), &m.TotalSupply)
}

// Accrual interest realized by a single AccrueInterest
type Accrual struct {
	BorrowRate *uint256.Int
	Interest   *uint256.Int
	Fee        *uint256.Int
	// newly minted reserve shares
	Reserves *uint256.Int
}

// AccrueInterest advance the market to now
//
// the protocol fee is realized as newly minted supply shares credited to the reserves,
// so existing suppliers only earn the non-fee part of the interest.
func AccrueInterest(m *core.Market, now uint64) (*Accrual, error) {
	if now < m.LastUpdateTimestamp {
		return nil, Errorf(core.ErrStaleTimestamp, "timestamp %d before last update %d", now, m.LastUpdateTimestamp)
	}

	elapsed := now - m.LastUpdateTimestamp
	if elapsed == 0 {
		return nil, nil
	}

	rate, err := m.Config.InterestRateModel.GetBorrowRate(&m.TotalCash, &m.TotalBorrow)
	if err != nil {
		return nil, err
	}

	interestFactor, err := Mul(rate, uint256.NewInt(elapsed))
	if err != nil {
		return nil, err
	}

	interest, err := MulDiv(interestFactor, &m.TotalBorrow, Scale())
	if err != nil {
		return nil, err
	}

	totalBorrow, err := Add(&m.TotalBorrow, interest)
	if err != nil {
		return nil, err
	}

	fee, err := MulDiv(interest, Factor(m.Config.ReserveFactor), Factor(FactorScale))
	if err != nil {
		return nil, err
	}

	totalSupply := m.TotalSupply.Clone()
	if !fee.IsZero() {
		poolSize, err := Add(&m.TotalCash, totalBorrow)
		if err != nil {
			return nil, err
		}

		if poolSize.Eq(fee) {
			return nil, Errorf(core.ErrMathOverflow, "fee equals pool size")
		}

		if totalSupply, err = MulDiv(&m.TotalSupply, poolSize, new(uint256.Int).Sub(poolSize, fee)); err != nil {
			return nil, err
		}
	}

	indexDelta, err := MulDiv(interestFactor, &m.BorrowIndex, Scale())
	if err != nil {
		return nil, err
	}

	borrowIndex, err := Add(&m.BorrowIndex, indexDelta)
	if err != nil {
		return nil, err
	}

	minted := new(uint256.Int).Sub(totalSupply, &m.TotalSupply)
	reserves, err := Add(&m.TotalReserves, minted)
	if err != nil {
		return nil, err
	}

	m.TotalBorrow = *totalBorrow
	m.TotalSupply = *totalSupply
	m.TotalReserves = *reserves
	m.BorrowIndex = *borrowIndex
	m.LastUpdateTimestamp = now

	return &Accrual{
		BorrowRate: rate,
		Interest:   interest,
		Fee:        fee,
		Reserves:   minted,
	}, nil
}

// UtilizationRate borrow / (cash + borrow), scaled by 1e18
func UtilizationRate(cash, borrow *uint256.Int) *uint256.Int {
	total := new(uint256.Int).Add(cash, borrow)
	if total.IsZero() {
		return Zero()
	}

	z, err := MulDiv(borrow, Scale(), total)
	if err != nil {
		return Zero()
	}

	return z
}
