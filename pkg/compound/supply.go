package compound

import (
	"ironbank/core"

	"github.com/holiman/uint256"
)

// ToShares shares = amount * 1e18 / exchange_rate
func ToShares(amount, exchangeRate *uint256.Int) (*uint256.Int, error) {
	return MulDiv(amount, Scale(), exchangeRate)
}

// ToAmount amount = shares * exchange_rate / 1e18
func ToAmount(shares, exchangeRate *uint256.Int) (*uint256.Int, error) {
	return MulDiv(shares, exchangeRate, Scale())
}

// CollateralGrant how much of amount can become collateral under cap
//
// a zero cap is uncapped, otherwise only the remaining headroom is granted
func CollateralGrant(totalCollateral, collateralCap, amount *uint256.Int) *uint256.Int {
	if collateralCap.IsZero() {
		return amount.Clone()
	}

	if !totalCollateral.Lt(collateralCap) {
		return Zero()
	}

	headroom := new(uint256.Int).Sub(collateralCap, totalCollateral)
	return Min(headroom, amount)
}

// ToSharesUp shares = ceil(amount * 1e18 / exchange_rate)
func ToSharesUp(amount, exchangeRate *uint256.Int) (*uint256.Int, error) {
	z, err := Mul(amount, Scale())
	if err != nil {
		return nil, err
	}

	if exchangeRate.IsZero() {
		return nil, Errorf(core.ErrMathOverflow, "division by zero")
	}

	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(z, exchangeRate, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}

	return q, nil
}
