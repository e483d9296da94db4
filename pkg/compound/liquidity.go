package compound

import (
	"ironbank/core"

	"github.com/holiman/uint256"
)

// CollateralValue collateral * exchange_rate * price * collateral_factor / 1e18 / 1e18 / FactorScale
func CollateralValue(collateral, exchangeRate, price *uint256.Int, collateralFactor uint16) (*uint256.Int, error) {
	v, err := Mul(collateral, exchangeRate)
	if err != nil {
		return nil, err
	}

	if v, err = Mul(v, price); err != nil {
		return nil, err
	}

	if v, err = Mul(v, Factor(collateralFactor)); err != nil {
		return nil, err
	}

	v.Div(v, Scale())
	v.Div(v, Scale())
	v.Div(v, Factor(FactorScale))
	return v, nil
}

// DebtValue borrow * price / 1e18
func DebtValue(borrow, price *uint256.Int) (*uint256.Int, error) {
	return MulDiv(borrow, price, Scale())
}

// SeizeAmount collateral shares seized for repaying repayAmount of borrowed asset
// seize = repay * (bonus * borrow_price / FactorScale) / (exchange_rate * collateral_price / 1e18)
func SeizeAmount(repayAmount, borrowPrice, collateralPrice, exchangeRate *uint256.Int, liquidationBonus uint16) (*uint256.Int, error) {
	if borrowPrice.IsZero() || collateralPrice.IsZero() {
		return nil, Errorf(core.ErrInvalidPrice, "invalid price")
	}

	numerator, err := MulDiv(Factor(liquidationBonus), borrowPrice, Factor(FactorScale))
	if err != nil {
		return nil, err
	}

	denominator, err := MulDiv(exchangeRate, collateralPrice, Scale())
	if err != nil {
		return nil, err
	}

	return MulDiv(repayAmount, numerator, denominator)
}
