package core

import (
	"context"

	"github.com/holiman/uint256"
)

// IPriceOracle price oracle interface
//
// prices are scaled by 1e18, a zero price means the asset is not priced
type IPriceOracle interface {
	GetPrice(ctx context.Context, asset string) (*uint256.Int, error)
}

// IInterestRateModel interest rate model interface
type IInterestRateModel interface {
	// GetBorrowRate borrow rate per second, scaled by 1e18
	GetBorrowRate(cash, borrow *uint256.Int) (*uint256.Int, error)
}
