package compound

import (
	"ironbank/core"

	"github.com/holiman/uint256"
)

const (
	// FactorScale scale of collateral, reserve factors and liquidation bonus
	FactorScale uint16 = 10000
	// MaxLiquidationBonus 125%
	MaxLiquidationBonus uint16 = 12500
)

// Scale 1e18
func Scale() *uint256.Int {
	return uint256.NewInt(1e18)
}

// Max the sentinel meaning "all of it"
func Max() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// IsMax amount equals the sentinel
func IsMax(v *uint256.Int) bool {
	return v.Eq(Max())
}

// Zero new zero value
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// Mul x * y, fails on overflow
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, Errorf(core.ErrMathOverflow, "mul overflow: %s * %s", x.Dec(), y.Dec())
	}

	return z, nil
}

// Add x + y, fails on overflow
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, Errorf(core.ErrMathOverflow, "add overflow: %s + %s", x.Dec(), y.Dec())
	}

	return z, nil
}

// Sub x - y, fails on underflow
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, Errorf(core.ErrMathOverflow, "sub underflow: %s - %s", x.Dec(), y.Dec())
	}

	return z, nil
}

// Div x / y truncated, fails on division by zero
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, Errorf(core.ErrMathOverflow, "division by zero")
	}

	return new(uint256.Int).Div(x, y), nil
}

// MulDiv x * y / d, each step truncated and checked
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, err := Mul(x, y)
	if err != nil {
		return nil, err
	}

	return Div(z, d)
}

// Min the smaller of x and y
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}

	return y.Clone()
}

// Factor uint16 factor as uint256
func Factor(f uint16) *uint256.Int {
	return uint256.NewInt(uint64(f))
}
