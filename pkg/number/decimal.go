package number

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Fixed d * 10^exp truncated to an integer
func Fixed(d decimal.Decimal, exp int32) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, fmt.Errorf("negative value %s", d)
	}

	v, overflow := uint256.FromBig(d.Shift(exp).Truncate(0).BigInt())
	if overflow {
		return nil, fmt.Errorf("value %s overflows uint256", d)
	}

	return v, nil
}

// FromFixed v / 10^exp
func FromFixed(v *uint256.Int, exp int32) decimal.Decimal {
	return decimal.NewFromBigInt(v.ToBig(), -exp)
}

// Wad d scaled by 1e18
func Wad(d decimal.Decimal) (*uint256.Int, error) {
	return Fixed(d, 18)
}

// FromWad v / 1e18
func FromWad(v *uint256.Int) decimal.Decimal {
	return FromFixed(v, 18)
}

// Bps d in basis points, must fit in uint16
func Bps(d decimal.Decimal) (uint16, error) {
	v, err := Fixed(d, 4)
	if err != nil {
		return 0, err
	}

	if !v.IsUint64() || v.Uint64() > 0xffff {
		return 0, fmt.Errorf("factor %s out of range", d)
	}

	return uint16(v.Uint64()), nil
}
