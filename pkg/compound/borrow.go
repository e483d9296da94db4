package compound

import (
	"ironbank/core"

	"github.com/holiman/uint256"
)

// CurrentBorrow compounded borrow balance
// balance = snapshot.balance * market.borrow_index / snapshot.index
func CurrentBorrow(b core.BorrowSnapshot, marketIndex *uint256.Int) (*uint256.Int, error) {
	if b.Balance.IsZero() {
		return Zero(), nil
	}

	return MulDiv(&b.Balance, marketIndex, &b.Index)
}

// NextBorrow settle the snapshot at marketIndex and apply either increase or decrease
func NextBorrow(b core.BorrowSnapshot, marketIndex, increase, decrease *uint256.Int) (core.BorrowSnapshot, error) {
	if !increase.IsZero() && !decrease.IsZero() {
		return b, Errorf(core.ErrIncreaseAndDecrease, "increase and decrease borrow together")
	}

	balance, err := CurrentBorrow(b, marketIndex)
	if err != nil {
		return b, err
	}

	if !increase.IsZero() {
		if balance, err = Add(balance, increase); err != nil {
			return b, err
		}
	} else if !decrease.IsZero() {
		if balance, err = Sub(balance, decrease); err != nil {
			return b, Errorf(core.ErrRepayTooMuch, "decrease %s exceeds borrow balance", decrease.Dec())
		}
	}

	return core.BorrowSnapshot{Balance: *balance, Index: *marketIndex}, nil
}
