package pool

import (
	"context"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

// Borrow borrow amount of market asset on behalf of `from`, paying it to `to`
func (p *Pool) Borrow(ctx context.Context, caller, from, to, market string, amount *uint256.Int) error {
	return p.run(ctx, "borrow", caller, func(tx *txn) error {
		return p.borrow(tx, from, to, market, amount)
	})
}

func (p *Pool) borrow(tx *txn, from, to, asset string, amount *uint256.Int) error {
	if err := p.authorize(tx, from); err != nil {
		return err
	}

	m, err := p.listedMarket(tx, asset)
	if err != nil {
		return err
	}

	if err := compound.Require(!m.Config.IsFrozen, core.ErrMarketFrozen, "market frozen"); err != nil {
		return err
	}

	if err := compound.Require(!m.Config.BorrowPaused, core.ErrBorrowPaused, "borrow paused"); err != nil {
		return err
	}

	if err := compound.Require(to != "" && !amount.IsZero() && !compound.IsMax(amount), core.ErrInvalidAmount, "invalid borrow"); err != nil {
		return err
	}

	if err := p.accrue(tx, m); err != nil {
		return err
	}

	if err := compound.Require(!m.TotalCash.Lt(amount), core.ErrInsufficientCash, "insufficient cash"); err != nil {
		return err
	}

	totalBorrow, err := compound.Add(&m.TotalBorrow, amount)
	if err != nil {
		return err
	}

	if !m.Config.BorrowCap.IsZero() && totalBorrow.Gt(&m.Config.BorrowCap) {
		return compound.Errorf(core.ErrBorrowCapReached, "borrow cap reached")
	}

	p.enterMarket(tx, from, asset)

	m.TotalCash = *new(uint256.Int).Sub(&m.TotalCash, amount)
	m.TotalBorrow = *totalBorrow

	balance, err := p.updateBorrow(tx, m, from, amount, compound.Zero())
	if err != nil {
		return err
	}

	if err := p.mint(tx, m.Config.DebtToken, from, amount); err != nil {
		return err
	}

	if err := p.push(tx, asset, to, amount); err != nil {
		return err
	}

	if p.isCreditAccount(from) {
		if err := compound.Require(from == to, core.ErrCreditAccount, "credit account can only borrow to itself"); err != nil {
			return err
		}

		if err := p.checkCreditLimit(from, asset, balance); err != nil {
			return err
		}
	} else if err := p.checkLiquidity(tx, from); err != nil {
		return err
	}

	tx.emit(core.EventBorrow, from, asset, core.EventData{}.
		Put("to", to).
		Put("amount", amount).
		Put("balance", balance))
	return nil
}

// Repay repay amount of the borrow of `to` with assets of `from`, Max repays the whole borrow
//
// returns the repaid amount
func (p *Pool) Repay(ctx context.Context, caller, from, to, market string, amount *uint256.Int) (*uint256.Int, error) {
	var repaid *uint256.Int
	err := p.run(ctx, "repay", caller, func(tx *txn) (err error) {
		repaid, err = p.repay(tx, from, to, market, amount)
		return err
	})

	return repaid, err
}

func (p *Pool) repay(tx *txn, from, to, asset string, amount *uint256.Int) (*uint256.Int, error) {
	if err := p.authorize(tx, from); err != nil {
		return nil, err
	}

	m, err := p.listedMarket(tx, asset)
	if err != nil {
		return nil, err
	}

	if p.isCreditAccount(to) {
		if err := compound.Require(from == to, core.ErrCreditAccount, "cannot repay for credit account"); err != nil {
			return nil, err
		}
	}

	if err := p.accrue(tx, m); err != nil {
		return nil, err
	}

	balance, err := p.borrowBalance(m, to)
	if err != nil {
		return nil, err
	}

	if compound.IsMax(amount) {
		amount = balance
	}

	if err := compound.Require(!amount.Gt(balance), core.ErrRepayTooMuch, "repay too much"); err != nil {
		return nil, err
	}

	if amount.IsZero() {
		return compound.Zero(), nil
	}

	newBalance, err := p.updateBorrow(tx, m, to, compound.Zero(), amount)
	if err != nil {
		return nil, err
	}

	totalCash, err := compound.Add(&m.TotalCash, amount)
	if err != nil {
		return nil, err
	}

	// index rounding can leave the user balance above the market total
	totalBorrow := compound.Zero()
	if amount.Lt(&m.TotalBorrow) {
		totalBorrow.Sub(&m.TotalBorrow, amount)
	}

	m.TotalCash = *totalCash
	m.TotalBorrow = *totalBorrow

	if err := p.burn(tx, m.Config.DebtToken, to, amount); err != nil {
		return nil, err
	}

	if err := p.pull(tx, asset, from, amount); err != nil {
		return nil, err
	}

	tx.emit(core.EventRepay, to, asset, core.EventData{}.
		Put("from", from).
		Put("amount", amount).
		Put("balance", newBalance))
	return amount.Clone(), nil
}
