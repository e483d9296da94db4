package pool

import (
	"context"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

// TransferIBToken move shares between users, only callable by the ib token of market
func (p *Pool) TransferIBToken(ctx context.Context, caller, market, from, to string, shares *uint256.Int) error {
	return p.run(ctx, "transfer_ib_token", caller, func(tx *txn) error {
		m, err := p.listedMarket(tx, market)
		if err != nil {
			return err
		}

		if err := compound.Require(caller == m.Config.IBToken.Address(), core.ErrNotShareToken, "ib token only"); err != nil {
			return err
		}

		if err := compound.Require(from != to, core.ErrSelfTransfer, "self transfer"); err != nil {
			return err
		}

		if err := compound.Require(from != "" && to != "", core.ErrInvalidAddress, "empty address"); err != nil {
			return err
		}

		if err := compound.Require(!p.isCreditAccount(to), core.ErrCreditAccount, "cannot transfer to credit account"); err != nil {
			return err
		}

		if err := p.accrue(tx, m); err != nil {
			return err
		}

		if shares.IsZero() {
			return nil
		}

		if err := p.moveShares(tx, m, from, to, shares); err != nil {
			return err
		}

		return p.checkLiquidity(tx, from)
	})
}

// moveShares move shares and the collateral backing them, min(shares, collateral of from)
func (p *Pool) moveShares(tx *txn, m *core.Market, from, to string, shares *uint256.Int) error {
	fromSupply, err := compound.Sub(m.Supply(from), shares)
	if err != nil {
		return compound.Errorf(core.ErrInsufficientBalance, "insufficient shares of %s", from)
	}

	toSupply, err := compound.Add(m.Supply(to), shares)
	if err != nil {
		return err
	}

	p.setSupply(tx, m, from, fromSupply)
	p.setSupply(tx, m, to, toSupply)

	moved, err := p.decreaseCollateralCapped(tx, m, from, shares)
	if err != nil {
		return err
	}

	if !moved.IsZero() {
		if _, err := p.increaseCollateral(tx, m, to, moved); err != nil {
			return err
		}
	}

	p.enterMarket(tx, to, m.Asset)

	tx.emit(core.EventTransferIBToken, from, m.Asset, core.EventData{}.
		Put("to", to).
		Put("shares", shares).
		Put("collateral", moved))
	return nil
}

// TransferDebt move debt between users, only callable by the debt token of market
func (p *Pool) TransferDebt(ctx context.Context, caller, market, from, to string, amount *uint256.Int) error {
	return p.run(ctx, "transfer_debt", caller, func(tx *txn) error {
		m, err := p.listedMarket(tx, market)
		if err != nil {
			return err
		}

		if err := compound.Require(caller == m.Config.DebtToken.Address(), core.ErrNotShareToken, "debt token only"); err != nil {
			return err
		}

		if err := compound.Require(from != to, core.ErrSelfTransfer, "self transfer"); err != nil {
			return err
		}

		if err := compound.Require(from != "" && to != "", core.ErrInvalidAddress, "empty address"); err != nil {
			return err
		}

		if err := p.accrue(tx, m); err != nil {
			return err
		}

		if amount.IsZero() {
			return nil
		}

		balance, err := p.moveDebt(tx, m, from, to, amount)
		if err != nil {
			return err
		}

		if p.isCreditAccount(to) {
			return p.checkCreditLimit(to, market, balance)
		}

		return p.checkLiquidity(tx, to)
	})
}

// moveDebt returns the new borrow balance of to
func (p *Pool) moveDebt(tx *txn, m *core.Market, from, to string, amount *uint256.Int) (*uint256.Int, error) {
	balance, err := p.borrowBalance(m, from)
	if err != nil {
		return nil, err
	}

	if amount.Gt(balance) {
		return nil, compound.Errorf(core.ErrInsufficientBalance, "debt of %s below %s", from, amount.Dec())
	}

	if _, err := p.updateBorrow(tx, m, from, compound.Zero(), amount); err != nil {
		return nil, err
	}

	toBalance, err := p.updateBorrow(tx, m, to, amount, compound.Zero())
	if err != nil {
		return nil, err
	}

	p.enterMarket(tx, to, m.Asset)

	tx.emit(core.EventTransferDebt, from, m.Asset, core.EventData{}.
		Put("to", to).
		Put("amount", amount))
	return toBalance, nil
}
