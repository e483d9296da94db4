package pool

import (
	"context"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

// Supply supply amount of market asset from `from`, crediting shares to `to`
func (p *Pool) Supply(ctx context.Context, caller, from, to, market string, amount *uint256.Int) error {
	return p.run(ctx, "supply", caller, func(tx *txn) error {
		return p.supply(tx, from, to, market, amount)
	})
}

func (p *Pool) supply(tx *txn, from, to, asset string, amount *uint256.Int) error {
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

	if err := compound.Require(!m.Config.SupplyPaused, core.ErrSupplyPaused, "supply paused"); err != nil {
		return err
	}

	if err := compound.Require(!p.isCreditAccount(to), core.ErrCreditAccount, "cannot supply to credit account"); err != nil {
		return err
	}

	if err := compound.Require(to != "" && !amount.IsZero() && !compound.IsMax(amount), core.ErrInvalidAmount, "invalid supply"); err != nil {
		return err
	}

	if err := p.accrue(tx, m); err != nil {
		return err
	}

	// the rate is read before the cash of this supply lands in the pool
	rate, err := compound.ExchangeRate(m)
	if err != nil {
		return err
	}

	shares, err := compound.ToShares(amount, rate)
	if err != nil {
		return err
	}

	if err := compound.Require(!shares.IsZero(), core.ErrInvalidAmount, "supply too small"); err != nil {
		return err
	}

	totalSupply, err := compound.Add(&m.TotalSupply, shares)
	if err != nil {
		return err
	}

	if !m.Config.SupplyCap.IsZero() && totalSupply.Gt(&m.Config.SupplyCap) {
		return compound.Errorf(core.ErrSupplyCapReached, "supply cap reached")
	}

	totalCash, err := compound.Add(&m.TotalCash, amount)
	if err != nil {
		return err
	}

	userSupply, err := compound.Add(m.Supply(to), shares)
	if err != nil {
		return err
	}

	m.TotalCash = *totalCash
	m.TotalSupply = *totalSupply
	p.setSupply(tx, m, to, userSupply)

	if p.isEntered(to, asset) {
		if _, err := p.increaseCollateral(tx, m, to, shares); err != nil {
			return err
		}
	}

	if err := p.mint(tx, m.Config.IBToken, to, shares); err != nil {
		return err
	}

	if err := p.pull(tx, asset, from, amount); err != nil {
		return err
	}

	tx.emit(core.EventSupply, to, asset, core.EventData{}.
		Put("from", from).
		Put("amount", amount).
		Put("shares", shares))
	return nil
}

// Redeem redeem amount of underlying from `from` to `to`, Max redeems every share of `from`
//
// returns the redeemed amount of underlying
func (p *Pool) Redeem(ctx context.Context, caller, from, to, market string, amount *uint256.Int) (*uint256.Int, error) {
	var redeemed *uint256.Int
	err := p.run(ctx, "redeem", caller, func(tx *txn) (err error) {
		redeemed, err = p.redeem(tx, from, to, market, amount)
		return err
	})

	return redeemed, err
}

func (p *Pool) redeem(tx *txn, from, to, asset string, amount *uint256.Int) (*uint256.Int, error) {
	if err := p.authorize(tx, from); err != nil {
		return nil, err
	}

	m, err := p.listedMarket(tx, asset)
	if err != nil {
		return nil, err
	}

	if err := compound.Require(!p.isCreditAccount(from), core.ErrCreditAccount, "cannot redeem from credit account"); err != nil {
		return nil, err
	}

	if err := compound.Require(to != "", core.ErrInvalidAddress, "empty receiver"); err != nil {
		return nil, err
	}

	if err := p.accrue(tx, m); err != nil {
		return nil, err
	}

	rate, err := compound.ExchangeRate(m)
	if err != nil {
		return nil, err
	}

	var shares *uint256.Int
	if compound.IsMax(amount) {
		shares = m.Supply(from)
		if amount, err = compound.ToAmount(shares, rate); err != nil {
			return nil, err
		}
	} else if shares, err = compound.ToSharesUp(amount, rate); err != nil {
		return nil, err
	}

	if shares.IsZero() && amount.IsZero() {
		return compound.Zero(), nil
	}

	userSupply, err := compound.Sub(m.Supply(from), shares)
	if err != nil {
		return nil, compound.Errorf(core.ErrInsufficientBalance, "insufficient shares")
	}

	totalCash, err := compound.Sub(&m.TotalCash, amount)
	if err != nil {
		return nil, compound.Errorf(core.ErrInsufficientCash, "insufficient cash")
	}

	totalSupply, err := compound.Sub(&m.TotalSupply, shares)
	if err != nil {
		return nil, err
	}

	m.TotalCash = *totalCash
	m.TotalSupply = *totalSupply
	p.setSupply(tx, m, from, userSupply)

	if _, err := p.decreaseCollateralCapped(tx, m, from, shares); err != nil {
		return nil, err
	}

	if err := p.burn(tx, m.Config.IBToken, from, shares); err != nil {
		return nil, err
	}

	if err := p.push(tx, asset, to, amount); err != nil {
		return nil, err
	}

	if err := p.checkLiquidity(tx, from); err != nil {
		return nil, err
	}

	tx.emit(core.EventRedeem, from, asset, core.EventData{}.
		Put("to", to).
		Put("amount", amount).
		Put("shares", shares))
	return amount.Clone(), nil
}

// EnterMarket use the supply of user in market as collateral, bounded by the collateral cap
func (p *Pool) EnterMarket(ctx context.Context, caller, user, market string) error {
	return p.run(ctx, "enter_market", caller, func(tx *txn) error {
		return p.enterMarketAsCollateral(tx, user, market)
	})
}

func (p *Pool) enterMarketAsCollateral(tx *txn, user, asset string) error {
	if err := p.authorize(tx, user); err != nil {
		return err
	}

	m, err := p.listedMarket(tx, asset)
	if err != nil {
		return err
	}

	if err := compound.Require(!p.isCreditAccount(user), core.ErrCreditAccount, "credit account cannot enter market"); err != nil {
		return err
	}

	p.enterMarket(tx, user, asset)

	if uncollateralized := new(uint256.Int).Sub(m.Supply(user), m.Collateral(user)); !uncollateralized.IsZero() {
		if _, err := p.increaseCollateral(tx, m, user, uncollateralized); err != nil {
			return err
		}
	}

	return nil
}

// ExitMarket stop using market as collateral, requires no outstanding borrow in it
func (p *Pool) ExitMarket(ctx context.Context, caller, user, market string) error {
	return p.run(ctx, "exit_market", caller, func(tx *txn) error {
		return p.exitMarketAsCollateral(tx, user, market)
	})
}

func (p *Pool) exitMarketAsCollateral(tx *txn, user, asset string) error {
	if err := p.authorize(tx, user); err != nil {
		return err
	}

	m, err := p.listedMarket(tx, asset)
	if err != nil {
		return err
	}

	if err := compound.Require(p.isEntered(user, asset), core.ErrMarketNotEntered, "market not entered"); err != nil {
		return err
	}

	if err := p.accrue(tx, m); err != nil {
		return err
	}

	borrow, err := p.borrowBalance(m, user)
	if err != nil {
		return err
	}

	if err := compound.Require(borrow.IsZero(), core.ErrBorrowOutstanding, "borrow outstanding"); err != nil {
		return err
	}

	if err := p.decreaseCollateral(tx, m, user, m.Collateral(user)); err != nil {
		return err
	}

	p.exitMarket(tx, user, asset)
	return p.checkLiquidity(tx, user)
}
