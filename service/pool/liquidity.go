package pool

import (
	"context"
	"fmt"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

func (p *Pool) price(ctx context.Context, asset string) (*uint256.Int, error) {
	price, err := p.oracle.GetPrice(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("get price of %s: %w", asset, err)
	}

	if price == nil || price.IsZero() {
		return nil, compound.Errorf(core.ErrInvalidPrice, "invalid price of %s", asset)
	}

	return price, nil
}

// accountLiquidity collateral value and debt value of user over the entered markets,
// at stored totals or, when current is set, as if interest were accrued now
func (p *Pool) accountLiquidity(ctx context.Context, user string, current bool) (*uint256.Int, *uint256.Int, error) {
	collateralValue, debtValue := compound.Zero(), compound.Zero()

	entered, ok := p.enteredMarkets[user]
	if !ok {
		return collateralValue, debtValue, nil
	}

	for _, asset := range entered.Values() {
		m, ok := p.markets[asset]
		if !ok || !m.Config.IsListed {
			continue
		}

		valued := m
		if current {
			c := p.accrued(m)
			valued = &c
		}

		collateral := m.Collateral(user)
		borrow, err := compound.CurrentBorrow(m.Borrow(user), &valued.BorrowIndex)
		if err != nil {
			return nil, nil, err
		}

		if collateral.IsZero() && borrow.IsZero() {
			continue
		}

		price, err := p.price(ctx, asset)
		if err != nil {
			return nil, nil, err
		}

		if !collateral.IsZero() {
			rate, err := compound.ExchangeRate(valued)
			if err != nil {
				return nil, nil, err
			}

			v, err := compound.CollateralValue(collateral, rate, price, m.Config.CollateralFactor)
			if err != nil {
				return nil, nil, err
			}

			if collateralValue, err = compound.Add(collateralValue, v); err != nil {
				return nil, nil, err
			}
		}

		if !borrow.IsZero() {
			v, err := compound.DebtValue(borrow, price)
			if err != nil {
				return nil, nil, err
			}

			if debtValue, err = compound.Add(debtValue, v); err != nil {
				return nil, nil, err
			}
		}
	}

	return collateralValue, debtValue, nil
}

func (p *Pool) isLiquidatable(ctx context.Context, user string, current bool) (bool, error) {
	collateralValue, debtValue, err := p.accountLiquidity(ctx, user, current)
	if err != nil {
		return false, err
	}

	return collateralValue.Lt(debtValue), nil
}

// checkAccountLiquidity check now, regardless of deferral
func (p *Pool) checkAccountLiquidity(tx *txn, user string) error {
	collateralValue, debtValue, err := p.accountLiquidity(tx.ctx, user, false)
	if err != nil {
		return err
	}

	if collateralValue.Lt(debtValue) {
		return compound.Errorf(core.ErrInsufficientCollateral, "insufficient collateral of %s: %s < %s", user, collateralValue.Dec(), debtValue.Dec())
	}

	return nil
}

// checkLiquidity check now, or mark the user dirty while the check is deferred
func (p *Pool) checkLiquidity(tx *txn, user string) error {
	switch p.liquidityCheckStatus[user] {
	case core.LiquidityCheckDeferred:
		p.setLiquidityCheckStatus(tx, user, core.LiquidityCheckDirty)
		return nil
	case core.LiquidityCheckDirty:
		return nil
	}

	return p.checkAccountLiquidity(tx, user)
}

// checkCreditLimit credit accounts are bounded by their per market credit limit
func (p *Pool) checkCreditLimit(user, asset string, balance *uint256.Int) error {
	limit := p.creditLimits[user][asset]
	if balance.Gt(&limit) {
		return compound.Errorf(core.ErrInsufficientCreditLimit, "borrow balance %s exceeds credit limit %s", balance.Dec(), limit.Dec())
	}

	return nil
}

func (p *Pool) setLiquidityCheckStatus(tx *txn, user string, status core.LiquidityCheckStatus) {
	old, ok := p.liquidityCheckStatus[user]
	tx.onRollback(func() {
		if ok {
			p.liquidityCheckStatus[user] = old
		} else {
			delete(p.liquidityCheckStatus, user)
		}
	})

	if status == core.LiquidityCheckNormal {
		delete(p.liquidityCheckStatus, user)
		return
	}

	p.liquidityCheckStatus[user] = status
}

func (p *Pool) deferLiquidityCheck(tx *txn, user string, callback core.DeferredCallback, data []byte) error {
	if err := p.authorize(tx, user); err != nil {
		return err
	}

	if err := compound.Require(!p.isCreditAccount(user), core.ErrCreditAccount, "credit account cannot defer liquidity check"); err != nil {
		return err
	}

	if err := compound.Require(p.liquidityCheckStatus[user] == core.LiquidityCheckNormal, core.ErrReentry, "reentry"); err != nil {
		return err
	}

	if err := compound.Require(callback != nil, core.ErrInvalidAddress, "callback required"); err != nil {
		return err
	}

	p.setLiquidityCheckStatus(tx, user, core.LiquidityCheckDeferred)

	batch := newBatch(p, tx)
	err := func() error {
		p.deferring.Add(1)
		defer p.deferring.Add(-1)
		return callback.OnDeferredLiquidityCheck(tx.ctx, batch, data)
	}()
	batch.close()
	if err != nil {
		return err
	}

	status := p.liquidityCheckStatus[user]
	p.setLiquidityCheckStatus(tx, user, core.LiquidityCheckNormal)
	if status == core.LiquidityCheckDirty {
		return p.checkAccountLiquidity(tx, user)
	}

	return nil
}

// DeferLiquidityCheck run callback with a batch, checking the liquidity of user once at the end
func (p *Pool) DeferLiquidityCheck(ctx context.Context, caller, user string, callback core.DeferredCallback, data []byte) error {
	return p.run(ctx, "defer_liquidity_check", caller, func(tx *txn) error {
		return p.deferLiquidityCheck(tx, user, callback, data)
	})
}
