package pool

import (
	"context"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

func (p *Pool) requireOwner(tx *txn) error {
	return compound.Require(tx.caller == p.owner, core.ErrNotOwner, "owner only")
}

// TransferOwnership nominate a new owner, who takes over after AcceptOwnership
func (p *Pool) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	return p.run(ctx, "transfer_ownership", caller, func(tx *txn) error {
		if err := p.requireOwner(tx); err != nil {
			return err
		}

		old := p.pendingOwner
		p.pendingOwner = newOwner
		tx.onRollback(func() { p.pendingOwner = old })
		tx.emit(core.EventOwnershipTransfer, newOwner, "", core.EventData{}.Put("stage", "pending"))
		return nil
	})
}

// AcceptOwnership the pending owner becomes owner
func (p *Pool) AcceptOwnership(ctx context.Context, caller string) error {
	return p.run(ctx, "accept_ownership", caller, func(tx *txn) error {
		if err := compound.Require(p.pendingOwner != "" && tx.caller == p.pendingOwner, core.ErrNotPendingOwner, "pending owner only"); err != nil {
			return err
		}

		owner, pending := p.owner, p.pendingOwner
		p.owner, p.pendingOwner = pending, ""
		tx.onRollback(func() { p.owner, p.pendingOwner = owner, pending })
		tx.emit(core.EventOwnershipTransfer, pending, "", core.EventData{}.Put("stage", "accepted").Put("previous", owner))
		return nil
	})
}

func (p *Pool) setRole(tx *txn, role string, field *string, v string) error {
	if err := p.requireOwner(tx); err != nil {
		return err
	}

	if err := compound.Require(v != "", core.ErrInvalidAddress, "empty address"); err != nil {
		return err
	}

	old := *field
	*field = v
	tx.onRollback(func() { *field = old })
	tx.emit(core.EventRoleSet, v, "", core.EventData{}.Put("role", role).Put("previous", old))
	return nil
}

// SetMarketConfigurator owner only
func (p *Pool) SetMarketConfigurator(ctx context.Context, caller, configurator string) error {
	return p.run(ctx, "set_market_configurator", caller, func(tx *txn) error {
		return p.setRole(tx, "market_configurator", &p.marketConfigurator, configurator)
	})
}

// SetCreditLimitManager owner only
func (p *Pool) SetCreditLimitManager(ctx context.Context, caller, manager string) error {
	return p.run(ctx, "set_credit_limit_manager", caller, func(tx *txn) error {
		return p.setRole(tx, "credit_limit_manager", &p.creditLimitManager, manager)
	})
}

// SetPriceOracle owner only
func (p *Pool) SetPriceOracle(ctx context.Context, caller string, oracle core.IPriceOracle) error {
	return p.run(ctx, "set_price_oracle", caller, func(tx *txn) error {
		if err := p.requireOwner(tx); err != nil {
			return err
		}

		if err := compound.Require(oracle != nil, core.ErrInvalidAddress, "nil oracle"); err != nil {
			return err
		}

		old := p.oracle
		p.oracle = oracle
		tx.onRollback(func() { p.oracle = old })
		tx.emit(core.EventPriceOracleSet, "", "", nil)
		return nil
	})
}

// ReduceReserves burn shares of the reserves of market and pay the underlying to `to`, Max takes all reserves
//
// returns the paid amount
func (p *Pool) ReduceReserves(ctx context.Context, caller, market string, shares *uint256.Int, to string) (*uint256.Int, error) {
	var paid *uint256.Int
	err := p.run(ctx, "reduce_reserves", caller, func(tx *txn) error {
		if err := p.requireOwner(tx); err != nil {
			return err
		}

		m, err := p.listedMarket(tx, market)
		if err != nil {
			return err
		}

		if err := compound.Require(to != "", core.ErrInvalidAddress, "empty receiver"); err != nil {
			return err
		}

		if err := p.accrue(tx, m); err != nil {
			return err
		}

		if compound.IsMax(shares) {
			shares = m.TotalReserves.Clone()
		}

		if err := compound.Require(!shares.Gt(&m.TotalReserves), core.ErrInsufficientReserves, "insufficient reserves"); err != nil {
			return err
		}

		rate, err := compound.ExchangeRate(m)
		if err != nil {
			return err
		}

		amount, err := compound.ToAmount(shares, rate)
		if err != nil {
			return err
		}

		if err := compound.Require(!amount.Gt(&m.TotalCash), core.ErrInsufficientCash, "insufficient cash"); err != nil {
			return err
		}

		m.TotalCash = *new(uint256.Int).Sub(&m.TotalCash, amount)
		m.TotalReserves = *new(uint256.Int).Sub(&m.TotalReserves, shares)
		m.TotalSupply = *new(uint256.Int).Sub(&m.TotalSupply, shares)

		if err := p.push(tx, market, to, amount); err != nil {
			return err
		}

		paid = amount
		tx.emit(core.EventReservesReduced, to, market, core.EventData{}.
			Put("shares", shares).
			Put("amount", amount))
		return nil
	})

	return paid, err
}

// SeizeToken sweep asset held by the pool to `to`, for a listed market only the excess over its cash
//
// returns the swept amount
func (p *Pool) SeizeToken(ctx context.Context, caller, asset, to string) (*uint256.Int, error) {
	var seized *uint256.Int
	err := p.run(ctx, "seize_token", caller, func(tx *txn) error {
		if err := p.requireOwner(tx); err != nil {
			return err
		}

		if err := compound.Require(to != "", core.ErrInvalidAddress, "empty receiver"); err != nil {
			return err
		}

		balance, err := p.custodian.Balance(tx.ctx, asset)
		if err != nil {
			return err
		}

		amount := balance.Clone()
		if m, ok := p.markets[asset]; ok {
			amount = compound.Zero()
			if balance.Gt(&m.TotalCash) {
				amount.Sub(balance, &m.TotalCash)
			}
		}

		if err := p.push(tx, asset, to, amount); err != nil {
			return err
		}

		seized = amount
		tx.emit(core.EventTokenSeized, to, asset, core.EventData{}.Put("amount", amount))
		return nil
	})

	return seized, err
}
