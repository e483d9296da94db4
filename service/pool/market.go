package pool

import (
	"context"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

func validateMarketConfig(asset string, cfg *core.MarketConfig) error {
	if cfg.IBToken == nil || cfg.DebtToken == nil || cfg.InterestRateModel == nil {
		return compound.Errorf(core.ErrInvalidMarketConfig, "tokens and interest rate model required")
	}

	if cfg.IBToken.Underlying() != asset || cfg.DebtToken.Underlying() != asset {
		return compound.Errorf(core.ErrInvalidMarketConfig, "token underlying mismatch")
	}

	if cfg.InitialExchangeRate.IsZero() {
		return compound.Errorf(core.ErrInvalidMarketConfig, "invalid initial exchange rate")
	}

	if cfg.CollateralFactor > compound.FactorScale || cfg.ReserveFactor > compound.FactorScale {
		return compound.Errorf(core.ErrInvalidMarketConfig, "factor out of range")
	}

	if cfg.CollateralFactor > 0 || cfg.LiquidationBonus > 0 {
		if cfg.LiquidationBonus < compound.FactorScale || cfg.LiquidationBonus > compound.MaxLiquidationBonus {
			return compound.Errorf(core.ErrInvalidMarketConfig, "invalid liquidation bonus")
		}

		// a liquidation must not seize more value than the collateral backs
		if uint32(cfg.CollateralFactor)*uint32(cfg.LiquidationBonus) > uint32(compound.FactorScale)*uint32(compound.FactorScale) {
			return compound.Errorf(core.ErrInvalidMarketConfig, "collateral factor times liquidation bonus exceeds 1")
		}
	}

	return nil
}

func (p *Pool) requireMarketConfigurator(tx *txn) error {
	return compound.Require(tx.caller == p.marketConfigurator, core.ErrNotMarketConfigurator, "market configurator only")
}

// ListMarket list asset with cfg
func (p *Pool) ListMarket(ctx context.Context, caller, asset string, cfg core.MarketConfig) error {
	return p.run(ctx, "list_market", caller, func(tx *txn) error {
		if err := p.requireMarketConfigurator(tx); err != nil {
			return err
		}

		if err := compound.Require(asset != "", core.ErrInvalidAddress, "empty asset"); err != nil {
			return err
		}

		if _, ok := p.markets[asset]; ok {
			return compound.Errorf(core.ErrMarketAlreadyListed, "market %s already listed", asset)
		}

		if err := validateMarketConfig(asset, &cfg); err != nil {
			return err
		}

		cfg.IsListed = true
		m := core.NewMarket(asset)
		m.Config = cfg
		m.BorrowIndex = *compound.Scale()
		m.LastUpdateTimestamp = tx.now

		p.markets[asset] = m
		p.allMarkets.Add(asset)
		tx.onRollback(func() {
			delete(p.markets, asset)
			p.allMarkets.Remove(asset)
		})

		tx.emit(core.EventMarketListed, "", asset, marketConfigData(&cfg))
		return nil
	})
}

// DelistMarket remove a paused market without collateral
func (p *Pool) DelistMarket(ctx context.Context, caller, asset string) error {
	return p.run(ctx, "delist_market", caller, func(tx *txn) error {
		if err := p.requireMarketConfigurator(tx); err != nil {
			return err
		}

		m, err := p.listedMarket(tx, asset)
		if err != nil {
			return err
		}

		if err := compound.Require(m.Config.SupplyPaused && m.Config.BorrowPaused && m.TotalCollateral.IsZero(), core.ErrMarketNotDelistable, "market not paused or has collateral"); err != nil {
			return err
		}

		delete(p.markets, asset)
		p.allMarkets.Remove(asset)
		tx.onRollback(func() {
			p.markets[asset] = m
			p.allMarkets.Add(asset)
		})

		tx.emit(core.EventMarketDelisted, "", asset, nil)
		return nil
	})
}

// SetMarketConfig replace the config of a listed market, interest is accrued under the old config first
func (p *Pool) SetMarketConfig(ctx context.Context, caller, asset string, cfg core.MarketConfig) error {
	return p.run(ctx, "set_market_config", caller, func(tx *txn) error {
		if err := p.requireMarketConfigurator(tx); err != nil {
			return err
		}

		m, err := p.listedMarket(tx, asset)
		if err != nil {
			return err
		}

		if err := validateMarketConfig(asset, &cfg); err != nil {
			return err
		}

		if cfg.IBToken.Address() != m.Config.IBToken.Address() || cfg.DebtToken.Address() != m.Config.DebtToken.Address() {
			return compound.Errorf(core.ErrInvalidMarketConfig, "tokens cannot change")
		}

		if err := p.accrue(tx, m); err != nil {
			return err
		}

		cfg.IsListed = true
		m.Config = cfg
		tx.emit(core.EventMarketConfigured, "", asset, marketConfigData(&cfg))
		return nil
	})
}

// AccrueInterest accrue interest of a listed market up to now
func (p *Pool) AccrueInterest(ctx context.Context, market string) error {
	return p.run(ctx, "accrue_interest", "", func(tx *txn) error {
		m, err := p.listedMarket(tx, market)
		if err != nil {
			return err
		}

		return p.accrue(tx, m)
	})
}

func marketConfigData(cfg *core.MarketConfig) core.EventData {
	return core.EventData{}.
		Put("supply_paused", cfg.SupplyPaused).
		Put("borrow_paused", cfg.BorrowPaused).
		Put("is_frozen", cfg.IsFrozen).
		Put("collateral_factor", cfg.CollateralFactor).
		Put("reserve_factor", cfg.ReserveFactor).
		Put("liquidation_bonus", cfg.LiquidationBonus).
		Put("supply_cap", cfg.SupplyCap).
		Put("borrow_cap", cfg.BorrowCap).
		Put("collateral_cap", cfg.CollateralCap).
		Put("initial_exchange_rate", cfg.InitialExchangeRate).
		Put("ib_token", cfg.IBToken.Address()).
		Put("debt_token", cfg.DebtToken.Address())
}

// SetCreditLimit set the credit limit of user in market, a zero limit removes it
func (p *Pool) SetCreditLimit(ctx context.Context, caller, user, market string, limit *uint256.Int) error {
	return p.run(ctx, "set_credit_limit", caller, func(tx *txn) error {
		if err := compound.Require(tx.caller == p.creditLimitManager, core.ErrNotCreditLimitManager, "credit limit manager only"); err != nil {
			return err
		}

		if err := compound.Require(user != "", core.ErrInvalidAddress, "empty user"); err != nil {
			return err
		}

		if _, err := p.listedMarket(tx, market); err != nil {
			return err
		}

		limits, ok := p.creditLimits[user]
		if !ok {
			limits = map[string]uint256.Int{}
			p.creditLimits[user] = limits
		}

		if limit.IsZero() {
			removeMember(tx, p.creditMarkets, user, market)
		} else {
			addMember(tx, p.creditMarkets, user, market)
		}

		putAmount(tx, limits, market, limit)
		tx.emit(core.EventCreditLimitChanged, user, market, core.EventData{}.Put("limit", limit))
		return nil
	})
}
