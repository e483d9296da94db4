package pool

import (
	"context"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

// Liquidate take over repayAmount of the debt of borrower in marketBorrow and
// seize the matching collateral shares in marketCollateral, Max takes the whole debt
//
// returns the debt taken over and the seized shares
func (p *Pool) Liquidate(ctx context.Context, caller, liquidator, borrower, marketBorrow, marketCollateral string, repayAmount *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	var repaid, seized *uint256.Int
	err := p.run(ctx, "liquidate", caller, func(tx *txn) (err error) {
		repaid, seized, err = p.liquidate(tx, liquidator, borrower, marketBorrow, marketCollateral, repayAmount)
		return err
	})

	return repaid, seized, err
}

func (p *Pool) liquidate(tx *txn, liquidator, borrower, marketBorrow, marketCollateral string, repayAmount *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if err := p.authorize(tx, liquidator); err != nil {
		return nil, nil, err
	}

	mBorrow, err := p.listedMarket(tx, marketBorrow)
	if err != nil {
		return nil, nil, err
	}

	mCollateral, err := p.listedMarket(tx, marketCollateral)
	if err != nil {
		return nil, nil, err
	}

	if err := compound.Require(!mBorrow.Config.IsFrozen && !mCollateral.Config.IsFrozen, core.ErrMarketFrozen, "market frozen"); err != nil {
		return nil, nil, err
	}

	if err := compound.Require(!p.isCreditAccount(borrower), core.ErrCreditAccount, "cannot liquidate credit account"); err != nil {
		return nil, nil, err
	}

	if err := compound.Require(liquidator != borrower, core.ErrSelfLiquidation, "self liquidation"); err != nil {
		return nil, nil, err
	}

	if err := compound.Require(p.isEntered(borrower, marketBorrow) && p.isEntered(borrower, marketCollateral), core.ErrMarketNotEntered, "borrower not entered markets"); err != nil {
		return nil, nil, err
	}

	if err := p.accrue(tx, mBorrow); err != nil {
		return nil, nil, err
	}

	if err := p.accrue(tx, mCollateral); err != nil {
		return nil, nil, err
	}

	liquidatable, err := p.isLiquidatable(tx.ctx, borrower, false)
	if err != nil {
		return nil, nil, err
	}

	if err := compound.Require(liquidatable, core.ErrNotLiquidatable, "borrower not liquidatable"); err != nil {
		return nil, nil, err
	}

	balance, err := p.borrowBalance(mBorrow, borrower)
	if err != nil {
		return nil, nil, err
	}

	if compound.IsMax(repayAmount) {
		repayAmount = balance
	}

	if err := compound.Require(!repayAmount.Gt(balance), core.ErrRepayTooMuch, "repay too much"); err != nil {
		return nil, nil, err
	}

	if err := compound.Require(!repayAmount.IsZero(), core.ErrInvalidAmount, "zero repay amount"); err != nil {
		return nil, nil, err
	}

	if _, err := p.moveDebt(tx, mBorrow, borrower, liquidator, repayAmount); err != nil {
		return nil, nil, err
	}

	if err := p.seize(tx, mBorrow.Config.DebtToken, borrower, liquidator, repayAmount); err != nil {
		return nil, nil, err
	}

	seizeAmount, err := p.seizeAmount(tx.ctx, mBorrow, mCollateral, repayAmount)
	if err != nil {
		return nil, nil, err
	}

	if err := compound.Require(!seizeAmount.Gt(mCollateral.Collateral(borrower)), core.ErrInsufficientSeizable, "seize too much"); err != nil {
		return nil, nil, err
	}

	if !seizeAmount.IsZero() {
		if err := p.moveShares(tx, mCollateral, borrower, liquidator, seizeAmount); err != nil {
			return nil, nil, err
		}

		if err := p.seize(tx, mCollateral.Config.IBToken, borrower, liquidator, seizeAmount); err != nil {
			return nil, nil, err
		}
	}

	if p.isCreditAccount(liquidator) {
		liquidatorDebt, err := p.borrowBalance(mBorrow, liquidator)
		if err != nil {
			return nil, nil, err
		}

		if err := p.checkCreditLimit(liquidator, marketBorrow, liquidatorDebt); err != nil {
			return nil, nil, err
		}
	} else if err := p.checkLiquidity(tx, liquidator); err != nil {
		return nil, nil, err
	}

	tx.emit(core.EventLiquidate, borrower, marketBorrow, core.EventData{}.
		Put("liquidator", liquidator).
		Put("market_collateral", marketCollateral).
		Put("repay_amount", repayAmount).
		Put("seize_amount", seizeAmount))
	return repayAmount.Clone(), seizeAmount, nil
}

func (p *Pool) seizeAmount(ctx context.Context, mBorrow, mCollateral *core.Market, repayAmount *uint256.Int) (*uint256.Int, error) {
	borrowPrice, err := p.price(ctx, mBorrow.Asset)
	if err != nil {
		return nil, err
	}

	collateralPrice, err := p.price(ctx, mCollateral.Asset)
	if err != nil {
		return nil, err
	}

	rate, err := compound.ExchangeRate(mCollateral)
	if err != nil {
		return nil, err
	}

	return compound.SeizeAmount(repayAmount, borrowPrice, collateralPrice, rate, mCollateral.Config.LiquidationBonus)
}
