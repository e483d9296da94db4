package pool

import (
	"context"
	"sync/atomic"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

// Batch ledger operations available inside a deferred liquidity check
//
// A Batch shares the lock and journal of the call that opened it and is
// closed once the callback returns. A failed operation is undone before its
// error is returned, so the callback may recover from it. Reads see the writes
// made so far.
type Batch struct {
	p      *Pool
	tx     *txn
	closed atomic.Bool
}

var _ core.IBatch = (*Batch)(nil)

func newBatch(p *Pool, tx *txn) *Batch {
	return &Batch{p: p, tx: tx}
}

func (b *Batch) close() {
	b.closed.Store(true)
}

func (b *Batch) do(ctx context.Context, fn func(tx *txn) error) error {
	if err := b.readable(); err != nil {
		return err
	}

	tx := b.tx
	if ctx != nil {
		parent := tx.ctx
		tx.ctx = ctx
		defer func() { tx.ctx = parent }()
	}

	// markets are journaled again after the savepoint, so undoing this
	// operation restores the totals it started from
	touched := tx.touched
	tx.touched = map[*core.Market]bool{}
	defer func() {
		for m := range tx.touched {
			touched[m] = true
		}
		tx.touched = touched
	}()

	sp := tx.savepoint()
	if err := fn(tx); err != nil {
		tx.rollbackTo(sp)
		return err
	}

	return nil
}

// Supply see Pool.Supply
func (b *Batch) Supply(ctx context.Context, from, to, market string, amount *uint256.Int) error {
	return b.do(ctx, func(tx *txn) error {
		return b.p.supply(tx, from, to, market, amount)
	})
}

// Borrow see Pool.Borrow
func (b *Batch) Borrow(ctx context.Context, from, to, market string, amount *uint256.Int) error {
	return b.do(ctx, func(tx *txn) error {
		return b.p.borrow(tx, from, to, market, amount)
	})
}

// Redeem see Pool.Redeem
func (b *Batch) Redeem(ctx context.Context, from, to, market string, amount *uint256.Int) (*uint256.Int, error) {
	var redeemed *uint256.Int
	err := b.do(ctx, func(tx *txn) (err error) {
		redeemed, err = b.p.redeem(tx, from, to, market, amount)
		return err
	})

	return redeemed, err
}

// Repay see Pool.Repay
func (b *Batch) Repay(ctx context.Context, from, to, market string, amount *uint256.Int) (*uint256.Int, error) {
	var repaid *uint256.Int
	err := b.do(ctx, func(tx *txn) (err error) {
		repaid, err = b.p.repay(tx, from, to, market, amount)
		return err
	})

	return repaid, err
}

// Liquidate see Pool.Liquidate
func (b *Batch) Liquidate(ctx context.Context, liquidator, borrower, marketBorrow, marketCollateral string, repayAmount *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	var repaid, seized *uint256.Int
	err := b.do(ctx, func(tx *txn) (err error) {
		repaid, seized, err = b.p.liquidate(tx, liquidator, borrower, marketBorrow, marketCollateral, repayAmount)
		return err
	})

	return repaid, seized, err
}

// EnterMarket see Pool.EnterMarket
func (b *Batch) EnterMarket(ctx context.Context, user, market string) error {
	return b.do(ctx, func(tx *txn) error {
		return b.p.enterMarketAsCollateral(tx, user, market)
	})
}

// ExitMarket see Pool.ExitMarket
func (b *Batch) ExitMarket(ctx context.Context, user, market string) error {
	return b.do(ctx, func(tx *txn) error {
		return b.p.exitMarketAsCollateral(tx, user, market)
	})
}

// DeferLiquidityCheck defer the check of another user, the user already deferring is rejected
func (b *Batch) DeferLiquidityCheck(ctx context.Context, user string, callback core.DeferredCallback, data []byte) error {
	return b.do(ctx, func(tx *txn) error {
		return b.p.deferLiquidityCheck(tx, user, callback, data)
	})
}

func (b *Batch) readable() error {
	if b.closed.Load() {
		return compound.Errorf(core.ErrBatchClosed, "batch closed")
	}

	return nil
}

// ExchangeRate see Pool.ExchangeRate
func (b *Batch) ExchangeRate(market string) (*uint256.Int, error) {
	if err := b.readable(); err != nil {
		return nil, err
	}

	return b.p.exchangeRate(market)
}

// BorrowBalance see Pool.BorrowBalance
func (b *Batch) BorrowBalance(user, market string) (*uint256.Int, error) {
	if err := b.readable(); err != nil {
		return nil, err
	}

	return b.p.currentBorrowBalance(user, market)
}

// AccountLiquidity valued the way the deferred check values it when the callback returns
func (b *Batch) AccountLiquidity(ctx context.Context, user string) (collateralValue, debtValue *uint256.Int, err error) {
	if err := b.readable(); err != nil {
		return nil, nil, err
	}

	return b.p.accountLiquidity(ctx, user, false)
}

// MaxBorrow see Pool.MaxBorrow, with the account valued like AccountLiquidity
func (b *Batch) MaxBorrow(ctx context.Context, user, market string) (*uint256.Int, error) {
	if err := b.readable(); err != nil {
		return nil, err
	}

	return b.p.maxBorrow(ctx, user, market, false)
}
