package core

import (
	"context"

	"github.com/holiman/uint256"
)

// LiquidityCheckStatus per user liquidity check status
type LiquidityCheckStatus int

const (
	// LiquidityCheckNormal checks run immediately
	LiquidityCheckNormal LiquidityCheckStatus = iota
	// LiquidityCheckDeferred checks are postponed to the end of the callback
	LiquidityCheckDeferred
	// LiquidityCheckDirty a check was postponed and must run
	LiquidityCheckDirty
)

func (s LiquidityCheckStatus) String() string {
	switch s {
	case LiquidityCheckDeferred:
		return "deferred"
	case LiquidityCheckDirty:
		return "dirty"
	default:
		return "normal"
	}
}

// IHelperRegistry user helper registry
type IHelperRegistry interface {
	IsHelperAuthorized(user, helper string) bool
}

// IBatch ledger operations available to a deferred callback
//
// every operation runs as the caller that opened the deferral
type IBatch interface {
	Supply(ctx context.Context, from, to, market string, amount *uint256.Int) error
	Borrow(ctx context.Context, from, to, market string, amount *uint256.Int) error
	Redeem(ctx context.Context, from, to, market string, amount *uint256.Int) (*uint256.Int, error)
	Repay(ctx context.Context, from, to, market string, amount *uint256.Int) (*uint256.Int, error)
	Liquidate(ctx context.Context, liquidator, borrower, marketBorrow, marketCollateral string, repayAmount *uint256.Int) (*uint256.Int, *uint256.Int, error)
	EnterMarket(ctx context.Context, user, market string) error
	ExitMarket(ctx context.Context, user, market string) error
	DeferLiquidityCheck(ctx context.Context, user string, callback DeferredCallback, data []byte) error

	// reads see the writes made so far
	ExchangeRate(market string) (*uint256.Int, error)
	BorrowBalance(user, market string) (*uint256.Int, error)
	AccountLiquidity(ctx context.Context, user string) (collateralValue, debtValue *uint256.Int, err error)
	MaxBorrow(ctx context.Context, user, market string) (*uint256.Int, error)
}

// DeferredCallback invoked by a deferred liquidity check
type DeferredCallback interface {
	OnDeferredLiquidityCheck(ctx context.Context, batch IBatch, data []byte) error
}

// DeferredCallbackFunc func adapter of DeferredCallback
type DeferredCallbackFunc func(ctx context.Context, batch IBatch, data []byte) error

// OnDeferredLiquidityCheck implements DeferredCallback
func (f DeferredCallbackFunc) OnDeferredLiquidityCheck(ctx context.Context, batch IBatch, data []byte) error {
	return f(ctx, batch, data)
}
