package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000

	// ErrUnauthorized caller is not the user nor an authorized helper
	ErrUnauthorized ErrorCode = 100101
	// ErrNotOwner owner only
	ErrNotOwner ErrorCode = 100102
	// ErrNotMarketConfigurator market configurator only
	ErrNotMarketConfigurator ErrorCode = 100103
	// ErrNotCreditLimitManager credit limit manager only
	ErrNotCreditLimitManager ErrorCode = 100104
	// ErrNotShareToken share token hooks only
	ErrNotShareToken ErrorCode = 100105
	// ErrNotPendingOwner pending owner only
	ErrNotPendingOwner ErrorCode = 100106

	// ErrMarketNotListed market not listed
	ErrMarketNotListed ErrorCode = 100201
	// ErrMarketFrozen market frozen
	ErrMarketFrozen ErrorCode = 100202
	// ErrSupplyPaused supply paused
	ErrSupplyPaused ErrorCode = 100203
	// ErrBorrowPaused borrow paused
	ErrBorrowPaused ErrorCode = 100204
	// ErrMarketAlreadyListed market listed twice
	ErrMarketAlreadyListed ErrorCode = 100205
	// ErrMarketNotDelistable delisting requires paused market without collateral
	ErrMarketNotDelistable ErrorCode = 100206
	// ErrMarketNotEntered user has not entered the market
	ErrMarketNotEntered ErrorCode = 100207

	// ErrSupplyCapReached supply cap reached
	ErrSupplyCapReached ErrorCode = 100301
	// ErrBorrowCapReached borrow cap reached
	ErrBorrowCapReached ErrorCode = 100302
	// ErrCollateralCapReached collateral cap reached
	ErrCollateralCapReached ErrorCode = 100303
	// ErrInsufficientCash insufficient pooled cash
	ErrInsufficientCash ErrorCode = 100304
	// ErrInsufficientBalance insufficient share balance
	ErrInsufficientBalance ErrorCode = 100305
	// ErrInsufficientReserves insufficient reserves
	ErrInsufficientReserves ErrorCode = 100306

	// ErrInsufficientCollateral account liquidity check failed
	ErrInsufficientCollateral ErrorCode = 100401
	// ErrInsufficientCreditLimit credit limit exceeded
	ErrInsufficientCreditLimit ErrorCode = 100402
	// ErrNotLiquidatable borrower is solvent
	ErrNotLiquidatable ErrorCode = 100403
	// ErrCreditAccount operation not allowed for credit accounts
	ErrCreditAccount ErrorCode = 100404
	// ErrInsufficientSeizable violator has not enough collateral to seize
	ErrInsufficientSeizable ErrorCode = 100405

	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100501
	// ErrSelfTransfer self transfer
	ErrSelfTransfer ErrorCode = 100502
	// ErrSelfLiquidation self liquidation
	ErrSelfLiquidation ErrorCode = 100503
	// ErrInvalidPrice zero price
	ErrInvalidPrice ErrorCode = 100504
	// ErrInvalidMarketConfig market config out of bounds
	ErrInvalidMarketConfig ErrorCode = 100505
	// ErrIncreaseAndDecrease increase and decrease requested together
	ErrIncreaseAndDecrease ErrorCode = 100506
	// ErrMathOverflow fixed point overflow
	ErrMathOverflow ErrorCode = 100507
	// ErrRepayTooMuch repay exceeds borrow balance
	ErrRepayTooMuch ErrorCode = 100508
	// ErrInvalidAddress empty address
	ErrInvalidAddress ErrorCode = 100509
	// ErrBorrowOutstanding market still has a borrow balance
	ErrBorrowOutstanding ErrorCode = 100510

	// ErrReentry nested deferred liquidity check
	ErrReentry ErrorCode = 100601
	// ErrStaleTimestamp clock went backwards
	ErrStaleTimestamp ErrorCode = 100602
	// ErrBatchClosed batch used outside of its callback
	ErrBatchClosed ErrorCode = 100603
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
