package pool

import (
	"testing"

	"ironbank/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferIBToken(t *testing.T) {
	e := newLendingEnv(t)
	require.Nil(t, e.pool.Borrow(e.ctx, "bob", "bob", "bob", "usdc", u(600)))
	ib := e.ib["eth"]

	t.Run("only the token", func(t *testing.T) {
		assertCode(t, e.pool.TransferIBToken(e.ctx, "bob", "eth", "bob", "carol", u(1)), core.ErrNotShareToken)
	})

	t.Run("self transfer", func(t *testing.T) {
		assertCode(t, ib.Transfer(e.ctx, "bob", "bob", u(1)), core.ErrSelfTransfer)
	})

	t.Run("breaks liquidity", func(t *testing.T) {
		// 1000 eth backs 750, 600 borrowed
		assertCode(t, ib.Transfer(e.ctx, "bob", "carol", u(201)), core.ErrInsufficientCollateral)
		assert.Equal(t, uint64(1000), e.pool.SupplyBalance("bob", "eth").Uint64())
	})

	t.Run("moves collateral", func(t *testing.T) {
		require.Nil(t, ib.Transfer(e.ctx, "bob", "carol", u(200)))
		assert.Equal(t, uint64(800), e.pool.CollateralBalance("bob", "eth").Uint64())
		assert.Equal(t, uint64(200), e.pool.SupplyBalance("carol", "eth").Uint64())
		assert.Equal(t, uint64(200), e.pool.CollateralBalance("carol", "eth").Uint64())
		assert.True(t, e.pool.IsEntered("carol", "eth"))

		balance, err := ib.BalanceOf("carol")
		require.Nil(t, err)
		assert.Equal(t, uint64(200), balance.Uint64())
	})

	t.Run("insufficient shares", func(t *testing.T) {
		assertCode(t, ib.Transfer(e.ctx, "carol", "dave", u(201)), core.ErrInsufficientBalance)
	})

	t.Run("shares without collateral", func(t *testing.T) {
		e.deposit("usdc", "carol", 50)
		require.Nil(t, e.pool.Supply(e.ctx, "carol", "carol", "carol", "usdc", u(50)))
		assert.True(t, e.pool.CollateralBalance("carol", "usdc").IsZero())

		require.Nil(t, e.ib["usdc"].Transfer(e.ctx, "carol", "dave", u(50)))
		assert.Equal(t, uint64(50), e.pool.SupplyBalance("dave", "usdc").Uint64())
		assert.True(t, e.pool.CollateralBalance("dave", "usdc").IsZero())
	})

	t.Run("credit account receiver", func(t *testing.T) {
		require.Nil(t, e.pool.SetCreditLimit(e.ctx, manager, "erin", "usdc", u(1)))
		assertCode(t, ib.Transfer(e.ctx, "carol", "erin", u(1)), core.ErrCreditAccount)
	})

	assertInvariants(t, e.pool)
}

func TestTransferDebt(t *testing.T) {
	e := newLendingEnv(t)
	require.Nil(t, e.pool.Borrow(e.ctx, "bob", "bob", "bob", "usdc", u(600)))
	e.collateralize(t, "carol", "eth", 200)
	debt := e.debt["usdc"]

	assertCode(t, e.pool.TransferDebt(e.ctx, "carol", "usdc", "bob", "carol", u(1)), core.ErrNotShareToken)

	// carol can carry 150 at most
	assertCode(t, debt.Transfer(e.ctx, "bob", "carol", u(151)), core.ErrInsufficientCollateral)
	require.Nil(t, debt.Transfer(e.ctx, "bob", "carol", u(150)))
	assert.Equal(t, uint64(450), e.borrowBalance(t, "bob", "usdc"))
	assert.Equal(t, uint64(150), e.borrowBalance(t, "carol", "usdc"))

	balance, err := debt.BalanceOf("carol")
	require.Nil(t, err)
	assert.Equal(t, uint64(150), balance.Uint64())

	assertCode(t, debt.Transfer(e.ctx, "bob", "dave", u(451)), core.ErrInsufficientBalance)

	t.Run("credit account receiver", func(t *testing.T) {
		require.Nil(t, e.pool.SetCreditLimit(e.ctx, manager, "erin", "usdc", u(100)))
		assertCode(t, debt.Transfer(e.ctx, "bob", "erin", u(101)), core.ErrInsufficientCreditLimit)
		require.Nil(t, debt.Transfer(e.ctx, "bob", "erin", u(100)))
		assert.Equal(t, uint64(100), e.borrowBalance(t, "erin", "usdc"))
	})

	m := e.market(t, "usdc")
	assert.Equal(t, uint64(600), m.TotalBorrow.Uint64())
}
