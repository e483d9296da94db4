package token

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	caller, market, from, to string
	amount                   uint64
	debt                     bool
}

type fakeLedger struct {
	calls []call
	err   error
}

func (f *fakeLedger) TransferIBToken(_ context.Context, caller, market, from, to string, shares *uint256.Int) error {
	f.calls = append(f.calls, call{caller, market, from, to, shares.Uint64(), false})
	return f.err
}

func (f *fakeLedger) TransferDebt(_ context.Context, caller, market, from, to string, amount *uint256.Int) error {
	f.calls = append(f.calls, call{caller, market, from, to, amount.Uint64(), true})
	return f.err
}

func (f *fakeLedger) SupplyBalance(user, asset string) *uint256.Int {
	return uint256.NewInt(7)
}

func (f *fakeLedger) BorrowBalance(user, asset string) (*uint256.Int, error) {
	return uint256.NewInt(3), nil
}

func TestToken(t *testing.T) {
	ctx := context.Background()
	ib := NewIBToken("ibeth", "eth")
	debt := NewDebtToken("debteth", "eth")

	_, err := ib.BalanceOf("alice")
	assert.NotNil(t, err)
	assert.NotNil(t, ib.Transfer(ctx, "alice", "bob", uint256.NewInt(1)))

	ledger := &fakeLedger{}
	ib.Bind(ledger)
	debt.Bind(ledger)

	balance, err := ib.BalanceOf("alice")
	require.Nil(t, err)
	assert.Equal(t, uint64(7), balance.Uint64())
	balance, err = debt.BalanceOf("alice")
	require.Nil(t, err)
	assert.Equal(t, uint64(3), balance.Uint64())

	require.Nil(t, ib.Transfer(ctx, "alice", "bob", uint256.NewInt(5)))
	require.Nil(t, debt.Transfer(ctx, "alice", "bob", uint256.NewInt(2)))
	assert.Equal(t, []call{
		{"ibeth", "eth", "alice", "bob", 5, false},
		{"debteth", "eth", "alice", "bob", 2, true},
	}, ledger.calls)

	// rejected transfers are not logged
	ledger.err = errors.New("rejected")
	assert.NotNil(t, ib.Transfer(ctx, "alice", "bob", uint256.NewInt(5)))

	require.Nil(t, ib.Mint(ctx, "carol", uint256.NewInt(9)))
	require.Nil(t, ib.Seize(ctx, "carol", "dave", uint256.NewInt(4)))
	require.Nil(t, ib.Burn(ctx, "dave", uint256.NewInt(4)))

	logs := ib.Transfers()
	require.Len(t, logs, 4)
	assert.Equal(t, Transfer{From: "alice", To: "bob", Amount: *uint256.NewInt(5)}, logs[0])
	assert.Equal(t, Transfer{From: "", To: "carol", Amount: *uint256.NewInt(9)}, logs[1])
	assert.Equal(t, Transfer{From: "carol", To: "dave", Amount: *uint256.NewInt(4)}, logs[2])
	assert.Equal(t, Transfer{From: "dave", To: "", Amount: *uint256.NewInt(4)}, logs[3])

	assert.Equal(t, KindIB, ib.Kind())
	assert.Equal(t, KindDebt, debt.Kind())
	assert.Equal(t, "eth", debt.Underlying())
	assert.Equal(t, "debteth", debt.Address())
}
