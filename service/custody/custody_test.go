package custody

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := New("pool")
	c.Deposit("eth", "alice", uint256.NewInt(100))

	assert.NotNil(t, c.Pull(ctx, "eth", "alice", uint256.NewInt(101)))
	require.Nil(t, c.Pull(ctx, "eth", "alice", uint256.NewInt(60)))
	assert.Equal(t, uint64(40), c.BalanceOf("eth", "alice").Uint64())

	balance, err := c.Balance(ctx, "eth")
	require.Nil(t, err)
	assert.Equal(t, uint64(60), balance.Uint64())

	assert.NotNil(t, c.Push(ctx, "eth", "bob", uint256.NewInt(61)))
	require.Nil(t, c.Push(ctx, "eth", "bob", uint256.NewInt(60)))
	assert.Equal(t, uint64(60), c.BalanceOf("eth", "bob").Uint64())
	assert.True(t, c.BalanceOf("eth", "pool").IsZero())

	assert.True(t, c.BalanceOf("doge", "bob").IsZero())
	assert.NotNil(t, c.Push(ctx, "doge", "bob", uint256.NewInt(1)))
}
