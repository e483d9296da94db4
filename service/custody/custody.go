package custody

import (
	"context"
	"fmt"
	"sync"

	"ironbank/core"

	"github.com/holiman/uint256"
)

// Memory in memory custodian of user and pool assets
type Memory struct {
	mu       sync.Mutex
	pool     string
	balances map[string]map[string]uint256.Int
}

var _ core.ICustodian = (*Memory)(nil)

// New new custodian holding the pool assets under the pool address
func New(pool string) *Memory {
	return &Memory{
		pool:     pool,
		balances: map[string]map[string]uint256.Int{},
	}
}

func (c *Memory) move(asset, from, to string, amount *uint256.Int) error {
	balances, ok := c.balances[asset]
	if !ok {
		balances = map[string]uint256.Int{}
		c.balances[asset] = balances
	}

	fromBalance := balances[from]
	if fromBalance.Lt(amount) {
		return fmt.Errorf("custody: insufficient %s of %s: %s < %s", asset, from, fromBalance.Dec(), amount.Dec())
	}

	toBalance := balances[to]
	balances[from] = *new(uint256.Int).Sub(&fromBalance, amount)
	balances[to] = *new(uint256.Int).Add(&toBalance, amount)
	return nil
}

// Deposit credit user with amount of asset from outside the pool
func (c *Memory) Deposit(asset, user string, amount *uint256.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	balances, ok := c.balances[asset]
	if !ok {
		balances = map[string]uint256.Int{}
		c.balances[asset] = balances
	}

	v := balances[user]
	balances[user] = *new(uint256.Int).Add(&v, amount)
}

// BalanceOf asset held by user
func (c *Memory) BalanceOf(asset, user string) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.balances[asset][user]
	return &v
}

// Pull user -> pool
func (c *Memory) Pull(_ context.Context, asset, from string, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move(asset, from, c.pool, amount)
}

// Push pool -> user
func (c *Memory) Push(_ context.Context, asset, to string, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move(asset, c.pool, to, amount)
}

// Balance asset held by the pool
func (c *Memory) Balance(_ context.Context, asset string) (*uint256.Int, error) {
	return c.BalanceOf(asset, c.pool), nil
}
