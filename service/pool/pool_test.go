package pool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ironbank/core"
	"ironbank/pkg/compound"
	"ironbank/service/custody"
	"ironbank/service/helper"
	"ironbank/service/oracle"
	"ironbank/service/token"

	"github.com/facebookgo/clock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner        = "owner"
	configurator = "configurator"
	manager      = "manager"
	poolAddress  = "pool"
)

var wad = uint256.NewInt(1e18)

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

type fixedRate struct {
	mu   sync.Mutex
	rate uint256.Int
}

func (f *fixedRate) set(v uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = *uint256.NewInt(v)
}

func (f *fixedRate) GetBorrowRate(cash, borrow *uint256.Int) (*uint256.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate.Clone(), nil
}

type recorder struct {
	mu     sync.Mutex
	events []*core.Event
}

func (r *recorder) Emit(_ context.Context, events []*core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) actions() []core.EventAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.EventAction, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}

	return out
}

type env struct {
	ctx     context.Context
	pool    *Pool
	clock   *clock.Mock
	oracle  *oracle.Static
	custody *custody.Memory
	helpers *helper.Registry
	events  *recorder
	rates   map[string]*fixedRate
	ib      map[string]*token.Token
	debt    map[string]*token.Token
}

func newEnv(t *testing.T) *env {
	e := &env{
		ctx:     context.Background(),
		clock:   clock.NewMock(),
		oracle:  oracle.NewStatic(nil),
		custody: custody.New(poolAddress),
		helpers: helper.New(),
		events:  &recorder{},
		rates:   map[string]*fixedRate{},
		ib:      map[string]*token.Token{},
		debt:    map[string]*token.Token{},
	}

	e.clock.Add(1000 * time.Second)

	p, err := New(Options{
		Owner:              owner,
		MarketConfigurator: configurator,
		CreditLimitManager: manager,
		Oracle:             e.oracle,
		Custodian:          e.custody,
		Helpers:            e.helpers,
		Events:             e.events,
		Clock:              e.clock,
	})
	require.Nil(t, err)

	e.pool = p
	return e
}

func (e *env) config(asset string) core.MarketConfig {
	return core.MarketConfig{
		CollateralFactor:    7500,
		LiquidationBonus:    11000,
		InitialExchangeRate: *wad,
		IBToken:             e.ib[asset],
		DebtToken:           e.debt[asset],
		InterestRateModel:   e.rates[asset],
	}
}

// list asset priced at 1.0 with 75% collateral factor and 110% bonus
func (e *env) list(t *testing.T, asset string, mutate func(cfg *core.MarketConfig)) {
	e.rates[asset] = &fixedRate{}
	e.ib[asset] = token.NewIBToken("ib"+asset, asset)
	e.debt[asset] = token.NewDebtToken("debt"+asset, asset)
	e.ib[asset].Bind(e.pool)
	e.debt[asset].Bind(e.pool)
	e.oracle.SetPrice(asset, wad)

	cfg := e.config(asset)
	if mutate != nil {
		mutate(&cfg)
	}

	require.Nil(t, e.pool.ListMarket(e.ctx, configurator, asset, cfg))
}

func (e *env) deposit(asset, user string, amount uint64) {
	e.custody.Deposit(asset, user, u(amount))
}

// supply amount from user's own wallet and use it as collateral
func (e *env) collateralize(t *testing.T, user, asset string, amount uint64) {
	e.deposit(asset, user, amount)
	require.Nil(t, e.pool.EnterMarket(e.ctx, user, user, asset))
	require.Nil(t, e.pool.Supply(e.ctx, user, user, user, asset, u(amount)))
}

func (e *env) market(t *testing.T, asset string) core.Market {
	m, err := e.pool.Market(asset)
	require.Nil(t, err)
	return m
}

func (e *env) borrowBalance(t *testing.T, user, asset string) uint64 {
	v, err := e.pool.BorrowBalance(user, asset)
	require.Nil(t, err)
	return v.Uint64()
}

func assertCode(t *testing.T, err error, code core.ErrorCode) {
	t.Helper()
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, code), "expect %d, got %v", code, err)
}

// every user's collateral stays within its supply, and totals match the user ledgers
func assertInvariants(t *testing.T, p *Pool) {
	t.Helper()
	p.mu.RLock()
	defer p.mu.RUnlock()

	for asset, m := range p.markets {
		totalCollateral := new(uint256.Int)
		for user, c := range m.UserCollaterals {
			c := c
			s := m.UserSupplies[user]
			assert.False(t, c.Gt(&s), "collateral of %s in %s exceeds supply", user, asset)
			totalCollateral.Add(totalCollateral, &c)
		}

		assert.Equal(t, totalCollateral.Dec(), m.TotalCollateral.Dec(), "total collateral of %s", asset)
		if !m.Config.CollateralCap.IsZero() {
			assert.False(t, m.TotalCollateral.Gt(&m.Config.CollateralCap), "collateral cap of %s", asset)
		}

		totalSupply := m.TotalReserves.Clone()
		for _, s := range m.UserSupplies {
			s := s
			totalSupply.Add(totalSupply, &s)
		}

		assert.Equal(t, totalSupply.Dec(), m.TotalSupply.Dec(), "total supply of %s", asset)
	}
}

func TestNew(t *testing.T) {
	_, err := New(Options{})
	assertCode(t, err, core.ErrInvalidAddress)

	_, err = New(Options{Owner: owner})
	assert.NotNil(t, err)

	p, err := New(Options{Owner: owner, Oracle: oracle.NewStatic(nil), Custodian: custody.New(poolAddress)})
	require.Nil(t, err)
	assert.Equal(t, owner, p.Owner())
	assert.Empty(t, p.Markets())
}

func TestSupplyAccrueRedeem(t *testing.T) {
	e := newEnv(t)
	e.list(t, "usdc", nil)
	e.list(t, "eth", nil)

	e.deposit("usdc", "alice", 1000)
	require.Nil(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1000)))
	assert.Equal(t, uint64(1000), e.pool.SupplyBalance("alice", "usdc").Uint64())
	// not entered, so not collateral
	assert.True(t, e.pool.CollateralBalance("alice", "usdc").IsZero())

	e.collateralize(t, "bob", "eth", 1000)
	require.Nil(t, e.pool.Borrow(e.ctx, "bob", "bob", "bob", "usdc", u(500)))
	assert.Equal(t, uint64(500), e.custody.BalanceOf("usdc", "bob").Uint64())

	// 20% per second on 500 borrowed
	e.rates["usdc"].set(2e17)
	e.clock.Add(time.Second)
	require.Nil(t, e.pool.AccrueInterest(e.ctx, "usdc"))

	m := e.market(t, "usdc")
	assert.Equal(t, uint64(600), m.TotalBorrow.Uint64())
	assert.Equal(t, uint64(500), m.TotalCash.Uint64())
	rate, err := e.pool.ExchangeRate("usdc")
	require.Nil(t, err)
	assert.Equal(t, "1100000000000000000", rate.Dec())
	assert.Equal(t, uint64(600), e.borrowBalance(t, "bob", "usdc"))

	e.deposit("usdc", "bob", 100)
	repaid, err := e.pool.Repay(e.ctx, "bob", "bob", "bob", "usdc", compound.Max())
	require.Nil(t, err)
	assert.Equal(t, uint64(600), repaid.Uint64())
	assert.Equal(t, uint64(0), e.borrowBalance(t, "bob", "usdc"))

	redeemed, err := e.pool.Redeem(e.ctx, "alice", "alice", "alice", "usdc", compound.Max())
	require.Nil(t, err)
	assert.Equal(t, uint64(1100), redeemed.Uint64())
	assert.Equal(t, uint64(1100), e.custody.BalanceOf("usdc", "alice").Uint64())

	t.Run("redeem all and repay all twice are no-ops", func(t *testing.T) {
		before := e.market(t, "usdc")

		redeemed, err := e.pool.Redeem(e.ctx, "alice", "alice", "alice", "usdc", compound.Max())
		require.Nil(t, err)
		assert.True(t, redeemed.IsZero())

		repaid, err := e.pool.Repay(e.ctx, "bob", "bob", "bob", "usdc", compound.Max())
		require.Nil(t, err)
		assert.True(t, repaid.IsZero())

		after := e.market(t, "usdc")
		assert.Equal(t, before.TotalCash.Dec(), after.TotalCash.Dec())
		assert.Equal(t, before.TotalBorrow.Dec(), after.TotalBorrow.Dec())
	})

	assertInvariants(t, e.pool)
}

func TestSupply(t *testing.T) {
	e := newEnv(t)
	e.list(t, "usdc", func(cfg *core.MarketConfig) {
		cfg.SupplyCap = *u(1500)
	})

	e.deposit("usdc", "alice", 10000)

	t.Run("unauthorized", func(t *testing.T) {
		err := e.pool.Supply(e.ctx, "mallory", "alice", "mallory", "usdc", u(100))
		assertCode(t, err, core.ErrUnauthorized)
	})

	t.Run("helper", func(t *testing.T) {
		e.helpers.Authorize("alice", "router")
		defer e.helpers.Revoke("alice", "router")

		require.Nil(t, e.pool.Supply(e.ctx, "router", "alice", "bob", "usdc", u(100)))
		assert.Equal(t, uint64(100), e.pool.SupplyBalance("bob", "usdc").Uint64())
		assert.Equal(t, uint64(9900), e.custody.BalanceOf("usdc", "alice").Uint64())
	})

	t.Run("not listed", func(t *testing.T) {
		assertCode(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "dai", u(1)), core.ErrMarketNotListed)
	})

	t.Run("invalid amount", func(t *testing.T) {
		assertCode(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(0)), core.ErrInvalidAmount)
		assertCode(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", compound.Max()), core.ErrInvalidAmount)
	})

	t.Run("insufficient wallet balance rolls back", func(t *testing.T) {
		m := e.market(t, "usdc")
		err := e.pool.Supply(e.ctx, "carol", "carol", "carol", "usdc", u(1))
		assert.NotNil(t, err)
		after := e.market(t, "usdc")
		assert.Equal(t, m.TotalSupply.Dec(), after.TotalSupply.Dec())
		assert.True(t, e.pool.SupplyBalance("carol", "usdc").IsZero())
		// minted shares were burned again
		transfers := e.ib["usdc"].Transfers()
		last := transfers[len(transfers)-1]
		assert.Equal(t, "carol", last.From)
		assert.Equal(t, "", last.To)
	})

	t.Run("supply cap", func(t *testing.T) {
		assertCode(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1401)), core.ErrSupplyCapReached)
		require.Nil(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1400)))
	})

	t.Run("paused and frozen", func(t *testing.T) {
		cfg := e.config("usdc")
		cfg.SupplyPaused = true
		require.Nil(t, e.pool.SetMarketConfig(e.ctx, configurator, "usdc", cfg))
		assertCode(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1)), core.ErrSupplyPaused)

		cfg.SupplyPaused = false
		cfg.IsFrozen = true
		require.Nil(t, e.pool.SetMarketConfig(e.ctx, configurator, "usdc", cfg))
		assertCode(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1)), core.ErrMarketFrozen)

		// redeem is still allowed
		_, err := e.pool.Redeem(e.ctx, "alice", "alice", "alice", "usdc", u(100))
		require.Nil(t, err)
	})

	assertInvariants(t, e.pool)
}

func TestCollateralCap(t *testing.T) {
	e := newEnv(t)
	e.list(t, "eth", func(cfg *core.MarketConfig) {
		cfg.CollateralCap = *u(600)
	})

	e.collateralize(t, "bob", "eth", 1000)
	assert.Equal(t, uint64(1000), e.pool.SupplyBalance("bob", "eth").Uint64())
	assert.Equal(t, uint64(600), e.pool.CollateralBalance("bob", "eth").Uint64())

	e.collateralize(t, "carol", "eth", 500)
	assert.True(t, e.pool.CollateralBalance("carol", "eth").IsZero())

	// releasing collateral makes room again
	_, err := e.pool.Redeem(e.ctx, "bob", "bob", "bob", "eth", u(100))
	require.Nil(t, err)
	assert.Equal(t, uint64(500), e.pool.CollateralBalance("bob", "eth").Uint64())

	require.Nil(t, e.pool.EnterMarket(e.ctx, "carol", "carol", "eth"))
	assert.Equal(t, uint64(100), e.pool.CollateralBalance("carol", "eth").Uint64())
	m := e.market(t, "eth")
	assert.Equal(t, uint64(600), m.TotalCollateral.Uint64())

	assertInvariants(t, e.pool)
}

func TestEnterExitMarket(t *testing.T) {
	e := newEnv(t)
	e.list(t, "usdc", nil)
	e.list(t, "eth", nil)

	e.deposit("usdc", "alice", 1000)
	require.Nil(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1000)))

	e.deposit("eth", "bob", 1000)
	require.Nil(t, e.pool.Supply(e.ctx, "bob", "bob", "bob", "eth", u(1000)))
	assert.False(t, e.pool.IsEntered("bob", "eth"))

	// supply without entering does not back a borrow
	assertCode(t, e.pool.Borrow(e.ctx, "bob", "bob", "bob", "usdc", u(1)), core.ErrInsufficientCollateral)

	require.Nil(t, e.pool.EnterMarket(e.ctx, "bob", "bob", "eth"))
	assert.Equal(t, uint64(1000), e.pool.CollateralBalance("bob", "eth").Uint64())
	require.Nil(t, e.pool.Borrow(e.ctx, "bob", "bob", "bob", "usdc", u(100)))
	assert.ElementsMatch(t, []string{"eth", "usdc"}, e.pool.EnteredMarkets("bob"))

	assertCode(t, e.pool.ExitMarket(e.ctx, "bob", "bob", "usdc"), core.ErrBorrowOutstanding)
	// the borrow is backed by eth
	assertCode(t, e.pool.ExitMarket(e.ctx, "bob", "bob", "eth"), core.ErrInsufficientCollateral)
	assert.True(t, e.pool.IsEntered("bob", "eth"))

	_, err := e.pool.Repay(e.ctx, "bob", "bob", "bob", "usdc", compound.Max())
	require.Nil(t, err)
	require.Nil(t, e.pool.ExitMarket(e.ctx, "bob", "bob", "eth"))
	assert.True(t, e.pool.CollateralBalance("bob", "eth").IsZero())
	assert.Equal(t, uint64(1000), e.pool.SupplyBalance("bob", "eth").Uint64())
	assert.ElementsMatch(t, []string{"usdc"}, e.pool.EnteredMarkets("bob"))

	assertCode(t, e.pool.ExitMarket(e.ctx, "bob", "bob", "eth"), core.ErrMarketNotEntered)
	assertInvariants(t, e.pool)
}

func TestEvents(t *testing.T) {
	e := newEnv(t)
	e.list(t, "usdc", nil)
	e.deposit("usdc", "alice", 1000)
	require.Nil(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1000)))

	// rejected calls emit nothing
	n := len(e.events.actions())
	assert.NotNil(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1)))
	assert.Equal(t, n, len(e.events.actions()))

	assert.Equal(t, []core.EventAction{core.EventMarketListed, core.EventSupply}, e.events.actions())

	e.events.mu.Lock()
	ev := e.events.events[1]
	e.events.mu.Unlock()
	assert.Equal(t, "alice", ev.User)
	assert.Equal(t, "usdc", ev.Market)
	assert.NotEmpty(t, ev.TraceID)
	assert.JSONEq(t, `{"from":"alice","amount":"1000","shares":"1000"}`, string(ev.Data))
}

type rewindClock struct {
	clock.Clock
	now time.Time
}

func (c *rewindClock) Now() time.Time {
	return c.now
}

func TestStaleTimestamp(t *testing.T) {
	e := newEnv(t)
	e.list(t, "usdc", nil)

	e.pool.clock = &rewindClock{Clock: e.clock, now: time.Unix(10, 0)}
	e.deposit("usdc", "alice", 1000)
	assertCode(t, e.pool.Supply(e.ctx, "alice", "alice", "alice", "usdc", u(1000)), core.ErrStaleTimestamp)
	assert.True(t, e.pool.SupplyBalance("alice", "usdc").IsZero())
	assert.True(t, e.custody.BalanceOf("usdc", poolAddress).IsZero())
}
