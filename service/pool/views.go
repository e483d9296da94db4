package pool

import (
	"context"
	"sort"

	"ironbank/core"
	"ironbank/pkg/compound"

	"github.com/holiman/uint256"
)

// Owner current owner
func (p *Pool) Owner() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.owner
}

// PendingOwner nominated owner
func (p *Pool) PendingOwner() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pendingOwner
}

// Roles market configurator and credit limit manager
func (p *Pool) Roles() (marketConfigurator, creditLimitManager string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.marketConfigurator, p.creditLimitManager
}

// Markets listed markets, unordered
func (p *Pool) Markets() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.allMarkets.Values()
}

func (p *Pool) viewMarket(asset string) (*core.Market, error) {
	m, ok := p.markets[asset]
	if !ok || !m.Config.IsListed {
		return nil, compound.Errorf(core.ErrMarketNotListed, "market %s not listed", asset)
	}

	return m, nil
}

// accrued copy of the market totals accrued up to now, the market itself is untouched
func (p *Pool) accrued(m *core.Market) core.Market {
	c := m.Snapshot()
	if _, err := compound.AccrueInterest(&c, uint64(p.clock.Now().Unix())); err != nil {
		return m.Snapshot()
	}

	return c
}

// Market stored market totals and config
func (p *Pool) Market(asset string) (core.Market, error) {
	if err := p.rlock(); err != nil {
		return core.Market{}, err
	}
	defer p.mu.RUnlock()

	m, err := p.viewMarket(asset)
	if err != nil {
		return core.Market{}, err
	}

	return m.Snapshot(), nil
}

// MarketConfig config of a listed market
func (p *Pool) MarketConfig(asset string) (core.MarketConfig, error) {
	m, err := p.Market(asset)
	return m.Config, err
}

// ExchangeRate exchange rate as if interest were accrued now
func (p *Pool) ExchangeRate(asset string) (*uint256.Int, error) {
	if err := p.rlock(); err != nil {
		return nil, err
	}
	defer p.mu.RUnlock()

	return p.exchangeRate(asset)
}

func (p *Pool) exchangeRate(asset string) (*uint256.Int, error) {
	m, err := p.viewMarket(asset)
	if err != nil {
		return nil, err
	}

	c := p.accrued(m)
	return compound.ExchangeRate(&c)
}

// BorrowBalance borrow balance of user as if interest were accrued now
func (p *Pool) BorrowBalance(user, asset string) (*uint256.Int, error) {
	if err := p.rlock(); err != nil {
		return nil, err
	}
	defer p.mu.RUnlock()

	return p.currentBorrowBalance(user, asset)
}

func (p *Pool) currentBorrowBalance(user, asset string) (*uint256.Int, error) {
	m, err := p.viewMarket(asset)
	if err != nil {
		return nil, err
	}

	c := p.accrued(m)
	return compound.CurrentBorrow(m.Borrow(user), &c.BorrowIndex)
}

// SupplyBalance share balance of user
func (p *Pool) SupplyBalance(user, asset string) *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if m, ok := p.markets[asset]; ok {
		return m.Supply(user)
	}

	return compound.Zero()
}

// CollateralBalance collateral share balance of user
func (p *Pool) CollateralBalance(user, asset string) *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if m, ok := p.markets[asset]; ok {
		return m.Collateral(user)
	}

	return compound.Zero()
}

// EnteredMarkets markets user entered, unordered
func (p *Pool) EnteredMarkets(user string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if s, ok := p.enteredMarkets[user]; ok {
		return s.Values()
	}

	return nil
}

// IsEntered whether user entered market
func (p *Pool) IsEntered(user, asset string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isEntered(user, asset)
}

// CreditMarkets markets user has a credit limit in, unordered
func (p *Pool) CreditMarkets(user string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if s, ok := p.creditMarkets[user]; ok {
		return s.Values()
	}

	return nil
}

// CreditLimit credit limit of user in market
func (p *Pool) CreditLimit(user, asset string) *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	limit := p.creditLimits[user][asset]
	return &limit
}

// IsCreditAccount whether user has any credit limit
func (p *Pool) IsCreditAccount(user string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isCreditAccount(user)
}

// LiquidityCheckStatus liquidity check status of user
func (p *Pool) LiquidityCheckStatus(user string) core.LiquidityCheckStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.liquidityCheckStatus[user]
}

// AccountLiquidity collateral value and debt value of user as if interest were accrued now
func (p *Pool) AccountLiquidity(ctx context.Context, user string) (collateralValue, debtValue *uint256.Int, err error) {
	if err := p.rlock(); err != nil {
		return nil, nil, err
	}
	defer p.mu.RUnlock()

	return p.accountLiquidity(ctx, user, true)
}

// IsLiquidatable collateral value below debt value as if interest were accrued now
func (p *Pool) IsLiquidatable(ctx context.Context, user string) (bool, error) {
	if err := p.rlock(); err != nil {
		return false, err
	}
	defer p.mu.RUnlock()

	if p.isCreditAccount(user) {
		return false, nil
	}

	return p.isLiquidatable(ctx, user, true)
}

// Accounts users who entered at least one market, sorted
func (p *Pool) Accounts() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]string, 0, len(p.enteredMarkets))
	for user, s := range p.enteredMarkets {
		if s.Len() > 0 {
			users = append(users, user)
		}
	}

	sort.Strings(users)
	return users
}

// MaxBorrow how much of asset user can borrow as if interest were accrued now
func (p *Pool) MaxBorrow(ctx context.Context, user, asset string) (*uint256.Int, error) {
	if err := p.rlock(); err != nil {
		return nil, err
	}
	defer p.mu.RUnlock()

	return p.maxBorrow(ctx, user, asset, true)
}

// maxBorrow values the account at stored totals unless current is set
func (p *Pool) maxBorrow(ctx context.Context, user, asset string, current bool) (*uint256.Int, error) {
	m, err := p.viewMarket(asset)
	if err != nil {
		return nil, err
	}

	c := p.accrued(m)
	cash := c.TotalCash.Clone()

	if p.isCreditAccount(user) {
		balance, err := compound.CurrentBorrow(m.Borrow(user), &c.BorrowIndex)
		if err != nil {
			return nil, err
		}

		limit := p.creditLimits[user][asset]
		if !balance.Lt(&limit) {
			return compound.Zero(), nil
		}

		return compound.Min(new(uint256.Int).Sub(&limit, balance), cash), nil
	}

	collateralValue, debtValue, err := p.accountLiquidity(ctx, user, current)
	if err != nil {
		return nil, err
	}

	if !debtValue.Lt(collateralValue) {
		return compound.Zero(), nil
	}

	price, err := p.price(ctx, asset)
	if err != nil {
		return nil, err
	}

	amount, err := compound.MulDiv(new(uint256.Int).Sub(collateralValue, debtValue), compound.Scale(), price)
	if err != nil {
		return nil, err
	}

	return compound.Min(amount, cash), nil
}

// LiquidationSeizeAmount collateral shares seized for taking over repayAmount of debt
func (p *Pool) LiquidationSeizeAmount(ctx context.Context, marketBorrow, marketCollateral string, repayAmount *uint256.Int) (*uint256.Int, error) {
	if err := p.rlock(); err != nil {
		return nil, err
	}
	defer p.mu.RUnlock()

	mBorrow, err := p.viewMarket(marketBorrow)
	if err != nil {
		return nil, err
	}

	mCollateral, err := p.viewMarket(marketCollateral)
	if err != nil {
		return nil, err
	}

	c := p.accrued(mCollateral)
	return p.seizeAmount(ctx, mBorrow, &c, repayAmount)
}
