package setup

import (
	"context"
	"fmt"

	"ironbank/config"
	"ironbank/core"
	"ironbank/service/custody"
	"ironbank/service/helper"
	"ironbank/service/irm"
	"ironbank/service/oracle"
	"ironbank/service/pool"
	"ironbank/service/token"

	"github.com/facebookgo/clock"
	"github.com/holiman/uint256"
)

// Bank a pool with the in memory collaborators it was built with
type Bank struct {
	Pool    *pool.Pool
	Custody *custody.Memory
	Prices  *oracle.Static
	Oracle  *oracle.CacheOracle
	Helpers *helper.Registry
	Clock   clock.Clock

	IBTokens   map[string]*token.Token
	DebtTokens map[string]*token.Token
	Rates      map[string]*irm.JumpRateModel
}

// Build a pool from cfg and list its markets
func Build(ctx context.Context, cfg *config.Config, events core.EventSink, clk clock.Clock) (*Bank, error) {
	prices, err := cfg.Oracle.FixedPrices()
	if err != nil {
		return nil, err
	}

	ttl, err := config.Duration(cfg.Oracle.CacheTTL)
	if err != nil {
		return nil, err
	}

	if clk == nil {
		clk = clock.New()
	}

	b := &Bank{
		Custody:    custody.New(cfg.Pool.Address),
		Prices:     oracle.NewStatic(prices),
		Helpers:    helper.New(),
		Clock:      clk,
		IBTokens:   map[string]*token.Token{},
		DebtTokens: map[string]*token.Token{},
		Rates:      map[string]*irm.JumpRateModel{},
	}

	var feed core.IPriceOracle = b.Prices
	if cfg.Oracle.Endpoint != "" {
		feed = oracle.NewRemote(cfg.Oracle.Endpoint)
	}

	b.Oracle = oracle.Cache(feed, ttl)
	if b.Pool, err = pool.New(pool.Options{
		Owner:              cfg.Roles.Owner,
		MarketConfigurator: cfg.Roles.MarketConfigurator,
		CreditLimitManager: cfg.Roles.CreditLimitManager,
		Oracle:             b.Oracle,
		Custodian:          b.Custody,
		Helpers:            b.Helpers,
		Events:             events,
		Clock:              clk,
	}); err != nil {
		return nil, err
	}

	for _, m := range cfg.Markets {
		if err := b.list(ctx, cfg.Roles.MarketConfigurator, m); err != nil {
			return nil, fmt.Errorf("list market %s: %w", m.Asset, err)
		}
	}

	return b, nil
}

func (b *Bank) list(ctx context.Context, configurator string, m config.Market) error {
	mc, err := m.MarketConfig()
	if err != nil {
		return err
	}

	base, multiplier, jump, kink, err := m.Rates()
	if err != nil {
		return err
	}

	rates, err := irm.NewJumpRateModel(base, multiplier, jump, kink)
	if err != nil {
		return err
	}

	ib := token.NewIBToken("ib"+m.Asset, m.Asset)
	debt := token.NewDebtToken("debt"+m.Asset, m.Asset)
	ib.Bind(b.Pool)
	debt.Bind(b.Pool)

	mc.IBToken = ib
	mc.DebtToken = debt
	mc.InterestRateModel = rates
	if err := b.Pool.ListMarket(ctx, configurator, m.Asset, mc); err != nil {
		return err
	}

	b.IBTokens[m.Asset] = ib
	b.DebtTokens[m.Asset] = debt
	b.Rates[m.Asset] = rates
	return nil
}

// SetPrice update the static price and drop the cached one
func (b *Bank) SetPrice(asset string, price *uint256.Int) {
	b.Prices.SetPrice(asset, price)
	b.Oracle.Invalidate(asset)
}
