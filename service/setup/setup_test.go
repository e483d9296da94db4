package setup

import (
	"context"
	"testing"

	"ironbank/config"
	"ironbank/core"

	"github.com/facebookgo/clock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Pool:  config.Pool{Address: "pool"},
		Roles: config.Roles{Owner: "owner", MarketConfigurator: "owner", CreditLimitManager: "owner"},
		Oracle: config.Oracle{
			Prices:   map[string]string{"usdc": "1", "eth": "1500"},
			CacheTTL: "1m",
		},
		Markets: []config.Market{
			{Asset: "usdc", CollateralFactor: "0.8", LiquidationBonus: "1.08", InitialExchangeRate: "1", BaseRate: "0.02", Multiplier: "0.2", JumpMultiplier: "2", Kink: "0.8"},
			{Asset: "eth", CollateralFactor: "0.75", LiquidationBonus: "1.1", InitialExchangeRate: "1"},
		},
	}

	bank, err := Build(ctx, cfg, nil, clock.NewMock())
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"usdc", "eth"}, bank.Pool.Markets())

	mc, err := bank.Pool.MarketConfig("usdc")
	require.Nil(t, err)
	assert.Equal(t, uint16(8000), mc.CollateralFactor)
	assert.Equal(t, "ibusdc", mc.IBToken.Address())
	assert.Same(t, bank.Rates["usdc"], mc.InterestRateModel)

	bank.SetPrice("eth", uint256.NewInt(2000))
	price, err := bank.Oracle.GetPrice(ctx, "eth")
	require.Nil(t, err)
	assert.Equal(t, uint64(2000), price.Uint64())

	t.Run("invalid market", func(t *testing.T) {
		cfg.Markets = append(cfg.Markets, config.Market{Asset: "doge", CollateralFactor: "0.95", LiquidationBonus: "1.1", InitialExchangeRate: "1"})
		defer func() { cfg.Markets = cfg.Markets[:2] }()

		_, err := Build(ctx, cfg, nil, nil)
		assert.ErrorIs(t, err, core.ErrInvalidMarketConfig)
	})
}
