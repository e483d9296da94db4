package config

import (
	"fmt"
	"time"

	"ironbank/core"
	"ironbank/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Config ironbank node config
type Config struct {
	DB      db.Config `json:"db"`
	Pool    Pool      `json:"pool"`
	Roles   Roles     `json:"roles"`
	Oracle  Oracle    `json:"oracle"`
	Markets []Market  `json:"markets"`
	Worker  Worker    `json:"worker"`
}

// Pool pool account
type Pool struct {
	// custody address holding the pooled assets
	Address string `json:"address" valid:"required"`
	// persist events into db
	Journal bool `json:"journal"`
}

// Roles role addresses
type Roles struct {
	Owner              string `json:"owner" valid:"required"`
	MarketConfigurator string `json:"market_configurator"`
	CreditLimitManager string `json:"credit_limit_manager"`
}

// Oracle static prices, in usd per smallest unit
type Oracle struct {
	Prices   map[string]string `json:"prices"`
	CacheTTL string            `json:"cache_ttl"`
	// price feed replacing the static prices when set
	Endpoint string `json:"endpoint" valid:"url"`
}

// Worker worker intervals
type Worker struct {
	Interest  string `json:"interest"`
	Liquidity string `json:"liquidity"`
	Location  string `json:"location"`
}

// Market market listed at startup, factors are plain decimals like 0.75
type Market struct {
	Asset               string `json:"asset" valid:"required"`
	CollateralFactor    string `json:"collateral_factor"`
	ReserveFactor       string `json:"reserve_factor"`
	LiquidationBonus    string `json:"liquidation_bonus"`
	SupplyCap           string `json:"supply_cap"`
	BorrowCap           string `json:"borrow_cap"`
	CollateralCap       string `json:"collateral_cap"`
	InitialExchangeRate string `json:"initial_exchange_rate"`
	SupplyPaused        bool   `json:"supply_paused"`
	BorrowPaused        bool   `json:"borrow_paused"`

	// yearly jump rate model
	BaseRate       string `json:"base_rate"`
	Multiplier     string `json:"multiplier"`
	JumpMultiplier string `json:"jump_multiplier"`
	Kink           string `json:"kink"`
}

func defaults(cfg *Config) {
	if cfg.Roles.MarketConfigurator == "" {
		cfg.Roles.MarketConfigurator = cfg.Roles.Owner
	}

	if cfg.Roles.CreditLimitManager == "" {
		cfg.Roles.CreditLimitManager = cfg.Roles.Owner
	}

	if cfg.Oracle.CacheTTL == "" {
		cfg.Oracle.CacheTTL = "10s"
	}

	if cfg.Worker.Interest == "" {
		cfg.Worker.Interest = "1m"
	}

	if cfg.Worker.Liquidity == "" {
		cfg.Worker.Liquidity = "30s"
	}

	if cfg.Worker.Location == "" {
		cfg.Worker.Location = "Local"
	}

	for idx := range cfg.Markets {
		m := &cfg.Markets[idx]
		if m.InitialExchangeRate == "" {
			m.InitialExchangeRate = "1"
		}

		if m.LiquidationBonus == "" && m.CollateralFactor != "" {
			m.LiquidationBonus = "1.08"
		}
	}
}

func parseDecimal(name, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", name, err)
	}

	return d, nil
}

// Duration parse durations like "30s", plain numbers are seconds
func Duration(v string) (time.Duration, error) {
	if d, err := cast.ToInt64E(v); err == nil {
		return time.Duration(d) * time.Second, nil
	}

	return cast.ToDurationE(v)
}

// FixedPrices static prices as 1e18 fixed point
func (o Oracle) FixedPrices() (map[string]*uint256.Int, error) {
	prices := make(map[string]*uint256.Int, len(o.Prices))
	for asset, v := range o.Prices {
		d, err := parseDecimal("price of "+asset, v)
		if err != nil {
			return nil, err
		}

		price, err := number.Wad(d)
		if err != nil {
			return nil, err
		}

		prices[asset] = price
	}

	return prices, nil
}

// Rates yearly base rate, multiplier, jump multiplier and kink
func (m Market) Rates() (base, multiplier, jump, kink decimal.Decimal, err error) {
	if base, err = parseDecimal("base_rate", m.BaseRate); err != nil {
		return
	}

	if multiplier, err = parseDecimal("multiplier", m.Multiplier); err != nil {
		return
	}

	if jump, err = parseDecimal("jump_multiplier", m.JumpMultiplier); err != nil {
		return
	}

	kink, err = parseDecimal("kink", m.Kink)
	return
}

// MarketConfig convert into a market config, tokens and interest rate model are attached by the caller
func (m Market) MarketConfig() (core.MarketConfig, error) {
	cfg := core.MarketConfig{
		SupplyPaused: m.SupplyPaused,
		BorrowPaused: m.BorrowPaused,
	}

	for _, f := range []struct {
		name string
		v    string
		out  *uint16
	}{
		{"collateral_factor", m.CollateralFactor, &cfg.CollateralFactor},
		{"reserve_factor", m.ReserveFactor, &cfg.ReserveFactor},
		{"liquidation_bonus", m.LiquidationBonus, &cfg.LiquidationBonus},
	} {
		d, err := parseDecimal(f.name, f.v)
		if err != nil {
			return cfg, err
		}

		if *f.out, err = number.Bps(d); err != nil {
			return cfg, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	for _, f := range []struct {
		name string
		v    string
		exp  int32
		out  *uint256.Int
	}{
		{"supply_cap", m.SupplyCap, 0, &cfg.SupplyCap},
		{"borrow_cap", m.BorrowCap, 0, &cfg.BorrowCap},
		{"collateral_cap", m.CollateralCap, 0, &cfg.CollateralCap},
		{"initial_exchange_rate", m.InitialExchangeRate, 18, &cfg.InitialExchangeRate},
	} {
		d, err := parseDecimal(f.name, f.v)
		if err != nil {
			return cfg, err
		}

		v, err := number.Fixed(d, f.exp)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", f.name, err)
		}

		f.out.Set(v)
	}

	return cfg, nil
}
