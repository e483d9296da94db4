package config

import (
	"fmt"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/config"
)

// Load load config file
func Load(cfgFile string, cfg *Config) error {
	config.AutomaticLoadEnv("IRONBANK")
	if err := config.LoadYaml(cfgFile, cfg); err != nil {
		return err
	}

	defaults(cfg)
	return Validate(cfg)
}

// Validate required fields and parsable values
func Validate(cfg *Config) error {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		return err
	}

	if _, err := cfg.Oracle.FixedPrices(); err != nil {
		return err
	}

	for _, v := range []string{cfg.Oracle.CacheTTL, cfg.Worker.Interest, cfg.Worker.Liquidity} {
		if _, err := Duration(v); err != nil {
			return err
		}
	}

	assets := map[string]bool{}
	for _, m := range cfg.Markets {
		if assets[m.Asset] {
			return fmt.Errorf("market %s listed twice", m.Asset)
		}
		assets[m.Asset] = true

		if _, err := m.MarketConfig(); err != nil {
			return fmt.Errorf("market %s: %w", m.Asset, err)
		}

		if _, _, _, _, err := m.Rates(); err != nil {
			return fmt.Errorf("market %s: %w", m.Asset, err)
		}
	}

	return nil
}
