package views

import (
	"context"

	"ironbank/core"
	"ironbank/pkg/compound"
	"ironbank/pkg/number"
	"ironbank/service/irm"
	"ironbank/service/pool"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Market market view
type Market struct {
	Asset            string          `json:"asset"`
	SupplyPaused     bool            `json:"supply_paused"`
	BorrowPaused     bool            `json:"borrow_paused"`
	IsFrozen         bool            `json:"is_frozen"`
	CollateralFactor decimal.Decimal `json:"collateral_factor"`
	ReserveFactor    decimal.Decimal `json:"reserve_factor"`
	LiquidationBonus decimal.Decimal `json:"liquidation_bonus"`

	TotalCash       string `json:"total_cash"`
	TotalBorrow     string `json:"total_borrow"`
	TotalSupply     string `json:"total_supply"`
	TotalReserves   string `json:"total_reserves"`
	TotalCollateral string `json:"total_collateral"`

	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	BorrowIndex     decimal.Decimal `json:"borrow_index"`
	UtilizationRate decimal.Decimal `json:"utilization_rate"`
	BorrowAPY       decimal.Decimal `json:"borrow_apy"`
	SupplyAPY       decimal.Decimal `json:"supply_apy"`
	Price           decimal.Decimal `json:"price"`
	UpdatedAt       uint64          `json:"updated_at"`
}

type supplyRater interface {
	GetSupplyRate(cash, borrow *uint256.Int, reserveFactor uint16) (*uint256.Int, error)
}

// MarketOf market view of asset, prices of oracle are optional
func MarketOf(ctx context.Context, p *pool.Pool, oracle core.IPriceOracle, asset string) (*Market, error) {
	m, err := p.Market(asset)
	if err != nil {
		return nil, err
	}

	rate, err := p.ExchangeRate(asset)
	if err != nil {
		return nil, err
	}

	cfg := m.Config
	view := &Market{
		Asset:            asset,
		SupplyPaused:     cfg.SupplyPaused,
		BorrowPaused:     cfg.BorrowPaused,
		IsFrozen:         cfg.IsFrozen,
		CollateralFactor: number.FromFixed(compound.Factor(cfg.CollateralFactor), 4),
		ReserveFactor:    number.FromFixed(compound.Factor(cfg.ReserveFactor), 4),
		LiquidationBonus: number.FromFixed(compound.Factor(cfg.LiquidationBonus), 4),
		TotalCash:        m.TotalCash.Dec(),
		TotalBorrow:      m.TotalBorrow.Dec(),
		TotalSupply:      m.TotalSupply.Dec(),
		TotalReserves:    m.TotalReserves.Dec(),
		TotalCollateral:  m.TotalCollateral.Dec(),
		ExchangeRate:     number.FromWad(rate),
		BorrowIndex:      number.FromWad(&m.BorrowIndex),
		UtilizationRate:  number.FromWad(compound.UtilizationRate(&m.TotalCash, &m.TotalBorrow)),
		UpdatedAt:        m.LastUpdateTimestamp,
	}

	if cfg.InterestRateModel != nil {
		if borrowRate, err := cfg.InterestRateModel.GetBorrowRate(&m.TotalCash, &m.TotalBorrow); err == nil {
			view.BorrowAPY = irm.APY(borrowRate)
		}

		if r, ok := cfg.InterestRateModel.(supplyRater); ok {
			if supplyRate, err := r.GetSupplyRate(&m.TotalCash, &m.TotalBorrow, cfg.ReserveFactor); err == nil {
				view.SupplyAPY = irm.APY(supplyRate)
			}
		}
	}

	if oracle != nil {
		if price, err := oracle.GetPrice(ctx, asset); err == nil && price != nil {
			view.Price = number.FromWad(price)
		}
	}

	return view, nil
}

// Markets views of all listed markets
func Markets(ctx context.Context, p *pool.Pool, oracle core.IPriceOracle) ([]*Market, error) {
	assets := p.Markets()
	out := make([]*Market, 0, len(assets))
	for _, asset := range assets {
		view, err := MarketOf(ctx, p, oracle, asset)
		if err != nil {
			return nil, err
		}

		out = append(out, view)
	}

	return out, nil
}

// AccountMarket position of an account in one market
type AccountMarket struct {
	Market      string `json:"market"`
	Supply      string `json:"supply"`
	Collateral  string `json:"collateral"`
	Borrow      string `json:"borrow"`
	CreditLimit string `json:"credit_limit,omitempty"`
}

// Account account view
type Account struct {
	User                 string          `json:"user"`
	IsCreditAccount      bool            `json:"is_credit_account"`
	EnteredMarkets       []string        `json:"entered_markets"`
	CreditMarkets        []string        `json:"credit_markets,omitempty"`
	LiquidityCheckStatus string          `json:"liquidity_check_status"`
	CollateralValue      string          `json:"collateral_value"`
	DebtValue            string          `json:"debt_value"`
	Liquidatable         bool            `json:"liquidatable"`
	Markets              []AccountMarket `json:"markets"`
}

// AccountOf account view of user over every listed market
func AccountOf(ctx context.Context, p *pool.Pool, user string) (*Account, error) {
	view := &Account{
		User:                 user,
		IsCreditAccount:      p.IsCreditAccount(user),
		EnteredMarkets:       p.EnteredMarkets(user),
		CreditMarkets:        p.CreditMarkets(user),
		LiquidityCheckStatus: p.LiquidityCheckStatus(user).String(),
		Markets:              []AccountMarket{},
	}

	collateralValue, debtValue, err := p.AccountLiquidity(ctx, user)
	if err != nil {
		return nil, err
	}

	view.CollateralValue = collateralValue.Dec()
	view.DebtValue = debtValue.Dec()
	view.Liquidatable = !view.IsCreditAccount && collateralValue.Lt(debtValue)

	for _, asset := range p.Markets() {
		borrow, err := p.BorrowBalance(user, asset)
		if err != nil {
			return nil, err
		}

		pos := AccountMarket{
			Market:     asset,
			Supply:     p.SupplyBalance(user, asset).Dec(),
			Collateral: p.CollateralBalance(user, asset).Dec(),
			Borrow:     borrow.Dec(),
		}

		if limit := p.CreditLimit(user, asset); !limit.IsZero() {
			pos.CreditLimit = limit.Dec()
		}

		if pos.Supply == "0" && pos.Borrow == "0" && pos.CreditLimit == "" {
			continue
		}

		view.Markets = append(view.Markets, pos)
	}

	return view, nil
}
