package core

import (
	"context"
	"time"

	"github.com/holiman/uint256"
)

// MarketConfig market parameters set by the market configurator
type MarketConfig struct {
	IsListed     bool `json:"is_listed"`
	SupplyPaused bool `json:"supply_paused"`
	BorrowPaused bool `json:"borrow_paused"`
	IsFrozen     bool `json:"is_frozen"`

	// 抵押因子, 平台保留金率 and 清算激励 in basis points of FactorScale, the bonus is >= FactorScale
	CollateralFactor uint16 `json:"collateral_factor"`
	ReserveFactor    uint16 `json:"reserve_factor"`
	LiquidationBonus uint16 `json:"liquidation_bonus"`

	// zero means uncapped, supply cap is denominated in shares
	SupplyCap     uint256.Int `json:"supply_cap"`
	BorrowCap     uint256.Int `json:"borrow_cap"`
	CollateralCap uint256.Int `json:"collateral_cap"`

	// 初始兑换率
	InitialExchangeRate uint256.Int `json:"initial_exchange_rate"`

	IBToken           IShareToken        `json:"-"`
	DebtToken         IShareToken        `json:"-"`
	InterestRateModel IInterestRateModel `json:"-"`
}

// BorrowSnapshot borrow balance and the borrow index it was last settled at
type BorrowSnapshot struct {
	Balance uint256.Int `json:"balance"`
	Index   uint256.Int `json:"index"`
}

// Market market ledger, keyed by underlying asset
type Market struct {
	Asset  string       `json:"asset"`
	Config MarketConfig `json:"config"`

	TotalCash   uint256.Int `json:"total_cash"`
	TotalBorrow uint256.Int `json:"total_borrow"`
	// share units
	TotalSupply     uint256.Int `json:"total_supply"`
	TotalReserves   uint256.Int `json:"total_reserves"`
	TotalCollateral uint256.Int `json:"total_collateral"`

	BorrowIndex         uint256.Int `json:"borrow_index"`
	LastUpdateTimestamp uint64      `json:"last_update_timestamp"`

	UserSupplies    map[string]uint256.Int    `json:"-"`
	UserCollaterals map[string]uint256.Int    `json:"-"`
	UserBorrows     map[string]BorrowSnapshot `json:"-"`
}

// NewMarket new market with zeroed balances
func NewMarket(asset string) *Market {
	return &Market{
		Asset:           asset,
		UserSupplies:    map[string]uint256.Int{},
		UserCollaterals: map[string]uint256.Int{},
		UserBorrows:     map[string]BorrowSnapshot{},
	}
}

// Supply share balance of user
func (m *Market) Supply(user string) *uint256.Int {
	v := m.UserSupplies[user]
	return &v
}

// Collateral collateral share balance of user
func (m *Market) Collateral(user string) *uint256.Int {
	v := m.UserCollaterals[user]
	return &v
}

// Borrow stored borrow snapshot of user
func (m *Market) Borrow(user string) BorrowSnapshot {
	return m.UserBorrows[user]
}

// Snapshot copy of the market totals without the user ledgers
func (m *Market) Snapshot() Market {
	s := *m
	s.UserSupplies = nil
	s.UserCollaterals = nil
	s.UserBorrows = nil
	return s
}

// MarketSnapshot market totals recorded after an interest accrual
type MarketSnapshot struct {
	ID              int64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Asset           string    `sql:"size:64;index:idx_market_snapshots_asset" json:"asset,omitempty"`
	TotalCash       string    `sql:"size:80" json:"total_cash,omitempty"`
	TotalBorrow     string    `sql:"size:80" json:"total_borrow,omitempty"`
	TotalSupply     string    `sql:"size:80" json:"total_supply,omitempty"`
	TotalReserves   string    `sql:"size:80" json:"total_reserves,omitempty"`
	TotalCollateral string    `sql:"size:80" json:"total_collateral,omitempty"`
	BorrowIndex     string    `sql:"size:80" json:"borrow_index,omitempty"`
	ExchangeRate    string    `sql:"size:80" json:"exchange_rate,omitempty"`
	Timestamp       uint64    `json:"timestamp,omitempty"`
	CreatedAt       time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

// IMarketSnapshotStore market snapshot store interface
type IMarketSnapshotStore interface {
	Save(ctx context.Context, snapshot *MarketSnapshot) error
	List(ctx context.Context, asset string, fromID int64, limit int) ([]*MarketSnapshot, error)
	// Latest reports true when asset has no snapshot yet
	Latest(ctx context.Context, asset string) (*MarketSnapshot, bool, error)
}
