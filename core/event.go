package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx/types"
)

// EventAction event action
type EventAction string

const (
	EventSupply              EventAction = "supply"
	EventBorrow              EventAction = "borrow"
	EventRedeem              EventAction = "redeem"
	EventRepay               EventAction = "repay"
	EventLiquidate           EventAction = "liquidate"
	EventTransferIBToken     EventAction = "transfer_ib_token"
	EventTransferDebt        EventAction = "transfer_debt"
	EventAccrueInterest      EventAction = "accrue_interest"
	EventCollateralIncreased EventAction = "collateral_increased"
	EventCollateralDecreased EventAction = "collateral_decreased"
	EventMarketEntered       EventAction = "market_entered"
	EventMarketExited        EventAction = "market_exited"
	EventMarketListed        EventAction = "market_listed"
	EventMarketDelisted      EventAction = "market_delisted"
	EventMarketConfigured    EventAction = "market_configured"
	EventCreditLimitChanged  EventAction = "credit_limit_changed"
	EventReservesReduced     EventAction = "reserves_reduced"
	EventTokenSeized         EventAction = "token_seized"
	EventPriceOracleSet      EventAction = "price_oracle_set"
	EventRoleSet             EventAction = "role_set"
	EventOwnershipTransfer   EventAction = "ownership_transfer"
)

// Event committed ledger event
type Event struct {
	ID        int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID   string         `sql:"size:36;unique_index:idx_events_trace_id" json:"trace_id,omitempty"`
	Action    EventAction    `sql:"size:36;index:idx_events_action" json:"action,omitempty"`
	User      string         `gorm:"column:user_id" sql:"size:64;index:idx_events_user" json:"user,omitempty"`
	Market    string         `sql:"size:64;index:idx_events_market" json:"market,omitempty"`
	Data      types.JSONText `sql:"type:TEXT" json:"data,omitempty"`
	Timestamp uint64         `json:"timestamp,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

// EventData event payload
type EventData map[string]interface{}

// Put put value, uint256 values are stored as decimal strings
func (d EventData) Put(key string, value interface{}) EventData {
	switch v := value.(type) {
	case *uint256.Int:
		d[key] = v.Dec()
	case uint256.Int:
		d[key] = v.Dec()
	default:
		d[key] = v
	}

	return d
}

// Format format as []byte
func (d EventData) Format() []byte {
	bs, err := json.Marshal(d)
	if err != nil {
		return []byte("{}")
	}

	return bs
}

// EventSink receives events of committed operations
type EventSink interface {
	Emit(ctx context.Context, events []*Event)
}

// IEventStore event store interface
type IEventStore interface {
	Create(ctx context.Context, events []*Event) error
	List(ctx context.Context, fromID int64, limit int) ([]*Event, error)
	ListByUser(ctx context.Context, user string, fromID int64, limit int) ([]*Event, error)
}
