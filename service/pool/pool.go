package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"ironbank/core"
	"ironbank/internal/set"
	"ironbank/pkg/compound"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
	"github.com/holiman/uint256"
)

// Options pool collaborators and initial roles
type Options struct {
	Owner              string
	MarketConfigurator string
	CreditLimitManager string

	Oracle    core.IPriceOracle
	Custodian core.ICustodian
	Helpers   core.IHelperRegistry
	// optional
	Events core.EventSink
	Clock  clock.Clock
}

// Pool lending pool ledger
//
// Every mutating method holds the write lock for its whole duration and is
// all-or-nothing: on error every ledger write and every collaborator call made
// so far is undone. Views take the read lock.
//
// While a deferred liquidity check callback runs, mutating methods and the
// views returning an error fail with ErrReentry instead of blocking; the
// callback reads and writes through its Batch. Views without an error result
// must not be called from a callback.
type Pool struct {
	mu        sync.RWMutex
	deferring atomic.Int32

	owner              string
	pendingOwner       string
	marketConfigurator string
	creditLimitManager string

	oracle    core.IPriceOracle
	custodian core.ICustodian
	helpers   core.IHelperRegistry
	events    core.EventSink
	clock     clock.Clock

	markets    map[string]*core.Market
	allMarkets *set.Set[string]

	enteredMarkets map[string]*set.Set[string]
	creditLimits   map[string]map[string]uint256.Int
	creditMarkets  map[string]*set.Set[string]

	liquidityCheckStatus map[string]core.LiquidityCheckStatus
}

// New new pool
func New(opt Options) (*Pool, error) {
	if opt.Owner == "" {
		return nil, compound.Errorf(core.ErrInvalidAddress, "owner required")
	}

	if opt.Oracle == nil || opt.Custodian == nil {
		return nil, errors.New("pool: oracle and custodian are required")
	}

	if opt.Clock == nil {
		opt.Clock = clock.New()
	}

	return &Pool{
		owner:                opt.Owner,
		marketConfigurator:   opt.MarketConfigurator,
		creditLimitManager:   opt.CreditLimitManager,
		oracle:               opt.Oracle,
		custodian:            opt.Custodian,
		helpers:              opt.Helpers,
		events:               opt.Events,
		clock:                opt.Clock,
		markets:              map[string]*core.Market{},
		allMarkets:           set.New[string](),
		enteredMarkets:       map[string]*set.Set[string]{},
		creditLimits:         map[string]map[string]uint256.Int{},
		creditMarkets:        map[string]*set.Set[string]{},
		liquidityCheckStatus: map[string]core.LiquidityCheckStatus{},
	}, nil
}

// reentered a deferred liquidity check callback holds the write lock
func (p *Pool) reentered() error {
	if p.deferring.Load() > 0 {
		return compound.Errorf(core.ErrReentry, "pool is busy with a deferred liquidity check, use the batch")
	}

	return nil
}

func (p *Pool) rlock() error {
	if err := p.reentered(); err != nil {
		return err
	}

	p.mu.RLock()
	return nil
}

// run execute fn as one atomic ledger call
func (p *Pool) run(ctx context.Context, op, caller string, fn func(tx *txn) error) error {
	if err := p.reentered(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	log := logger.FromContext(ctx).WithField("op", op)
	ctx = logger.WithContext(ctx, log)

	tx := p.begin(ctx, caller)
	if err := fn(tx); err != nil {
		tx.rollback(0)
		log.WithError(err).Infoln("rejected")
		return err
	}

	p.commit(tx)
	return nil
}

func (p *Pool) begin(ctx context.Context, caller string) *txn {
	return &txn{
		ctx:     ctx,
		caller:  caller,
		now:     uint64(p.clock.Now().Unix()),
		traceID: uuid.New(),
		touched: map[*core.Market]bool{},
	}
}

func (p *Pool) commit(tx *txn) {
	log := logger.FromContext(tx.ctx)
	for _, e := range tx.events {
		log.WithField("user", e.User).WithField("market", e.Market).Debugln(e.Action, string(e.Data))
	}

	if p.events != nil && len(tx.events) > 0 {
		p.events.Emit(tx.ctx, tx.events)
	}
}

func (p *Pool) authorize(tx *txn, user string) error {
	if user == "" {
		return compound.Errorf(core.ErrInvalidAddress, "empty user")
	}

	if tx.caller == user {
		return nil
	}

	if p.helpers != nil && p.helpers.IsHelperAuthorized(user, tx.caller) {
		return nil
	}

	return compound.Errorf(core.ErrUnauthorized, "%s is not authorized for %s", tx.caller, user)
}

func (p *Pool) isCreditAccount(user string) bool {
	s, ok := p.creditMarkets[user]
	return ok && s.Len() > 0
}
