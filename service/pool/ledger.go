package pool

import (
	"fmt"

	"ironbank/core"
	"ironbank/internal/set"
	"ironbank/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// listedMarket find a listed market and journal its totals
func (p *Pool) listedMarket(tx *txn, asset string) (*core.Market, error) {
	m, ok := p.markets[asset]
	if !ok || !m.Config.IsListed {
		return nil, compound.Errorf(core.ErrMarketNotListed, "market %s not listed", asset)
	}

	p.touch(tx, m)
	return m, nil
}

// touch journal the market totals and config once per call
func (p *Pool) touch(tx *txn, m *core.Market) {
	if tx.touched[m] {
		return
	}

	tx.touched[m] = true
	saved := m.Snapshot()
	tx.onRollback(func() {
		supplies, collaterals, borrows := m.UserSupplies, m.UserCollaterals, m.UserBorrows
		*m = saved
		m.UserSupplies, m.UserCollaterals, m.UserBorrows = supplies, collaterals, borrows
		delete(tx.touched, m)
	})
}

func (p *Pool) accrue(tx *txn, m *core.Market) error {
	p.touch(tx, m)

	accrual, err := compound.AccrueInterest(m, tx.now)
	if err != nil {
		return err
	}

	if accrual != nil {
		tx.emit(core.EventAccrueInterest, "", m.Asset, core.EventData{}.
			Put("borrow_rate", accrual.BorrowRate).
			Put("interest", accrual.Interest).
			Put("fee", accrual.Fee).
			Put("reserves", accrual.Reserves).
			Put("borrow_index", m.BorrowIndex))
	}

	return nil
}

func putAmount(tx *txn, values map[string]uint256.Int, key string, v *uint256.Int) {
	old, ok := values[key]
	tx.onRollback(func() {
		if ok {
			values[key] = old
		} else {
			delete(values, key)
		}
	})

	if v.IsZero() {
		delete(values, key)
		return
	}

	values[key] = *v
}

func putBorrow(tx *txn, values map[string]core.BorrowSnapshot, key string, b core.BorrowSnapshot) {
	old, ok := values[key]
	tx.onRollback(func() {
		if ok {
			values[key] = old
		} else {
			delete(values, key)
		}
	})

	if b.Balance.IsZero() {
		delete(values, key)
		return
	}

	values[key] = b
}

func (p *Pool) setSupply(tx *txn, m *core.Market, user string, v *uint256.Int) {
	putAmount(tx, m.UserSupplies, user, v)
}

// increaseCollateral grant up to shares of collateral, bounded by the collateral cap
func (p *Pool) increaseCollateral(tx *txn, m *core.Market, user string, shares *uint256.Int) (*uint256.Int, error) {
	granted := compound.CollateralGrant(&m.TotalCollateral, &m.Config.CollateralCap, shares)
	if granted.IsZero() {
		return granted, nil
	}

	collateral, err := compound.Add(m.Collateral(user), granted)
	if err != nil {
		return nil, err
	}

	total, err := compound.Add(&m.TotalCollateral, granted)
	if err != nil {
		return nil, err
	}

	putAmount(tx, m.UserCollaterals, user, collateral)
	m.TotalCollateral = *total
	tx.emit(core.EventCollateralIncreased, user, m.Asset, core.EventData{}.Put("amount", granted))
	return granted, nil
}

func (p *Pool) decreaseCollateral(tx *txn, m *core.Market, user string, shares *uint256.Int) error {
	if shares.IsZero() {
		return nil
	}

	collateral, err := compound.Sub(m.Collateral(user), shares)
	if err != nil {
		return compound.Errorf(core.ErrInsufficientBalance, "collateral of %s below %s", user, shares.Dec())
	}

	total, err := compound.Sub(&m.TotalCollateral, shares)
	if err != nil {
		return err
	}

	putAmount(tx, m.UserCollaterals, user, collateral)
	m.TotalCollateral = *total
	tx.emit(core.EventCollateralDecreased, user, m.Asset, core.EventData{}.Put("amount", shares))
	return nil
}

// decreaseCollateralCapped release min(shares, collateral)
func (p *Pool) decreaseCollateralCapped(tx *txn, m *core.Market, user string, shares *uint256.Int) (*uint256.Int, error) {
	amount := compound.Min(shares, m.Collateral(user))
	if err := p.decreaseCollateral(tx, m, user, amount); err != nil {
		return nil, err
	}

	return amount, nil
}

// updateBorrow settle the borrow of user and apply increase or decrease
func (p *Pool) updateBorrow(tx *txn, m *core.Market, user string, increase, decrease *uint256.Int) (*uint256.Int, error) {
	b, err := compound.NextBorrow(m.Borrow(user), &m.BorrowIndex, increase, decrease)
	if err != nil {
		return nil, err
	}

	putBorrow(tx, m.UserBorrows, user, b)
	return b.Balance.Clone(), nil
}

func (p *Pool) borrowBalance(m *core.Market, user string) (*uint256.Int, error) {
	return compound.CurrentBorrow(m.Borrow(user), &m.BorrowIndex)
}

func userSet(sets map[string]*set.Set[string], user string) *set.Set[string] {
	s, ok := sets[user]
	if !ok {
		s = set.New[string]()
		sets[user] = s
	}

	return s
}

func addMember(tx *txn, sets map[string]*set.Set[string], user, v string) bool {
	s := userSet(sets, user)
	if !s.Add(v) {
		return false
	}

	tx.onRollback(func() { s.Remove(v) })
	return true
}

func removeMember(tx *txn, sets map[string]*set.Set[string], user, v string) bool {
	s, ok := sets[user]
	if !ok || !s.Remove(v) {
		return false
	}

	tx.onRollback(func() { s.Add(v) })
	return true
}

func (p *Pool) isEntered(user, asset string) bool {
	s, ok := p.enteredMarkets[user]
	return ok && s.Has(asset)
}

func (p *Pool) enterMarket(tx *txn, user, asset string) {
	if addMember(tx, p.enteredMarkets, user, asset) {
		tx.emit(core.EventMarketEntered, user, asset, nil)
	}
}

func (p *Pool) exitMarket(tx *txn, user, asset string) {
	if removeMember(tx, p.enteredMarkets, user, asset) {
		tx.emit(core.EventMarketExited, user, asset, nil)
	}
}

// collaborator calls, each journals its compensation

func (p *Pool) mint(tx *txn, token core.IShareToken, user string, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	amount = amount.Clone()
	if err := token.Mint(tx.ctx, user, amount); err != nil {
		return fmt.Errorf("mint %s: %w", token.Address(), err)
	}

	tx.onRollback(func() {
		if err := token.Burn(tx.ctx, user, amount); err != nil {
			logger.FromContext(tx.ctx).WithError(err).Errorln("rollback mint", token.Address())
		}
	})

	return nil
}

func (p *Pool) burn(tx *txn, token core.IShareToken, user string, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	amount = amount.Clone()
	if err := token.Burn(tx.ctx, user, amount); err != nil {
		return fmt.Errorf("burn %s: %w", token.Address(), err)
	}

	tx.onRollback(func() {
		if err := token.Mint(tx.ctx, user, amount); err != nil {
			logger.FromContext(tx.ctx).WithError(err).Errorln("rollback burn", token.Address())
		}
	})

	return nil
}

func (p *Pool) seize(tx *txn, token core.IShareToken, from, to string, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	amount = amount.Clone()
	if err := token.Seize(tx.ctx, from, to, amount); err != nil {
		return fmt.Errorf("seize %s: %w", token.Address(), err)
	}

	tx.onRollback(func() {
		if err := token.Seize(tx.ctx, to, from, amount); err != nil {
			logger.FromContext(tx.ctx).WithError(err).Errorln("rollback seize", token.Address())
		}
	})

	return nil
}

func (p *Pool) pull(tx *txn, asset, from string, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	amount = amount.Clone()
	if err := p.custodian.Pull(tx.ctx, asset, from, amount); err != nil {
		return fmt.Errorf("pull %s: %w", asset, err)
	}

	tx.onRollback(func() {
		if err := p.custodian.Push(tx.ctx, asset, from, amount); err != nil {
			logger.FromContext(tx.ctx).WithError(err).Errorln("rollback pull", asset)
		}
	})

	return nil
}

func (p *Pool) push(tx *txn, asset, to string, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	amount = amount.Clone()
	if err := p.custodian.Push(tx.ctx, asset, to, amount); err != nil {
		return fmt.Errorf("push %s: %w", asset, err)
	}

	tx.onRollback(func() {
		if err := p.custodian.Pull(tx.ctx, asset, to, amount); err != nil {
			logger.FromContext(tx.ctx).WithError(err).Errorln("rollback push", asset)
		}
	})

	return nil
}
