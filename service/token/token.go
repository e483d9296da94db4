package token

import (
	"context"
	"errors"
	"sync"

	"ironbank/core"

	"github.com/holiman/uint256"
)

// Ledger the pool keeping the balances behind a share token
type Ledger interface {
	TransferIBToken(ctx context.Context, caller, market, from, to string, shares *uint256.Int) error
	TransferDebt(ctx context.Context, caller, market, from, to string, amount *uint256.Int) error
	SupplyBalance(user, asset string) *uint256.Int
	BorrowBalance(user, asset string) (*uint256.Int, error)
}

// Kind ib token or debt token
type Kind int

const (
	KindIB Kind = iota
	KindDebt
)

// Transfer token transfer log, mints come from "" and burns go to ""
type Transfer struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount uint256.Int `json:"amount"`
}

// Token share token whose balances live in the pool ledger, it only logs transfers
type Token struct {
	address    string
	underlying string
	kind       Kind

	mu     sync.Mutex
	ledger Ledger
	logs   []Transfer
}

var _ core.IShareToken = (*Token)(nil)

// NewIBToken new ib token of underlying
func NewIBToken(address, underlying string) *Token {
	return &Token{address: address, underlying: underlying, kind: KindIB}
}

// NewDebtToken new debt token of underlying
func NewDebtToken(address, underlying string) *Token {
	return &Token{address: address, underlying: underlying, kind: KindDebt}
}

// Bind attach the ledger serving balances and transfers
func (t *Token) Bind(ledger Ledger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ledger = ledger
}

func (t *Token) Address() string {
	return t.address
}

func (t *Token) Underlying() string {
	return t.underlying
}

func (t *Token) Kind() Kind {
	return t.kind
}

func (t *Token) log(from, to string, amount *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, Transfer{From: from, To: to, Amount: *amount})
}

// Mint called by the pool
func (t *Token) Mint(_ context.Context, user string, amount *uint256.Int) error {
	t.log("", user, amount)
	return nil
}

// Burn called by the pool
func (t *Token) Burn(_ context.Context, user string, amount *uint256.Int) error {
	t.log(user, "", amount)
	return nil
}

// Seize called by the pool during liquidation
func (t *Token) Seize(_ context.Context, from, to string, amount *uint256.Int) error {
	t.log(from, to, amount)
	return nil
}

func (t *Token) bound() (Ledger, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ledger == nil {
		return nil, errors.New("token: ledger not bound")
	}

	return t.ledger, nil
}

// BalanceOf shares or debt of user
func (t *Token) BalanceOf(user string) (*uint256.Int, error) {
	ledger, err := t.bound()
	if err != nil {
		return nil, err
	}

	if t.kind == KindDebt {
		return ledger.BorrowBalance(user, t.underlying)
	}

	return ledger.SupplyBalance(user, t.underlying), nil
}

// Transfer move balance from `from` to `to` through the ledger
func (t *Token) Transfer(ctx context.Context, from, to string, amount *uint256.Int) error {
	ledger, err := t.bound()
	if err != nil {
		return err
	}

	if t.kind == KindDebt {
		err = ledger.TransferDebt(ctx, t.address, t.underlying, from, to, amount)
	} else {
		err = ledger.TransferIBToken(ctx, t.address, t.underlying, from, to, amount)
	}

	if err != nil {
		return err
	}

	t.log(from, to, amount)
	return nil
}

// Transfers transfer logs
func (t *Token) Transfers() []Transfer {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Transfer, len(t.logs))
	copy(out, t.logs)
	return out
}
