package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ironbank/config"
	"ironbank/core"
	"ironbank/pkg/compound"
	"ironbank/pkg/number"
	"ironbank/service/setup"

	"github.com/facebookgo/clock"
	fconfig "github.com/fox-one/pkg/config"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Step one pool call, args are keyed by parameter name
type Step struct {
	Op     string                 `json:"op"`
	Caller string                 `json:"caller"`
	Args   map[string]interface{} `json:"args"`
	// abort the scenario when the step fails
	Must bool `json:"must"`
}

// Scenario ordered steps replayed against a fresh pool
type Scenario struct {
	Steps []Step `json:"steps"`
}

// Result outcome of a step
type Result struct {
	Index  int
	Op     string
	Output map[string]string
	Err    error
}

// Load scenario yaml file
func Load(file string) (*Scenario, error) {
	var s Scenario
	if err := fconfig.LoadYaml(file, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// Runner replays scenarios, time only moves through advance steps
type Runner struct {
	bank  *setup.Bank
	clock *clock.Mock
}

// New new runner, bank must be built with clk
func New(bank *setup.Bank, clk *clock.Mock) *Runner {
	return &Runner{bank: bank, clock: clk}
}

// Run every step, stops at the first failing Must step
func (r *Runner) Run(ctx context.Context, s *Scenario) ([]Result, error) {
	results := make([]Result, 0, len(s.Steps))
	for idx, step := range s.Steps {
		out, err := r.Step(ctx, step)
		results = append(results, Result{Index: idx, Op: step.Op, Output: out, Err: err})

		if err != nil && step.Must {
			return results, fmt.Errorf("step %d %s: %w", idx, step.Op, err)
		}
	}

	return results, nil
}

type args map[string]interface{}

func (a args) str(key string) string {
	return cast.ToString(a[key])
}

func (a args) amount(key string) (*uint256.Int, error) {
	v := strings.TrimSpace(a.str(key))
	switch v {
	case "":
		return nil, fmt.Errorf("%s required", key)
	case "max", "all":
		return compound.Max(), nil
	}

	return uint256.FromDecimal(v)
}

func (a args) decimal(key string) (decimal.Decimal, error) {
	return decimal.NewFromString(a.str(key))
}

// caller of step, defaults to the acting user
func (s Step) caller() string {
	if s.Caller != "" {
		return s.Caller
	}

	a := args(s.Args)
	for _, key := range []string{"from", "user", "liquidator"} {
		if v := a.str(key); v != "" {
			return v
		}
	}

	return ""
}

// Step run a single step
func (r *Runner) Step(ctx context.Context, step Step) (map[string]string, error) {
	a := args(step.Args)
	p := r.bank.Pool
	caller := step.caller()

	switch step.Op {
	case "deposit":
		amount, err := a.amount("amount")
		if err != nil {
			return nil, err
		}

		r.bank.Custody.Deposit(a.str("asset"), a.str("user"), amount)
		return nil, nil
	case "advance":
		d, err := config.Duration(a.str("duration"))
		if err != nil {
			return nil, err
		}

		r.clock.Add(d)
		return map[string]string{"now": r.clock.Now().UTC().Format(time.RFC3339)}, nil
	case "set_price":
		d, err := a.decimal("price")
		if err != nil {
			return nil, err
		}

		price, err := number.Wad(d)
		if err != nil {
			return nil, err
		}

		r.bank.SetPrice(a.str("asset"), price)
		return nil, nil
	case "authorize":
		r.bank.Helpers.Authorize(a.str("user"), a.str("helper"))
		return nil, nil
	case "supply", "borrow", "redeem", "repay":
		amount, err := a.amount("amount")
		if err != nil {
			return nil, err
		}

		from, to, market := a.str("from"), a.str("to"), a.str("market")
		if to == "" {
			to = from
		}

		var done *uint256.Int
		switch step.Op {
		case "supply":
			err = p.Supply(ctx, caller, from, to, market, amount)
		case "borrow":
			err = p.Borrow(ctx, caller, from, to, market, amount)
		case "redeem":
			done, err = p.Redeem(ctx, caller, from, to, market, amount)
		case "repay":
			done, err = p.Repay(ctx, caller, from, to, market, amount)
		}

		if err != nil || done == nil {
			return nil, err
		}

		return map[string]string{"amount": done.Dec()}, nil
	case "enter_market":
		return nil, p.EnterMarket(ctx, caller, a.str("user"), a.str("market"))
	case "exit_market":
		return nil, p.ExitMarket(ctx, caller, a.str("user"), a.str("market"))
	case "liquidate":
		amount, err := a.amount("amount")
		if err != nil {
			return nil, err
		}

		repaid, seized, err := p.Liquidate(ctx, caller, a.str("liquidator"), a.str("borrower"), a.str("market_borrow"), a.str("market_collateral"), amount)
		if err != nil {
			return nil, err
		}

		return map[string]string{"repaid": repaid.Dec(), "seized": seized.Dec()}, nil
	case "transfer_ib_token", "transfer_debt":
		amount, err := a.amount("amount")
		if err != nil {
			return nil, err
		}

		tokens := r.bank.IBTokens
		if step.Op == "transfer_debt" {
			tokens = r.bank.DebtTokens
		}

		t, ok := tokens[a.str("market")]
		if !ok {
			return nil, core.ErrMarketNotListed
		}

		return nil, t.Transfer(ctx, a.str("from"), a.str("to"), amount)
	case "accrue_interest":
		return nil, p.AccrueInterest(ctx, a.str("market"))
	case "set_credit_limit":
		limit, err := a.amount("limit")
		if err != nil {
			return nil, err
		}

		return nil, p.SetCreditLimit(ctx, caller, a.str("user"), a.str("market"), limit)
	case "configure":
		return nil, r.configure(ctx, caller, a)
	case "delist_market":
		return nil, p.DelistMarket(ctx, caller, a.str("market"))
	case "reduce_reserves":
		shares, err := a.amount("shares")
		if err != nil {
			return nil, err
		}

		paid, err := p.ReduceReserves(ctx, caller, a.str("market"), shares, a.str("to"))
		if err != nil {
			return nil, err
		}

		return map[string]string{"amount": paid.Dec()}, nil
	case "seize_token":
		seized, err := p.SeizeToken(ctx, caller, a.str("asset"), a.str("to"))
		if err != nil {
			return nil, err
		}

		return map[string]string{"amount": seized.Dec()}, nil
	case "liquidity":
		collateralValue, debtValue, err := p.AccountLiquidity(ctx, a.str("user"))
		if err != nil {
			return nil, err
		}

		return map[string]string{
			"collateral_value": collateralValue.Dec(),
			"debt_value":       debtValue.Dec(),
		}, nil
	}

	return nil, fmt.Errorf("unknown op %q", step.Op)
}

// configure change factors and flags of a listed market, absent keys keep their value
func (r *Runner) configure(ctx context.Context, caller string, a args) error {
	market := a.str("market")
	cfg, err := r.bank.Pool.MarketConfig(market)
	if err != nil {
		return err
	}

	for key, out := range map[string]*uint16{
		"collateral_factor": &cfg.CollateralFactor,
		"reserve_factor":    &cfg.ReserveFactor,
		"liquidation_bonus": &cfg.LiquidationBonus,
	} {
		if _, ok := a[key]; !ok {
			continue
		}

		d, err := a.decimal(key)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		if *out, err = number.Bps(d); err != nil {
			return err
		}
	}

	for key, out := range map[string]*bool{
		"supply_paused": &cfg.SupplyPaused,
		"borrow_paused": &cfg.BorrowPaused,
		"is_frozen":     &cfg.IsFrozen,
	} {
		if v, ok := a[key]; ok {
			*out = cast.ToBool(v)
		}
	}

	return r.bank.Pool.SetMarketConfig(ctx, caller, market, cfg)
}
