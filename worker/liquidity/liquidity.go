package liquidity

import (
	"context"
	"sort"
	"sync"

	"ironbank/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

// Pool accounts and their liquidity
type Pool interface {
	Accounts() []string
	IsCreditAccount(user string) bool
	AccountLiquidity(ctx context.Context, user string) (collateralValue, debtValue *uint256.Int, err error)
}

// Shortfall liquidatable account found by the last scan
type Shortfall struct {
	User            string      `json:"user"`
	CollateralValue uint256.Int `json:"collateral_value"`
	DebtValue       uint256.Int `json:"debt_value"`
}

// Worker scan accounts for shortfalls
type Worker struct {
	worker.BaseJob
	pool  Pool
	limit int

	mu         sync.RWMutex
	shortfalls []Shortfall
}

// New new liquidity worker, limit bounds concurrent account checks
func New(pool Pool, limit int) *Worker {
	w := &Worker{pool: pool, limit: limit}
	w.Name = "liquidity"
	w.OnWork = w.onWork
	return w
}

func (w *Worker) onWork(ctx context.Context) error {
	var (
		mu         sync.Mutex
		shortfalls []Shortfall
	)

	g, ctx := errgroup.WithContext(ctx)
	if w.limit > 0 {
		g.SetLimit(w.limit)
	}

	for _, user := range w.pool.Accounts() {
		user := user
		if w.pool.IsCreditAccount(user) {
			continue
		}

		g.Go(func() error {
			collateralValue, debtValue, err := w.pool.AccountLiquidity(ctx, user)
			if err != nil {
				return err
			}

			if !collateralValue.Lt(debtValue) {
				return nil
			}

			logger.FromContext(ctx).WithField("user", user).Warnln("shortfall", collateralValue.Dec(), debtValue.Dec())
			mu.Lock()
			shortfalls = append(shortfalls, Shortfall{User: user, CollateralValue: *collateralValue, DebtValue: *debtValue})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(shortfalls, func(i, j int) bool {
		return shortfalls[i].User < shortfalls[j].User
	})

	w.mu.Lock()
	w.shortfalls = shortfalls
	w.mu.Unlock()
	return nil
}

// Shortfalls result of the last successful scan
func (w *Worker) Shortfalls() []Shortfall {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Shortfall, len(w.shortfalls))
	copy(out, w.shortfalls)
	return out
}
