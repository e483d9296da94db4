package interest

import (
	"context"

	"ironbank/core"
	"ironbank/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// Pool markets accruing interest
type Pool interface {
	Markets() []string
	AccrueInterest(ctx context.Context, market string) error
	Market(asset string) (core.Market, error)
	ExchangeRate(asset string) (*uint256.Int, error)
}

// Worker accrue interest of every market periodically, so idle markets keep their index fresh
type Worker struct {
	worker.BaseJob
	pool      Pool
	snapshots core.IMarketSnapshotStore
}

// New new interest worker, snapshots is optional
func New(pool Pool, snapshots core.IMarketSnapshotStore) *Worker {
	w := &Worker{pool: pool, snapshots: snapshots}
	w.Name = "interest"
	w.OnWork = w.onWork
	return w
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	for _, market := range w.pool.Markets() {
		if err := w.pool.AccrueInterest(ctx, market); err != nil {
			log.WithError(err).Errorln("accrue interest", market)
			continue
		}

		if w.snapshots == nil {
			continue
		}

		if err := w.snapshot(ctx, market); err != nil {
			log.WithError(err).Errorln("save snapshot", market)
		}
	}

	return nil
}

func (w *Worker) snapshot(ctx context.Context, asset string) error {
	m, err := w.pool.Market(asset)
	if err != nil {
		return err
	}

	rate, err := w.pool.ExchangeRate(asset)
	if err != nil {
		return err
	}

	return w.snapshots.Save(ctx, &core.MarketSnapshot{
		Asset:           asset,
		TotalCash:       m.TotalCash.Dec(),
		TotalBorrow:     m.TotalBorrow.Dec(),
		TotalSupply:     m.TotalSupply.Dec(),
		TotalReserves:   m.TotalReserves.Dec(),
		TotalCollateral: m.TotalCollateral.Dec(),
		BorrowIndex:     m.BorrowIndex.Dec(),
		ExchangeRate:    rate.Dec(),
		Timestamp:       m.LastUpdateTimestamp,
	})
}
