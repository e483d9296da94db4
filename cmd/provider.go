package cmd

import (
	"context"

	"ironbank/core"
	"ironbank/service/setup"
	"ironbank/store/event"
	"ironbank/store/market"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/store/db"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

func provideMarketSnapshotStore(db *db.DB) core.IMarketSnapshotStore {
	return market.New(db)
}

// events go to the journal when enabled, otherwise only to the log
func provideEventSink(store core.IEventStore) core.EventSink {
	if store == nil {
		return event.Log()
	}

	return event.Sink(store)
}

func provideBank(ctx context.Context, sink core.EventSink, clk clock.Clock) *setup.Bank {
	bank, err := setup.Build(ctx, &cfg, sink, clk)
	if err != nil {
		panic(err)
	}

	return bank
}
