package pool

import (
	"context"
	"strconv"

	"ironbank/core"

	"github.com/fox-one/pkg/uuid"
)

// txn journal of a single ledger call
type txn struct {
	ctx     context.Context
	caller  string
	now     uint64
	traceID string

	undo    []func()
	events  []*core.Event
	touched map[*core.Market]bool
}

type savepoint struct {
	undo   int
	events int
}

func (tx *txn) onRollback(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *txn) savepoint() savepoint {
	return savepoint{undo: len(tx.undo), events: len(tx.events)}
}

// rollback undo everything after the savepoint in reverse order
func (tx *txn) rollback(undo int) {
	for i := len(tx.undo) - 1; i >= undo; i-- {
		tx.undo[i]()
	}

	tx.undo = tx.undo[:undo]
}

func (tx *txn) rollbackTo(sp savepoint) {
	tx.rollback(sp.undo)
	tx.events = tx.events[:sp.events]
}

func (tx *txn) emit(action core.EventAction, user, market string, data core.EventData) {
	if data == nil {
		data = core.EventData{}
	}

	tx.events = append(tx.events, &core.Event{
		TraceID:   uuid.Modify(tx.traceID, string(action)+"/"+strconv.Itoa(len(tx.events))),
		Action:    action,
		User:      user,
		Market:    market,
		Data:      data.Format(),
		Timestamp: tx.now,
	})
}
