package event

import (
	"context"
	"errors"
	"testing"

	"ironbank/core"

	"github.com/stretchr/testify/assert"
)

type memoryStore struct {
	core.IEventStore
	saved []*core.Event
	err   error
}

func (m *memoryStore) Create(_ context.Context, events []*core.Event) error {
	if m.err != nil {
		return m.err
	}

	m.saved = append(m.saved, events...)
	return nil
}

func TestSink(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	s := Sink(store)

	s.Emit(ctx, []*core.Event{{TraceID: "a", Action: core.EventSupply}, {TraceID: "b", Action: core.EventBorrow}})
	assert.Len(t, store.saved, 2)

	// a failing store does not block the pool
	store.err = errors.New("db down")
	s.Emit(ctx, []*core.Event{{TraceID: "c"}})
	assert.Len(t, store.saved, 2)

	Log().Emit(ctx, store.saved)
}
