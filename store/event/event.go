package event

import (
	"context"

	"ironbank/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})

		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_events_user_id", "user_id", "id").Error; err != nil {
			return err
		}

		return nil
	})
}

// New new event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

type eventStore struct {
	db *db.DB
}

// Create save events of one operation, events already saved are skipped
func (s *eventStore) Create(ctx context.Context, events []*core.Event) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, event := range events {
			if err := tx.Update().Where("trace_id = ?", event.TraceID).FirstOrCreate(event).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *eventStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().Where("id > ?", fromID).Order("id").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByUser(ctx context.Context, user string, fromID int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().Where("user_id = ? AND id > ?", user, fromID).Order("id").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

// Sink persist emitted events into store, failures are logged and dropped
func Sink(store core.IEventStore) core.EventSink {
	return &sink{store: store}
}

type sink struct {
	store core.IEventStore
}

func (s *sink) Emit(ctx context.Context, events []*core.Event) {
	if err := s.store.Create(ctx, events); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("save events", len(events))
	}
}

// Log only log emitted events
func Log() core.EventSink {
	return logSink{}
}

type logSink struct{}

func (logSink) Emit(ctx context.Context, events []*core.Event) {
	log := logger.FromContext(ctx)
	for _, e := range events {
		log.WithField("trace", e.TraceID).WithField("user", e.User).Infoln(e.Action, e.Market, string(e.Data))
	}
}
