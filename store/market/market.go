package market

import (
	"context"

	"ironbank/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.MarketSnapshot{})
		if err := tx.AutoMigrate(core.MarketSnapshot{}).Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_market_snapshots_asset_id", "asset", "id").Error; err != nil {
			return err
		}

		return nil
	})
}

type snapshotStore struct {
	db *db.DB
}

// New new market snapshot store
func New(db *db.DB) core.IMarketSnapshotStore {
	return &snapshotStore{db: db}
}

func (s *snapshotStore) Save(ctx context.Context, snapshot *core.MarketSnapshot) error {
	return s.db.Update().Create(snapshot).Error
}

func (s *snapshotStore) List(ctx context.Context, asset string, fromID int64, limit int) ([]*core.MarketSnapshot, error) {
	var snapshots []*core.MarketSnapshot
	if err := s.db.View().Where("asset = ? AND id > ?", asset, fromID).Order("id").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *snapshotStore) Latest(ctx context.Context, asset string) (*core.MarketSnapshot, bool, error) {
	var snapshot core.MarketSnapshot
	if err := s.db.View().Where("asset = ?", asset).Order("id DESC").First(&snapshot).Error; err != nil {
		return nil, gorm.IsRecordNotFoundError(err), err
	}

	return &snapshot, false, nil
}
