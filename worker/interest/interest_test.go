package interest

import (
	"context"
	"errors"
	"testing"

	"ironbank/core"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct {
	accrued []string
}

func (f *fakePool) Markets() []string {
	return []string{"usdc", "doge", "eth"}
}

func (f *fakePool) AccrueInterest(_ context.Context, market string) error {
	if market == "doge" {
		return errors.New("stale")
	}

	f.accrued = append(f.accrued, market)
	return nil
}

func (f *fakePool) Market(asset string) (core.Market, error) {
	m := core.Market{Asset: asset, LastUpdateTimestamp: 42}
	m.TotalCash.SetUint64(100)
	m.TotalBorrow.SetUint64(20)
	m.BorrowIndex.SetUint64(1e18)
	return m, nil
}

func (f *fakePool) ExchangeRate(asset string) (*uint256.Int, error) {
	if asset == "eth" {
		return nil, errors.New("no rate")
	}

	return uint256.NewInt(1e18), nil
}

type memorySnapshots struct {
	saved []*core.MarketSnapshot
}

func (m *memorySnapshots) Save(_ context.Context, s *core.MarketSnapshot) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *memorySnapshots) List(_ context.Context, asset string, fromID int64, limit int) ([]*core.MarketSnapshot, error) {
	return m.saved, nil
}

func (m *memorySnapshots) Latest(_ context.Context, asset string) (*core.MarketSnapshot, bool, error) {
	return nil, true, errors.New("not found")
}

func TestWorker(t *testing.T) {
	pool := &fakePool{}
	w := New(pool, nil)

	// one failing market does not stop the others
	w.Run()
	assert.Equal(t, []string{"usdc", "eth"}, pool.accrued)
}

func TestWorkerSnapshots(t *testing.T) {
	pool := &fakePool{}
	snapshots := &memorySnapshots{}
	New(pool, snapshots).Run()

	// doge failed to accrue and eth failed to price its shares
	require.Len(t, snapshots.saved, 1)
	s := snapshots.saved[0]
	assert.Equal(t, "usdc", s.Asset)
	assert.Equal(t, "100", s.TotalCash)
	assert.Equal(t, "20", s.TotalBorrow)
	assert.Equal(t, "0", s.TotalSupply)
	assert.Equal(t, "1000000000000000000", s.ExchangeRate)
	assert.Equal(t, uint64(42), s.Timestamp)
}
