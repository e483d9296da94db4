package oracle

import (
	"context"
	"sync"

	"ironbank/core"

	"github.com/holiman/uint256"
)

// Static fixed prices set by the operator
type Static struct {
	mu     sync.RWMutex
	prices map[string]uint256.Int
}

var _ core.IPriceOracle = (*Static)(nil)

// NewStatic new static oracle
func NewStatic(prices map[string]*uint256.Int) *Static {
	s := &Static{prices: map[string]uint256.Int{}}
	for asset, price := range prices {
		s.prices[asset] = *price
	}

	return s
}

// SetPrice set price of asset, scaled by 1e18
func (s *Static) SetPrice(asset string, price *uint256.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[asset] = *price
}

// GetPrice zero when asset is not priced
func (s *Static) GetPrice(_ context.Context, asset string) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price := s.prices[asset]
	return &price, nil
}
