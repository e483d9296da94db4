package oracle

import (
	"context"
	"fmt"
	"time"

	"ironbank/core"

	"github.com/bluele/gcache"
	"github.com/holiman/uint256"
	"golang.org/x/sync/singleflight"
)

// Cache cache prices of oracle for exp
func Cache(oracle core.IPriceOracle, exp time.Duration) *CacheOracle {
	return &CacheOracle{
		IPriceOracle: oracle,
		cache:        gcache.New(512).LRU().Expiration(exp).Build(),
		sf:           &singleflight.Group{},
	}
}

// CacheOracle cached price oracle
type CacheOracle struct {
	core.IPriceOracle
	cache gcache.Cache
	sf    *singleflight.Group
}

// GetPrice cached GetPrice, zero prices are not cached
func (s *CacheOracle) GetPrice(ctx context.Context, asset string) (*uint256.Int, error) {
	key := s.priceKey(asset)
	if v, err := s.cache.Get(key); err == nil {
		if price, ok := v.(uint256.Int); ok {
			return &price, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		price, err := s.IPriceOracle.GetPrice(ctx, asset)
		if err != nil {
			return nil, err
		}

		if price != nil && !price.IsZero() {
			_ = s.cache.Set(key, *price)
		}

		return price, nil
	})
	if err != nil {
		return nil, err
	}

	price, _ := v.(*uint256.Int)
	if price == nil {
		return new(uint256.Int), nil
	}

	return price.Clone(), nil
}

// Invalidate drop the cached price of asset
func (s *CacheOracle) Invalidate(asset string) {
	s.cache.Remove(s.priceKey(asset))
}

func (s *CacheOracle) priceKey(asset string) string {
	return fmt.Sprintf("price:%s", asset)
}
