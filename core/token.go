package core

import (
	"context"

	"github.com/holiman/uint256"
)

// IShareToken the ib token or debt token of a market
type IShareToken interface {
	Address() string
	Underlying() string
	Mint(ctx context.Context, user string, amount *uint256.Int) error
	Burn(ctx context.Context, user string, amount *uint256.Int) error
	Seize(ctx context.Context, from, to string, amount *uint256.Int) error
}

// ICustodian holds the underlying assets of the pool
type ICustodian interface {
	// Pull move amount of asset from user into the pool
	Pull(ctx context.Context, asset, from string, amount *uint256.Int) error
	// Push move amount of asset from the pool to user
	Push(ctx context.Context, asset, to string, amount *uint256.Int) error
	// Balance asset held by the pool
	Balance(ctx context.Context, asset string) (*uint256.Int, error)
}
