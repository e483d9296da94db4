package liquidity

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct {
	values map[string][2]uint64
	credit map[string]bool
	err    error
}

func (f *fakePool) Accounts() []string {
	users := make([]string, 0, len(f.values))
	for user := range f.values {
		users = append(users, user)
	}

	return users
}

func (f *fakePool) IsCreditAccount(user string) bool {
	return f.credit[user]
}

func (f *fakePool) AccountLiquidity(_ context.Context, user string) (*uint256.Int, *uint256.Int, error) {
	if f.err != nil {
		return nil, nil, f.err
	}

	v := f.values[user]
	return uint256.NewInt(v[0]), uint256.NewInt(v[1]), nil
}

func TestWorker(t *testing.T) {
	pool := &fakePool{
		values: map[string][2]uint64{
			"alice": {100, 50},
			"bob":   {534, 600},
			"carol": {0, 0},
			"dave":  {10, 11},
			"erin":  {0, 500},
		},
		credit: map[string]bool{"erin": true},
	}

	w := New(pool, 2)
	require.Nil(t, w.onWork(context.Background()))

	shortfalls := w.Shortfalls()
	require.Len(t, shortfalls, 2)
	assert.Equal(t, "bob", shortfalls[0].User)
	assert.Equal(t, uint64(600), shortfalls[0].DebtValue.Uint64())
	assert.Equal(t, "dave", shortfalls[1].User)

	// a failed scan keeps the last result
	pool.err = errors.New("oracle down")
	assert.NotNil(t, w.onWork(context.Background()))
	assert.Len(t, w.Shortfalls(), 2)
}
