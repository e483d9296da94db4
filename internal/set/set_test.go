package set

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New[string]()
	assert.True(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("b"))
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.False(t, s.Has("a"))
	// c takes the slot of a
	assert.Equal(t, []string{"c", "b"}, s.Values())

	assert.True(t, s.Remove("b"))
	assert.True(t, s.Remove("c"))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Values())
}

func TestSetMembershipMatchesValues(t *testing.T) {
	s := New[int]()
	for i := 0; i < 20; i++ {
		s.Add(i)
	}

	for i := 0; i < 20; i += 3 {
		s.Remove(i)
	}

	values := s.Values()
	sort.Ints(values)
	for _, v := range values {
		assert.True(t, s.Has(v))
		assert.NotZero(t, v%3)
	}

	assert.Equal(t, s.Len(), len(values))
}
