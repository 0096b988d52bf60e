package store

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/wordswap/session"
)

func TestGetOrCreate(t *testing.T) {
	m := NewMemory()

	s, created := m.GetOrCreate("ABC123", "Alice")
	require.True(t, created)
	assert.Equal(t, "ABC123", s.ID())
	assert.Equal(t, "Alice", s.Host())
	assert.Empty(t, s.Players())

	again, created := m.GetOrCreate("ABC123", "Bob")
	assert.False(t, created)
	assert.Same(t, s, again)
	assert.Equal(t, "Alice", again.Host())
	assert.Equal(t, 1, m.Len())
}

func TestGetMissing(t *testing.T) {
	m := NewMemory()

	s, ok := m.Get("NOPE")
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestDelete(t *testing.T) {
	m := NewMemory()
	m.GetOrCreate("ABC123", "Alice")

	m.Delete("ABC123")

	_, ok := m.Get("ABC123")
	assert.False(t, ok)
	assert.Zero(t, m.Len())

	m.Delete("ABC123")
}

func TestEachAllowsDelete(t *testing.T) {
	m := NewMemory()
	for _, code := range []string{"A", "B", "C"} {
		m.GetOrCreate(code, "host")
	}

	var seen []string
	m.Each(func(s *session.Session) bool {
		seen = append(seen, s.ID())
		m.Delete(s.ID())
		return true
	})

	assert.ElementsMatch(t, []string{"A", "B", "C"}, seen)
	assert.Zero(t, m.Len())
}

func TestEachStops(t *testing.T) {
	m := NewMemory()
	for _, code := range []string{"A", "B", "C"} {
		m.GetOrCreate(code, "host")
	}

	calls := 0
	m.Each(func(*session.Session) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

// scripted returns the queued values in order.
type scripted struct{ values []int }

func (s *scripted) IntN(n int) int {
	v := s.values[0] % n
	s.values = s.values[1:]
	return v
}

func TestNewCodeAvoidsCollisions(t *testing.T) {
	m := NewMemory()
	m.GetOrCreate("AAAAAA", "host")

	random := &scripted{values: []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}}
	code := NewCode(m, random)

	assert.Equal(t, "BBBBBB", code)
}

func TestNewCodeIsValidRoomCode(t *testing.T) {
	m := NewMemory()
	r := rand.New(rand.NewPCG(3, 4))

	for range 100 {
		code := NewCode(m, r)
		normalized, err := session.NormalizeRoomCode(code)
		require.NoError(t, err)
		assert.Equal(t, code, normalized)
		assert.Len(t, code, 6)
	}
}
