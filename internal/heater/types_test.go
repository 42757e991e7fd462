package heater

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	l := DefaultLimits()

	tests := []struct {
		in, want int
	}{
		{-100, 5},
		{0, 5},
		{4, 5},
		{5, 5},
		{20, 20},
		{35, 35},
		{36, 35},
		{1000, 35},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.Clamp(tt.in), "Clamp(%d)", tt.in)
	}
}

func TestClampIdempotent(t *testing.T) {
	l := DefaultLimits()
	for x := -50; x <= 100; x++ {
		once := l.Clamp(x)
		require.Equal(t, once, l.Clamp(once), "Clamp(Clamp(%d))", x)
		require.GreaterOrEqual(t, once, l.Min)
		require.LessOrEqual(t, once, l.Max)
	}
}

func TestLimitsValidate(t *testing.T) {
	require.NoError(t, DefaultLimits().Validate())

	bad := []Limits{
		{Min: 10, Max: 10, Initial: 10},
		{Min: 20, Max: 10, Initial: 15},
		{Min: 5, Max: 35, Initial: 4},
		{Min: 5, Max: 35, Initial: 36},
	}
	for _, l := range bad {
		assert.ErrorIs(t, l.Validate(), ErrInvalidLimits, "%+v", l)
	}
}

func TestNewState(t *testing.T) {
	s := NewState(DefaultLimits())
	assert.Equal(t, State{Current: 5, Target: 6}, s)
}
