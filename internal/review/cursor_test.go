package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

// mask builds a visibility predicate from a pattern such as "x..x", where
// x marks a visible position.
func mask(pattern string) (int, func(int) bool) {
	return len(pattern), func(i int) bool { return pattern[i] == 'x' }
}

func TestCursor_NextPrevious(t *testing.T) {
	n, visible := mask("x..x.x")
	var c Cursor

	assert.True(t, c.Next(n, visible))
	assert.Equal(t, 3, c.Index())
	assert.True(t, c.Next(n, visible))
	assert.Equal(t, 5, c.Index())
	assert.False(t, c.Next(n, visible), "clamped at the end, not wrapped")
	assert.Equal(t, 5, c.Index())

	assert.True(t, c.Previous(visible))
	assert.Equal(t, 3, c.Index())
	assert.True(t, c.Previous(visible))
	assert.Equal(t, 0, c.Index())
	assert.False(t, c.Previous(visible))
	assert.Equal(t, 0, c.Index())
}

func TestCursor_EmptyCollection(t *testing.T) {
	n, visible := mask("")
	var c Cursor
	assert.False(t, c.Next(n, visible))
	assert.False(t, c.Previous(visible))
	c.Reconcile(n, visible)
	assert.Equal(t, 0, c.Index())
	assert.Error(t, c.JumpTo(1, n))
}

func TestCursor_JumpTo(t *testing.T) {
	n, _ := mask("x.x")
	var c Cursor

	for _, target := range []int{0, -1, n + 1} {
		err := c.JumpTo(target, n)
		require.Error(t, err, "target %d", target)
		assert.True(t, sweeperrors.IsOutOfRange(err))
		assert.Equal(t, 0, c.Index(), "cursor unchanged")
	}

	require.NoError(t, c.JumpTo(2, n))
	assert.Equal(t, 1, c.Index(), "lands on a hidden position without adjusting")
}

func TestCursor_Reconcile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		start   int
		want    int
	}{
		{"visible stays", "xxx", 1, 1},
		{"forward first", "x..x", 1, 3},
		{"then backward", "x.x..", 3, 2},
		{"nothing visible clamps to zero", "....", 2, 0},
		{"index past end is clamped", "xx", 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, visible := mask(tt.pattern)
			c := Cursor{index: tt.start}
			c.Reconcile(n, visible)
			assert.Equal(t, tt.want, c.Index())
		})
	}
}

func TestCursor_Clamp(t *testing.T) {
	c := Cursor{index: 9}
	c.Clamp(3)
	assert.Equal(t, 2, c.Index())
	c.Clamp(0)
	assert.Equal(t, 0, c.Index())
}
