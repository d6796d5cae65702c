package review

import (
	"fmt"

	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

// Cursor is a 0-based position into the full loaded collection, not the
// filtered view. Every method takes the collection length and a visibility
// predicate over positions so the cursor holds no other state.
type Cursor struct {
	index int
}

// Index returns the current position.
func (c *Cursor) Index() int {
	return c.index
}

// Next moves to the first visible position after the current one. It
// reports whether the cursor moved; at the boundary it stays put.
func (c *Cursor) Next(n int, visible func(int) bool) bool {
	if i, ok := scanForward(c.index+1, n, visible); ok {
		c.index = i
		return true
	}
	return false
}

// Previous moves to the first visible position before the current one.
func (c *Cursor) Previous(visible func(int) bool) bool {
	if i, ok := scanBackward(c.index-1, visible); ok {
		c.index = i
		return true
	}
	return false
}

// JumpTo sets the cursor to the 1-based target without checking visibility.
func (c *Cursor) JumpTo(target, n int) error {
	if target < 1 || target > n {
		return sweeperrors.Wrap(sweeperrors.ErrOutOfRange, fmt.Sprintf("Please enter a number between 1 and %d", n))
	}
	c.index = target - 1
	return nil
}

// Reconcile moves off a hidden position: forward first, then backward,
// else to 0. It is a no-op while the current position is visible.
func (c *Cursor) Reconcile(n int, visible func(int) bool) {
	if n == 0 {
		c.index = 0
		return
	}
	c.Clamp(n)
	if visible(c.index) {
		return
	}
	if i, ok := scanForward(c.index+1, n, visible); ok {
		c.index = i
		return
	}
	if i, ok := scanBackward(c.index-1, visible); ok {
		c.index = i
		return
	}
	c.index = 0
}

// Clamp keeps the cursor inside [0, n).
func (c *Cursor) Clamp(n int) {
	if c.index >= n {
		c.index = n - 1
	}
	if c.index < 0 {
		c.index = 0
	}
}

func scanForward(from, n int, ok func(int) bool) (int, bool) {
	for i := from; i < n; i++ {
		if ok(i) {
			return i, true
		}
	}
	return 0, false
}

func scanBackward(from int, ok func(int) bool) (int, bool) {
	for i := from; i >= 0; i-- {
		if ok(i) {
			return i, true
		}
	}
	return 0, false
}
