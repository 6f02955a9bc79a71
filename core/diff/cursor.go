package diff

import (
	"context"
	"iter"
)

// segment produces one block of a cursor's results by calling yield until it
// returns false.
type segment[T any] func(ctx context.Context, yield func(T) bool) error

// Cursor is a lazy, restartable result sequence. Every call to All starts a
// fresh pass over the index. A cursor is not safe for concurrent use.
type Cursor[T any] struct {
	ctx      context.Context
	segments []segment[T]
	err      error
}

func newCursor[T any](ctx context.Context, segments ...segment[T]) *Cursor[T] {
	return &Cursor[T]{ctx: ctx, segments: segments}
}

// All yields the results with their position. The position restarts at zero
// for each block of a multi-block query. Stopping early releases any open
// database cursor. Check Err after the loop.
func (c *Cursor[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		c.err = nil
		for _, seg := range c.segments {
			i := 0
			stopped := false
			err := seg(c.ctx, func(v T) bool {
				if !yield(i, v) {
					stopped = true
					return false
				}
				i++
				return true
			})
			if err != nil {
				c.err = err
				return
			}
			if stopped {
				return
			}
		}
	}
}

// Values yields the results without their position.
func (c *Cursor[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range c.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Err returns the error that ended the last pass, if any.
func (c *Cursor[T]) Err() error { return c.err }

// Collect runs a full pass and returns every result.
func (c *Cursor[T]) Collect() ([]T, error) {
	var out []T
	for _, v := range c.All() {
		out = append(out, v)
	}
	if c.err != nil {
		return nil, c.err
	}
	return out, nil
}

// Any reports whether the cursor yields at least one result. It stops at the
// first one.
func (c *Cursor[T]) Any() (bool, error) {
	for range c.All() {
		return true, nil
	}
	return false, c.err
}
