// Package dataflow provides write-once synchronization cells and the wiring
// to schedule tasks on a spark pool as soon as the cells they depend on
// fill. A network of wired tasks forms an implicit dependency graph: each
// task fires exactly once, when its inputs are all available.
package dataflow

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/up-and-running/compose_able_go/runtime/spark"
)

// ErrAlreadyFilled reports a second Put on a filled cell.
var ErrAlreadyFilled = errors.New("dataflow: cell already filled")

// Cell is a write-once synchronization slot. It transitions Empty to Filled
// at most once and never reverts; after the single Put the value is
// immutable and readable by unlimited concurrent consumers.
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	filled bool
	done   chan struct{}
}

// NewCell creates an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{done: make(chan struct{})}
}

// Put fills the cell and wakes every blocked reader. A second Put fails
// with ErrAlreadyFilled and changes nothing.
func (c *Cell[T]) Put(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filled {
		return ErrAlreadyFilled
	}
	c.value = v
	c.filled = true
	close(c.done)
	return nil
}

// Get blocks the calling goroutine until the cell is filled, then returns
// the value. A cell that is never filled blocks forever; callers needing a
// bound use GetContext.
func (c *Cell[T]) Get() T {
	<-c.done
	return c.value
}

// GetContext is Get with a caller-side timeout policy: it returns the
// context's error if ctx is done before the cell fills.
func (c *Cell[T]) GetContext(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryGet returns the value and true if the cell is filled, without
// blocking.
func (c *Cell[T]) TryGet() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.filled
}

// Filled reports whether the cell has been written.
func (c *Cell[T]) Filled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filled
}

// Wait blocks until the cell is filled, discarding the value.
func (c *Cell[T]) Wait() { <-c.done }

// Source is anything a wired task can wait on before firing. Every Cell is
// a Source.
type Source interface {
	Wait()
}

// Wire schedules compute on the pool, gated on deps: the task blocks a
// worker-side goroutine until every dependency is filled, runs compute, and
// puts the result into out. compute reads its inputs with Get, which cannot
// block by then. The error covers submission only; a malformed network that
// fills out twice drops the second value.
func Wire[T any](ctx context.Context, pool *spark.Pool, out *Cell[T], compute func() T, deps ...Source) error {
	return pool.Execute(ctx, uuid.New().String(), func() {
		for _, d := range deps {
			d.Wait()
		}
		_ = out.Put(compute())
	})
}
