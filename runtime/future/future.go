// Package future runs tasks on the shared worker pool and hands back
// handles to their eventual results. Cancellation is cooperative: Cancel
// signals the task's context, and a task that never polls it runs to
// completion regardless.
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/up-and-running/compose_able_go/runtime/spark"
	"github.com/up-and-running/compose_able_go/runtime/task"
)

// State describes where a future is in its lifecycle.
type State int32

const (
	// StateRunning means the task has been handed to the pool and has not
	// settled.
	StateRunning State = iota
	// StateCompleted means the task returned a value.
	StateCompleted
	// StateFailed means the task returned an error or panicked.
	StateFailed
	// StateCancelled means the task observed cancellation and stopped.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrCancelled is delivered by Wait when the task stopped in response to
// cancellation.
var ErrCancelled = errors.New("future: cancelled")

// Future is the handle to a running task.
type Future[T any] struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	settled  bool
	state    State
	value    T
	err      error
	started  time.Time
	finished time.Time
}

// Spawn submits t to the pool and returns its future immediately. The
// task's context is derived from ctx; cancelling either cancels the task
// cooperatively.
func Spawn[T any](ctx context.Context, pool *spark.Pool, t task.Task[T]) *Future[T] {
	runCtx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		id:      uuid.New().String(),
		cancel:  cancel,
		done:    make(chan struct{}),
		state:   StateRunning,
		started: time.Now(),
	}
	if err := pool.Execute(runCtx, f.id, func() { f.run(runCtx, pool.Logger(), t) }); err != nil {
		var zero T
		f.settle(zero, err)
	}
	return f
}

func (f *Future[T]) run(ctx context.Context, logger *zap.Logger, t task.Task[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in spawned task",
				zap.String("futureId", f.id),
				zap.Any("error", r),
			)
			var zero T
			f.settle(zero, fmt.Errorf("future: task panicked: %v", r))
		}
	}()
	v, err := t(ctx)
	f.settle(v, err)
}

// settle resolves the future exactly once; later calls are ignored.
func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled {
		return
	}
	f.settled = true
	f.finished = time.Now()
	switch {
	case err == nil:
		f.state = StateCompleted
		f.value = v
	case errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled):
		f.state = StateCancelled
		f.err = ErrCancelled
	default:
		f.state = StateFailed
		f.err = err
	}
	close(f.done)
}

// Wait blocks until the future settles, returning the value on completion,
// the task's error on failure, or ErrCancelled.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// WaitContext is Wait bounded by ctx.
func (f *Future[T]) WaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Wait()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel requests cooperative termination. The task must poll its context
// at safe points; one that ignores cancellation continues to run and may
// still complete.
func (f *Future[T]) Cancel() {
	f.cancel()
}

// Done exposes the settle signal for select-based coordination.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// State returns the future's current lifecycle state.
func (f *Future[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Span reports the time occupied by the task so far: started to finished
// once settled, started to now while running.
func (f *Future[T]) Span() timespan.TimeSpan {
	f.mu.Lock()
	defer f.mu.Unlock()
	end := f.finished
	if !f.settled {
		end = time.Now()
	}
	return timespan.BetweenTimes(f.started, end)
}

// Race runs a and b and returns the result of whichever settles first,
// requesting cancellation of the loser. The winner's outcome is returned as
// is, error or not.
func Race[T any](ctx context.Context, pool *spark.Pool, a, b task.Task[T]) (T, error) {
	fa := Spawn(ctx, pool, a)
	fb := Spawn(ctx, pool, b)

	var winner, loser *Future[T]
	select {
	case <-fa.Done():
		winner, loser = fa, fb
	case <-fb.Done():
		winner, loser = fb, fa
	}
	loser.Cancel()
	return winner.Wait()
}

// Concurrently runs a and b and waits for both. It returns both results, or
// the first failure if either fails — the other task is then cancelled. If
// both fail on their own, the errors are combined in settle order.
func Concurrently[T, U any](ctx context.Context, pool *spark.Pool, a task.Task[T], b task.Task[U]) (T, U, error) {
	fa := Spawn(ctx, pool, a)
	fb := Spawn(ctx, pool, b)

	// Watch for the first failure so the surviving task is cancelled
	// promptly instead of running to completion for nothing.
	select {
	case <-fa.Done():
		if _, err := fa.Wait(); err != nil {
			fb.Cancel()
		}
	case <-fb.Done():
		if _, err := fb.Wait(); err != nil {
			fa.Cancel()
		}
	}

	av, aerr := fa.Wait()
	bv, berr := fb.Wait()

	switch {
	case aerr == nil && berr == nil:
		return av, bv, nil
	case aerr != nil && berr != nil:
		if errors.Is(aerr, ErrCancelled) {
			return av, bv, berr
		}
		if errors.Is(berr, ErrCancelled) {
			return av, bv, aerr
		}
		return av, bv, multierr.Append(aerr, berr)
	case aerr != nil:
		return av, bv, aerr
	default:
		return av, bv, berr
	}
}
