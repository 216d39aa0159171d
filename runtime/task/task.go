// Package task defines the computation instance the concurrency runtime
// itself runs: a context-aware, fallible unit of work. Tasks compose
// through the same Unit/Bind contract as the pure instances — the laws hold
// along the success path, with an error anywhere short-circuiting the rest
// of the chain — and they execute on the runtime's worker pool through the
// future package.
package task

import (
	"context"

	"github.com/up-and-running/compose_able_go/comp"
)

// Task produces a value of type T when run, or an error. Tasks observe
// cancellation through their context; a task that never checks it simply
// runs to completion.
type Task[T any] func(context.Context) (T, error)

// From wraps a context-consuming function as a Task.
func From[T any](fn func(context.Context) (T, error)) Task[T] {
	return fn
}

// Unit lifts a plain value into a task that cannot fail.
func Unit[T any](v T) Task[T] {
	return func(context.Context) (T, error) { return v, nil }
}

// Fail lifts an error into a task that always fails with it.
func Fail[T any](err error) Task[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

// Bind sequences m with f, short-circuiting on error and checking for
// cancellation between the two steps.
func Bind[T, U any](m Task[T], f func(T) Task[U]) Task[U] {
	return func(ctx context.Context) (U, error) {
		var zero U
		v, err := m(ctx)
		if err != nil {
			return zero, err
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return f(v)(ctx)
	}
}

// Map applies a pure function to the result of m.
func Map[T, U any](m Task[T], f func(T) U) Task[U] {
	return func(ctx context.Context) (U, error) {
		v, err := m(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v), nil
	}
}

// Run executes the task on the calling goroutine. Use future.Spawn to run
// it on the pool instead.
func (t Task[T]) Run(ctx context.Context) (T, error) {
	return t(ctx)
}

// OpsDict is the erased operation bundle over Task[any].
type OpsDict struct{}

// Dict returns the task instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "task" }

func (OpsDict) Unit(v any) Task[any] { return Unit(v) }

func (OpsDict) Bind(m Task[any], f func(any) Task[any]) Task[any] {
	return Bind(m, f)
}

var _ comp.Ops[Task[any]] = OpsDict{}
