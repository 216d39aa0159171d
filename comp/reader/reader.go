// Package reader implements the read-only context instance: a computation
// that produces its value from an environment of type R supplied at run
// time. The environment is never mutated; every step sees the same one.
package reader

import "github.com/up-and-running/compose_able_go/comp"

// Reader is a pure function from an environment R to a value T,
// represented as a closure over its captured composition.
type Reader[R, T any] func(R) T

// From wraps an environment-consuming function as a Reader.
func From[R, T any](fn func(R) T) Reader[R, T] {
	return fn
}

// Unit lifts a plain value, ignoring the environment.
func Unit[R, T any](v T) Reader[R, T] {
	return func(R) T { return v }
}

// Ask returns the environment itself.
func Ask[R any]() Reader[R, R] {
	return func(r R) R { return r }
}

// Asks projects a value out of the environment.
func Asks[R, T any](f func(R) T) Reader[R, T] {
	return f
}

// Bind sequences m with f, threading the same environment through both.
func Bind[R, T, U any](m Reader[R, T], f func(T) Reader[R, U]) Reader[R, U] {
	return func(r R) U {
		return f(m(r))(r)
	}
}

// Map applies a pure function to the result of m.
func Map[R, T, U any](m Reader[R, T], f func(T) U) Reader[R, U] {
	return func(r R) U {
		return f(m(r))
	}
}

// Local runs m against an environment transformed by f, leaving the outer
// environment untouched.
func Local[R, T any](f func(R) R, m Reader[R, T]) Reader[R, T] {
	return func(r R) T {
		return m(f(r))
	}
}

// Run is the run projection: apply the composed function to an environment.
func (m Reader[R, T]) Run(env R) T {
	return m(env)
}

// OpsDict is the erased operation bundle over Reader[any, any]. Readers
// have no notion of failure or knot-tying, so only comp.Ops is satisfied;
// comp.Fix on this bundle reports a capability error.
type OpsDict struct{}

// Dict returns the reader instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "reader" }

func (OpsDict) Unit(v any) Reader[any, any] { return Unit[any](v) }

func (OpsDict) Bind(m Reader[any, any], f func(any) Reader[any, any]) Reader[any, any] {
	return Bind(m, f)
}

var _ comp.Ops[Reader[any, any]] = OpsDict{}
