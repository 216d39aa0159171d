// Package state implements the single-owner mutable state instance: a
// computation threading a state value S through each step. Exactly one
// thread owns the state per invocation; the state cell is never shared
// across concurrent runs.
package state

import "github.com/up-and-running/compose_able_go/comp"

// State is a function from a state to a value and the successor state.
type State[S, T any] func(S) (T, S)

// Of wraps a state transition function as a State computation.
func Of[S, T any](fn func(S) (T, S)) State[S, T] {
	return fn
}

// Unit lifts a plain value, passing the state through unchanged.
func Unit[S, T any](v T) State[S, T] {
	return func(s S) (T, S) { return v, s }
}

// Get returns the current state as the value.
func Get[S any]() State[S, S] {
	return func(s S) (S, S) { return s, s }
}

// Put replaces the state.
func Put[S any](s S) State[S, struct{}] {
	return func(S) (struct{}, S) { return struct{}{}, s }
}

// Modify applies f to the state and returns the new state as the value.
func Modify[S any](f func(S) S) State[S, S] {
	return func(s S) (S, S) {
		next := f(s)
		return next, next
	}
}

// Bind sequences m with f: m runs on the incoming state, and f's
// computation runs on the state m left behind.
func Bind[S, T, U any](m State[S, T], f func(T) State[S, U]) State[S, U] {
	return func(s S) (U, S) {
		a, s2 := m(s)
		return f(a)(s2)
	}
}

// Map applies a pure function to the value, leaving the state untouched.
func Map[S, T, U any](m State[S, T], f func(T) U) State[S, U] {
	return func(s S) (U, S) {
		a, s2 := m(s)
		return f(a), s2
	}
}

// Run is the run projection: apply to an initial state, returning the value
// and the final state.
func (m State[S, T]) Run(initial S) (T, S) {
	return m(initial)
}

// Eval runs the computation and returns only the value.
func (m State[S, T]) Eval(initial S) T {
	v, _ := m(initial)
	return v
}

// Exec runs the computation and returns only the final state.
func (m State[S, T]) Exec(initial S) S {
	_, s := m(initial)
	return s
}

// OpsDict is the erased operation bundle over State[any, any]. State has no
// safe knot-tying strategy, so comp.Fix on this bundle reports a capability
// error.
type OpsDict struct{}

// Dict returns the state instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "state" }

func (OpsDict) Unit(v any) State[any, any] { return Unit[any](v) }

func (OpsDict) Bind(m State[any, any], f func(any) State[any, any]) State[any, any] {
	return Bind(m, f)
}

var _ comp.Ops[State[any, any]] = OpsDict{}
