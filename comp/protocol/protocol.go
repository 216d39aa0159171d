// Package protocol implements the runtime-checked state-transition
// instance: a state computation in which every transition names the tag it
// expects to find and the tag it leaves behind. Run validates the tags at
// each step, so protocols such as "must acquire before release" are
// enforced when the computation runs rather than when it compiles — a
// deliberate weakening of compile-time indexed state, traded for an API
// expressible in Go.
package protocol

import (
	"fmt"

	"github.com/up-and-running/compose_able_go/comp"
)

// Tag names a protocol phase.
type Tag string

// TagMismatchError reports a transition applied in the wrong phase. It is
// delivered to the caller through Run; it never terminates the process.
type TagMismatchError struct {
	Expected Tag
	Actual   Tag
}

func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("protocol: transition expects tag %q, current tag is %q", e.Expected, e.Actual)
}

// Machine is a state computation carrying a protocol tag alongside the
// state. A failed tag check short-circuits the rest of the computation.
type Machine[S, T any] func(s S, tag Tag) (T, S, Tag, error)

// Unit lifts a plain value, leaving state and tag unchanged.
func Unit[S, T any](v T) Machine[S, T] {
	return func(s S, tag Tag) (T, S, Tag, error) {
		return v, s, tag, nil
	}
}

// Transition builds one protocol step: it requires the current tag to be
// from, applies fn to the state, and moves the tag to to. Running it in any
// other phase fails with a *TagMismatchError.
func Transition[S, T any](from, to Tag, fn func(S) (T, S)) Machine[S, T] {
	return func(s S, tag Tag) (T, S, Tag, error) {
		if tag != from {
			var zero T
			return zero, s, tag, &TagMismatchError{Expected: from, Actual: tag}
		}
		v, next := fn(s)
		return v, next, to, nil
	}
}

// Get returns the current state without touching the tag.
func Get[S any]() Machine[S, S] {
	return func(s S, tag Tag) (S, S, Tag, error) {
		return s, s, tag, nil
	}
}

// Bind sequences m with f, threading state and tag, short-circuiting on the
// first tag mismatch.
func Bind[S, T, U any](m Machine[S, T], f func(T) Machine[S, U]) Machine[S, U] {
	return func(s S, tag Tag) (U, S, Tag, error) {
		v, s2, tag2, err := m(s, tag)
		if err != nil {
			var zero U
			return zero, s2, tag2, err
		}
		return f(v)(s2, tag2)
	}
}

// Map applies a pure function to the value.
func Map[S, T, U any](m Machine[S, T], f func(T) U) Machine[S, U] {
	return func(s S, tag Tag) (U, S, Tag, error) {
		v, s2, tag2, err := m(s, tag)
		if err != nil {
			var zero U
			return zero, s2, tag2, err
		}
		return f(v), s2, tag2, nil
	}
}

// Run is the run projection: apply to an initial state and starting tag,
// returning the value, final state, final tag, and the first tag violation
// if one occurred.
func (m Machine[S, T]) Run(initial S, start Tag) (T, S, Tag, error) {
	return m(initial, start)
}

// OpsDict is the erased operation bundle over Machine[any, any].
type OpsDict struct{}

// Dict returns the protocol instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "protocol" }

func (OpsDict) Unit(v any) Machine[any, any] { return Unit[any](v) }

func (OpsDict) Bind(m Machine[any, any], f func(any) Machine[any, any]) Machine[any, any] {
	return Bind(m, f)
}

var _ comp.Ops[Machine[any, any]] = OpsDict{}
