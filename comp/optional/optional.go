// Package optional implements the fallible computation instance: a value
// that is either present or absent. Bind short-circuits on the first
// absence, so a chain of optional steps reads like a sequence of guarded
// lookups.
package optional

import (
	"errors"

	"github.com/up-and-running/compose_able_go/comp"
)

// Optional holds either a present value of type T or nothing.
// The zero Optional is Absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Present lifts a value into a present Optional.
func Present[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Absent returns the empty Optional.
func Absent[T any]() Optional[T] {
	return Optional[T]{}
}

// Unit is Present; it lifts a plain value with no effect.
func Unit[T any](v T) Optional[T] {
	return Present(v)
}

// Bind sequences m with f. A present value is fed to f; absence
// short-circuits and f is never called.
func Bind[T, U any](m Optional[T], f func(T) Optional[U]) Optional[U] {
	if !m.present {
		return Absent[U]()
	}
	return f(m.value)
}

// Map applies a pure function to a present value.
func Map[T, U any](m Optional[T], f func(T) U) Optional[U] {
	if !m.present {
		return Absent[U]()
	}
	return Present(f(m.value))
}

// Filter keeps a present value only when pred holds.
func Filter[T any](m Optional[T], pred func(T) bool) Optional[T] {
	if m.present && pred(m.value) {
		return m
	}
	return Absent[T]()
}

// Zero is the identity of Combine: the absent value.
func Zero[T any]() Optional[T] {
	return Absent[T]()
}

// Combine returns the first present argument, or Absent when both are
// absent. It is associative with Zero as identity.
func Combine[T any](a, b Optional[T]) Optional[T] {
	if a.present {
		return a
	}
	return b
}

// Get is the run projection: it unwraps the value and reports presence.
func (m Optional[T]) Get() (T, bool) {
	return m.value, m.present
}

// IsPresent reports whether the computation produced a value.
func (m Optional[T]) IsPresent() bool {
	return m.present
}

// OrElse unwraps the value, falling back to fallback on absence.
func (m Optional[T]) OrElse(fallback T) T {
	if m.present {
		return m.value
	}
	return fallback
}

// ErrUnresolvedFix reports that a fix cell was forced before it was filled:
// the self-referential computation demanded its own result strictly, so no
// fixed point exists.
var ErrUnresolvedFix = errors.New("optional: fix cell forced before it was filled")

// Fix ties a self-referential computation through a single backpatchable
// cell. f receives a thunk for the eventual result value; the cell is
// filled exactly once, after f returns and before any later read. f may
// capture the thunk inside closures it stores, but must not force it while
// still running.
func Fix[T any](f func(later func() T) Optional[T]) (m Optional[T], err error) {
	var (
		cell   T
		filled bool
	)
	later := func() T {
		if !filled {
			panic(ErrUnresolvedFix)
		}
		return cell
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrUnresolvedFix) {
				m, err = Absent[T](), e
				return
			}
			panic(r)
		}
	}()
	m = f(later)
	if v, ok := m.Get(); ok {
		cell, filled = v, true
	}
	return m, nil
}

// OpsDict is the erased operation bundle over Optional[any]. It satisfies
// comp.Ops, comp.ChoiceOps and comp.FixOps.
type OpsDict struct{}

// Dict returns the optional instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "optional" }

func (OpsDict) Unit(v any) Optional[any] { return Present(v) }

func (OpsDict) Bind(m Optional[any], f func(any) Optional[any]) Optional[any] {
	return Bind(m, f)
}

func (OpsDict) Zero() Optional[any] { return Absent[any]() }

func (OpsDict) Combine(a, b Optional[any]) Optional[any] { return Combine(a, b) }

func (OpsDict) Fix(f func(later func() any) Optional[any]) (Optional[any], error) {
	return Fix(f)
}

var (
	_ comp.ChoiceOps[Optional[any]] = OpsDict{}
	_ comp.FixOps[Optional[any]]    = OpsDict{}
)
