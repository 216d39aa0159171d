// Package writer implements the write-only log instance: a computation that
// carries a value alongside output accumulated through a caller-supplied
// monoid.
//
// Accumulation is eager: every Tell and every Bind combines the log there
// and then, so the accumulated output is always a concrete value and a long
// chain of writes can never pile up deferred work. This is a correctness
// requirement of the instance, not a tuning choice.
package writer

import "github.com/up-and-running/compose_able_go/comp"

// Monoid supplies the identity element and associative combine for the
// accumulated output type W.
type Monoid[W any] struct {
	Identity W
	Combine  func(W, W) W
}

// SliceMonoid is the monoid of slices under concatenation.
func SliceMonoid[E any]() Monoid[[]E] {
	return Monoid[[]E]{
		Identity: nil,
		Combine: func(a, b []E) []E {
			if len(a) == 0 && len(b) == 0 {
				return nil
			}
			out := make([]E, 0, len(a)+len(b))
			out = append(out, a...)
			out = append(out, b...)
			return out
		},
	}
}

// StringMonoid is the monoid of strings under concatenation.
func StringMonoid() Monoid[string] {
	return Monoid[string]{
		Identity: "",
		Combine:  func(a, b string) string { return a + b },
	}
}

// Number constrains the element types usable with SumMonoid.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// SumMonoid is the monoid of numbers under addition.
func SumMonoid[N Number]() Monoid[N] {
	return Monoid[N]{
		Identity: 0,
		Combine:  func(a, b N) N { return a + b },
	}
}

// Writer pairs a value with its accumulated output. The monoid travels with
// the value so Bind knows how to combine logs.
type Writer[W, T any] struct {
	value T
	log   W
	mon   Monoid[W]
}

// Unit lifts a plain value with the empty log.
func Unit[W, T any](mon Monoid[W], v T) Writer[W, T] {
	return Writer[W, T]{value: v, log: mon.Identity, mon: mon}
}

// Tell records w in the log and produces no interesting value.
func Tell[W any](mon Monoid[W], w W) Writer[W, struct{}] {
	return Writer[W, struct{}]{value: struct{}{}, log: w, mon: mon}
}

// Bind sequences m with f, combining the two logs eagerly.
func Bind[W, T, U any](m Writer[W, T], f func(T) Writer[W, U]) Writer[W, U] {
	n := f(m.value)
	return Writer[W, U]{
		value: n.value,
		log:   m.mon.Combine(m.log, n.log),
		mon:   m.mon,
	}
}

// Map applies a pure function to the value, leaving the log untouched.
func Map[W, T, U any](m Writer[W, T], f func(T) U) Writer[W, U] {
	return Writer[W, U]{value: f(m.value), log: m.log, mon: m.mon}
}

// Logged pairs a sub-computation's value with the log it wrote.
type Logged[W, T any] struct {
	Value T
	Log   W
}

// Listen exposes the log written by m as part of its value, without
// removing it from the accumulated output.
func Listen[W, T any](m Writer[W, T]) Writer[W, Logged[W, T]] {
	return Writer[W, Logged[W, T]]{
		value: Logged[W, T]{Value: m.value, Log: m.log},
		log:   m.log,
		mon:   m.mon,
	}
}

// Censor transforms the log written by m before it is accumulated.
func Censor[W, T any](f func(W) W, m Writer[W, T]) Writer[W, T] {
	return Writer[W, T]{value: m.value, log: f(m.log), mon: m.mon}
}

// Run is the run projection: the value together with the total accumulated
// log.
func (m Writer[W, T]) Run() (T, W) {
	return m.value, m.log
}

// Value returns only the computed value.
func (m Writer[W, T]) Value() T { return m.value }

// Log returns only the accumulated output.
func (m Writer[W, T]) Log() W { return m.log }

// OpsDict is the erased operation bundle over Writer[any, any], built
// around the monoid it was constructed with.
type OpsDict struct {
	mon Monoid[any]
}

// Dict returns the writer instance's operation bundle for the given monoid.
func Dict(mon Monoid[any]) OpsDict { return OpsDict{mon: mon} }

func (OpsDict) InstanceName() string { return "writer" }

func (d OpsDict) Unit(v any) Writer[any, any] { return Unit[any](d.mon, v) }

func (OpsDict) Bind(m Writer[any, any], f func(any) Writer[any, any]) Writer[any, any] {
	return Bind(m, f)
}

var _ comp.Ops[Writer[any, any]] = OpsDict{}
