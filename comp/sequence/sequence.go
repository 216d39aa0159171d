// Package sequence implements the nondeterministic computation instance: an
// ordered container whose Bind expands every element through the bound
// function and concatenates the results in order.
package sequence

import "github.com/up-and-running/compose_able_go/comp"

// Sequence is an ordered, immutable container of T. Composition never
// mutates an existing Sequence; every operation returns a new one.
type Sequence[T any] struct {
	items []T
}

// FromList builds a Sequence from the given items. The input is copied so
// later mutation of the caller's slice cannot leak in.
func FromList[T any](items ...T) Sequence[T] {
	out := make([]T, len(items))
	copy(out, items)
	return Sequence[T]{items: out}
}

// Unit lifts a single value into a one-element Sequence.
func Unit[T any](v T) Sequence[T] {
	return Sequence[T]{items: []T{v}}
}

// Bind expands each element of m through f, concatenating the resulting
// sequences in order: an ordered flat-map.
func Bind[T, U any](m Sequence[T], f func(T) Sequence[U]) Sequence[U] {
	var out []U
	for _, x := range m.items {
		out = append(out, f(x).items...)
	}
	return Sequence[U]{items: out}
}

// Map applies a pure function to every element, preserving order.
func Map[T, U any](m Sequence[T], f func(T) U) Sequence[U] {
	out := make([]U, len(m.items))
	for i, x := range m.items {
		out[i] = f(x)
	}
	return Sequence[U]{items: out}
}

// Filter keeps the elements satisfying pred, preserving order.
func Filter[T any](m Sequence[T], pred func(T) bool) Sequence[T] {
	var out []T
	for _, x := range m.items {
		if pred(x) {
			out = append(out, x)
		}
	}
	return Sequence[T]{items: out}
}

// Zero is the empty Sequence, the identity of Concat.
func Zero[T any]() Sequence[T] {
	return Sequence[T]{}
}

// Concat appends b after a. It is associative with Zero as identity.
func Concat[T any](a, b Sequence[T]) Sequence[T] {
	out := make([]T, 0, len(a.items)+len(b.items))
	out = append(out, a.items...)
	out = append(out, b.items...)
	return Sequence[T]{items: out}
}

// Guard yields a one-element Sequence when ok holds and an empty one
// otherwise, pruning the branches of a comprehension.
func Guard(ok bool) Sequence[struct{}] {
	if ok {
		return Unit(struct{}{})
	}
	return Zero[struct{}]()
}

// Items is the run projection: the final ordered container, as a copy.
func (s Sequence[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of elements.
func (s Sequence[T]) Len() int { return len(s.items) }

// IsEmpty reports whether the computation produced no results.
func (s Sequence[T]) IsEmpty() bool { return len(s.items) == 0 }

// OpsDict is the erased operation bundle over Sequence[any]. It satisfies
// comp.Ops and comp.ChoiceOps; fix is not supported for sequences.
type OpsDict struct{}

// Dict returns the sequence instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "sequence" }

func (OpsDict) Unit(v any) Sequence[any] { return Unit(v) }

func (OpsDict) Bind(m Sequence[any], f func(any) Sequence[any]) Sequence[any] {
	return Bind(m, f)
}

func (OpsDict) Zero() Sequence[any] { return Zero[any]() }

func (OpsDict) Combine(a, b Sequence[any]) Sequence[any] { return Concat(a, b) }

var _ comp.ChoiceOps[Sequence[any]] = OpsDict{}
