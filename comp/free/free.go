// Package free implements the recursive-structure instance: a computation
// described as data. A Free value is either a finished Pure result or an
// Impure layer of a caller-supplied shape embedding further Free values.
// Because the description commits to no concrete effect, the same structure
// can be collapsed by any number of interpreters.
package free

import (
	"errors"
	"fmt"
	"sync"

	"github.com/up-and-running/compose_able_go/comp"
	"github.com/up-and-running/compose_able_go/shared/helper"
)

// Layer is one level of an effect description. Substructures reports the
// embedded sub-computations (each element a Free of the structure's payload
// type); WithSubstructures rebuilds the layer around replacements,
// preserving the outer shape. The two must agree on length and order.
type Layer interface {
	Substructures() []any
	WithSubstructures(subs []any) Layer
}

// Free is either Pure (a finished value), Impure (a layer embedding further
// structures), or a deferred node produced by Defer or Fix.
type Free[T any] struct {
	value   T
	layer   Layer
	pending *pending[T]
}

// pending is a memoized thunk: the structure is produced lazily once, then
// shared by every later read.
type pending[T any] struct {
	once sync.Once
	gen  func() Free[T]
	memo Free[T]
}

func (p *pending[T]) force() Free[T] {
	p.once.Do(func() {
		p.memo = p.gen()
		p.gen = nil
	})
	return p.memo
}

// Pure lifts a finished value.
func Pure[T any](v T) Free[T] {
	return Free[T]{value: v}
}

// Impure wraps a single layer of the caller's shape.
func Impure[T any](layer Layer) Free[T] {
	return Free[T]{layer: layer}
}

// Defer wraps a structure that will be produced on first demand. The thunk
// runs at most once; interpretation charges one step for forcing it.
func Defer[T any](thunk func() Free[T]) Free[T] {
	return Free[T]{pending: &pending[T]{gen: thunk}}
}

// Unit is Pure.
func Unit[T any](v T) Free[T] {
	return Pure(v)
}

// IsPure reports whether the structure is a finished value.
func (m Free[T]) IsPure() bool {
	return m.layer == nil && m.pending == nil
}

// Bind sequences m with f. A Pure value is fed to f; an Impure layer has f
// mapped over every embedded sub-structure, preserving the outer shape; a
// deferred node stays deferred, with the bind applied on demand.
func Bind[T, U any](m Free[T], f func(T) Free[U]) Free[U] {
	switch {
	case m.pending != nil:
		p := m.pending
		return Defer(func() Free[U] {
			return Bind(p.force(), f)
		})
	case m.layer != nil:
		subs := m.layer.Substructures()
		mapped := make([]any, len(subs))
		for i, raw := range subs {
			sub := helper.MustGetTypedValue[Free[T]](func() (any, error) {
				return raw, nil
			})
			mapped[i] = Bind(sub, f)
		}
		return Free[U]{layer: m.layer.WithSubstructures(mapped)}
	default:
		return f(m.value)
	}
}

// Map applies a pure function to every eventual result.
func Map[T, U any](m Free[T], f func(T) U) Free[U] {
	return Bind(m, func(v T) Free[U] { return Pure(f(v)) })
}

// Handler collapses one Impure layer into the next structure to interpret.
// It decides which embedded sub-structure continues the computation and may
// perform whatever concrete effect the layer denotes.
type Handler[T any] func(Layer) (Free[T], error)

// ErrDivergenceBound reports that interpretation exhausted its step budget
// while the structure was still growing.
var ErrDivergenceBound = errors.New("free: divergence bound exceeded")

// Run interprets m with handle until a Pure value is reached or bound
// interpreter steps have been spent. Each handler application and each
// forcing of a deferred node costs one step; a structure built purely from
// Pure costs none. Exhausting the budget reports ErrDivergenceBound with
// the step count, never a silent truncation or an endless loop.
func Run[T any](m Free[T], handle Handler[T], bound int) (T, error) {
	var zero T
	for steps := 0; ; steps++ {
		switch {
		case m.pending != nil:
			if steps >= bound {
				return zero, fmt.Errorf("%w after %d steps", ErrDivergenceBound, steps)
			}
			m = m.pending.force()
		case m.layer != nil:
			if steps >= bound {
				return zero, fmt.Errorf("%w after %d steps", ErrDivergenceBound, steps)
			}
			next, err := handle(m.layer)
			if err != nil {
				return zero, err
			}
			m = next
		default:
			return m.value, nil
		}
	}
}

// ErrUnresolvedFix reports that a fix cell was forced while the
// self-referential structure was still being built.
var ErrUnresolvedFix = errors.New("free: fix cell forced before it was filled")

// Fix ties a self-referential structure through a single backpatchable
// cell. f receives a deferred stand-in for the structure it is defining;
// the cell is filled exactly once, after f returns and before the first
// interpretation step can read it. Interpreting the knot is still subject
// to Run's divergence bound.
func Fix[T any](f func(self Free[T]) Free[T]) (m Free[T], err error) {
	var (
		cell   Free[T]
		filled bool
	)
	self := Defer(func() Free[T] {
		if !filled {
			panic(ErrUnresolvedFix)
		}
		return cell
	})
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrUnresolvedFix) {
				m, err = Free[T]{}, e
				return
			}
			panic(r)
		}
	}()
	cell = f(self)
	filled = true
	return cell, nil
}

// OpsDict is the erased operation bundle over Free[any]. It satisfies
// comp.Ops and comp.FixOps; the knot value yielded by the fix thunk is the
// tied structure itself.
type OpsDict struct{}

// Dict returns the free instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "free" }

func (OpsDict) Unit(v any) Free[any] { return Pure(v) }

func (OpsDict) Bind(m Free[any], f func(any) Free[any]) Free[any] {
	return Bind(m, f)
}

func (OpsDict) Fix(f func(later func() any) Free[any]) (Free[any], error) {
	return Fix(func(self Free[any]) Free[any] {
		return f(func() any { return self })
	})
}

var (
	_ comp.Ops[Free[any]]    = OpsDict{}
	_ comp.FixOps[Free[any]] = OpsDict{}
)
