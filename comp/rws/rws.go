// Package rws implements the combined context+log+state instance: a
// computation that reads an environment R, accumulates output W through a
// monoid, and threads a state S, all in one pass. Log accumulation is
// eager, exactly as in the writer instance.
package rws

import (
	"github.com/up-and-running/compose_able_go/comp"
	"github.com/up-and-running/compose_able_go/comp/writer"
)

// RWS bundles the combined computation with the monoid its log uses.
type RWS[R, W, S, T any] struct {
	mon writer.Monoid[W]
	run func(R, S) (T, S, W)
}

// Unit lifts a plain value: state unchanged, empty log.
func Unit[R, W, S, T any](mon writer.Monoid[W], v T) RWS[R, W, S, T] {
	return RWS[R, W, S, T]{
		mon: mon,
		run: func(_ R, s S) (T, S, W) { return v, s, mon.Identity },
	}
}

// Ask returns the environment.
func Ask[R, W, S any](mon writer.Monoid[W]) RWS[R, W, S, R] {
	return RWS[R, W, S, R]{
		mon: mon,
		run: func(r R, s S) (R, S, W) { return r, s, mon.Identity },
	}
}

// Asks projects a value out of the environment.
func Asks[R, W, S, T any](mon writer.Monoid[W], f func(R) T) RWS[R, W, S, T] {
	return RWS[R, W, S, T]{
		mon: mon,
		run: func(r R, s S) (T, S, W) { return f(r), s, mon.Identity },
	}
}

// Tell records w in the log.
func Tell[R, W, S any](mon writer.Monoid[W], w W) RWS[R, W, S, struct{}] {
	return RWS[R, W, S, struct{}]{
		mon: mon,
		run: func(_ R, s S) (struct{}, S, W) { return struct{}{}, s, w },
	}
}

// Get returns the current state as the value.
func Get[R, W, S any](mon writer.Monoid[W]) RWS[R, W, S, S] {
	return RWS[R, W, S, S]{
		mon: mon,
		run: func(_ R, s S) (S, S, W) { return s, s, mon.Identity },
	}
}

// Put replaces the state.
func Put[R, W, S any](mon writer.Monoid[W], next S) RWS[R, W, S, struct{}] {
	return RWS[R, W, S, struct{}]{
		mon: mon,
		run: func(_ R, _ S) (struct{}, S, W) { return struct{}{}, next, mon.Identity },
	}
}

// Modify applies f to the state and returns the new state as the value.
func Modify[R, W, S any](mon writer.Monoid[W], f func(S) S) RWS[R, W, S, S] {
	return RWS[R, W, S, S]{
		mon: mon,
		run: func(_ R, s S) (S, S, W) {
			next := f(s)
			return next, next, mon.Identity
		},
	}
}

// Bind sequences m with f: same environment for both, f runs on the state m
// left behind, logs combined eagerly.
func Bind[R, W, S, T, U any](m RWS[R, W, S, T], f func(T) RWS[R, W, S, U]) RWS[R, W, S, U] {
	return RWS[R, W, S, U]{
		mon: m.mon,
		run: func(r R, s S) (U, S, W) {
			a, s2, w1 := m.run(r, s)
			b, s3, w2 := f(a).run(r, s2)
			return b, s3, m.mon.Combine(w1, w2)
		},
	}
}

// Map applies a pure function to the value.
func Map[R, W, S, T, U any](m RWS[R, W, S, T], f func(T) U) RWS[R, W, S, U] {
	return RWS[R, W, S, U]{
		mon: m.mon,
		run: func(r R, s S) (U, S, W) {
			a, s2, w := m.run(r, s)
			return f(a), s2, w
		},
	}
}

// Run is the run projection: apply to an environment and initial state,
// returning the value, final state and total accumulated log.
func (m RWS[R, W, S, T]) Run(env R, initial S) (T, S, W) {
	return m.run(env, initial)
}

// OpsDict is the erased operation bundle over RWS[any, any, any, any],
// built around the monoid it was constructed with.
type OpsDict struct {
	mon writer.Monoid[any]
}

// Dict returns the combined instance's operation bundle for the given
// monoid.
func Dict(mon writer.Monoid[any]) OpsDict { return OpsDict{mon: mon} }

func (OpsDict) InstanceName() string { return "rws" }

func (d OpsDict) Unit(v any) RWS[any, any, any, any] {
	return Unit[any, any, any](d.mon, v)
}

func (OpsDict) Bind(m RWS[any, any, any, any], f func(any) RWS[any, any, any, any]) RWS[any, any, any, any] {
	return Bind(m, f)
}

var _ comp.Ops[RWS[any, any, any, any]] = OpsDict{}
