// Package cont implements the continuation instance: a computation that
// receives "the rest of the program" as a first-class function. Capturing
// the continuation enables early exit and other non-local control flow
// without touching the host language's own control constructs.
package cont

import "github.com/up-and-running/compose_able_go/comp"

// Cont computes a value of type T with final answer type R. The function
// receives a continuation k representing the rest of the computation;
// applying k to a T produces the final R.
type Cont[R, T any] func(k func(T) R) R

// Of lifts a plain value: the computation immediately passes it to its
// continuation.
func Of[R, T any](v T) Cont[R, T] {
	return func(k func(T) R) R { return k(v) }
}

// Suspend wraps a continuation-consuming function as a Cont. This is the
// primitive constructor for computations needing direct access to their
// continuation.
func Suspend[R, T any](f func(func(T) R) R) Cont[R, T] {
	return f
}

// Bind sequences m with f: m runs with a continuation that feeds its result
// to f and resumes with f's computation.
func Bind[R, T, U any](m Cont[R, T], f func(T) Cont[R, U]) Cont[R, U] {
	return func(k func(U) R) R {
		return m(func(a T) R {
			return f(a)(k)
		})
	}
}

// Map applies a pure function to the result of m.
func Map[R, T, U any](m Cont[R, T], f func(T) U) Cont[R, U] {
	return func(k func(U) R) R {
		return m(func(a T) R {
			return k(f(a))
		})
	}
}

// Then sequences m with n, discarding m's result.
func Then[R, T, U any](m Cont[R, T], n Cont[R, U]) Cont[R, U] {
	return func(k func(U) R) R {
		return m(func(T) R {
			return n(k)
		})
	}
}

// CallCC calls f with an escape function. Invoking the escape abandons
// whatever computation f built after it and resumes the outer continuation
// with the escaped value directly.
func CallCC[R, T, U any](f func(escape func(T) Cont[R, U]) Cont[R, T]) Cont[R, T] {
	return func(k func(T) R) R {
		escape := func(v T) Cont[R, U] {
			return func(func(U) R) R { return k(v) }
		}
		return f(escape)(k)
	}
}

// Run is the run projection: apply the computation to a terminal handler.
func (m Cont[R, T]) Run(k func(T) R) R {
	return m(k)
}

// Eval runs a computation whose answer type matches its value type with the
// identity handler.
func Eval[T any](m Cont[T, T]) T {
	return m(func(v T) T { return v })
}

// OpsDict is the erased operation bundle over Cont[any, any].
type OpsDict struct{}

// Dict returns the continuation instance's operation bundle.
func Dict() OpsDict { return OpsDict{} }

func (OpsDict) InstanceName() string { return "cont" }

func (OpsDict) Unit(v any) Cont[any, any] { return Of[any](v) }

func (OpsDict) Bind(m Cont[any, any], f func(any) Cont[any, any]) Cont[any, any] {
	return Bind(m, f)
}

var _ comp.Ops[Cont[any, any]] = OpsDict{}
