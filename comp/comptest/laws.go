// Package comptest is the shared law harness: it verifies the algebraic
// laws of the effect contract against an instance's operation bundle with
// generated inputs. Instance test packages supply generators for payloads
// and computations plus an equality adequate for the instance (structural
// for data-shaped instances, observational for function-shaped ones).
package comptest

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/up-and-running/compose_able_go/comp"
)

// Trials is the number of generated inputs each law is checked against.
const Trials = 200

// Equal decides whether two computations of the instance are
// indistinguishable.
type Equal[M any] func(a, b M) bool

// CheckMonadLaws verifies L1 (left identity), L2 (right identity) and L3
// (associativity) for the given bundle. genA generates payload values, genM
// generates whole computations, and fs supplies at least two distinct
// continuations so associativity is exercised with different f and g.
func CheckMonadLaws[M any](
	t *testing.T,
	ops comp.Ops[M],
	eq Equal[M],
	genA func(*rand.Rand) any,
	genM func(*rand.Rand) M,
	fs ...func(any) M,
) {
	t.Helper()
	require.GreaterOrEqual(t, len(fs), 2, "need at least two continuations for the law checks")

	rng := rand.New(rand.NewPCG(42, 0))
	name := ops.InstanceName()

	for i := 0; i < Trials; i++ {
		a := genA(rng)
		m := genM(rng)
		f := fs[rng.IntN(len(fs))]
		g := fs[rng.IntN(len(fs))]

		require.Truef(t,
			eq(ops.Bind(ops.Unit(a), f), f(a)),
			"%s: left identity violated for payload %v", name, a)

		require.Truef(t,
			eq(ops.Bind(m, ops.Unit), m),
			"%s: right identity violated", name)

		require.Truef(t,
			eq(
				ops.Bind(ops.Bind(m, f), g),
				ops.Bind(m, func(x any) M { return ops.Bind(f(x), g) }),
			),
			"%s: associativity violated", name)
	}
}

// CheckChoiceLaws verifies the monoid laws of Zero and Combine: Zero is a
// left and right identity, and Combine is associative.
func CheckChoiceLaws[M any](
	t *testing.T,
	ops comp.ChoiceOps[M],
	eq Equal[M],
	genM func(*rand.Rand) M,
) {
	t.Helper()

	rng := rand.New(rand.NewPCG(43, 0))
	name := ops.InstanceName()

	for i := 0; i < Trials; i++ {
		a := genM(rng)
		b := genM(rng)
		c := genM(rng)

		require.Truef(t,
			eq(ops.Combine(ops.Zero(), a), a),
			"%s: zero is not a left identity", name)

		require.Truef(t,
			eq(ops.Combine(a, ops.Zero()), a),
			"%s: zero is not a right identity", name)

		require.Truef(t,
			eq(
				ops.Combine(ops.Combine(a, b), c),
				ops.Combine(a, ops.Combine(b, c)),
			),
			"%s: combine is not associative", name)
	}
}
