// Package comp defines the composable-effect contract shared by every
// computation instance in this module.
//
// A computation instance is a concrete kind of deferred computation —
// optional, sequence, reader, writer, state, continuation, free — that can
// be sequenced through Unit and Bind. Go has no higher-kinded types, so the
// contract is rendered twice:
//
//   - Each instance package exports fully typed package-level combinators
//     (Unit, Bind, Map, and its runners). This is the API user code composes
//     with.
//   - Each instance package also provides an operation bundle over its
//     any-payload form, satisfying [Ops]. Bundles make the contract a
//     first-class value: generic code (and the shared law harness in
//     comp/comptest) can sequence computations without knowing which
//     instance it holds.
//
// # Laws
//
// Every bundle must satisfy, for all values a, computations m, and
// functions f, g:
//
//	L1 (left identity):  Bind(Unit(a), f)      ≡ f(a)
//	L2 (right identity): Bind(m, Unit)          ≡ m
//	L3 (associativity):  Bind(Bind(m, f), g)    ≡ Bind(m, λx. Bind(f(x), g))
//
// Bundles additionally implementing [ChoiceOps] must satisfy the monoid
// laws for Zero and Combine, and bundles implementing [FixOps] must fill
// their knot cell exactly once, before its first read.
//
// Capabilities are optional. Requesting one through [Zero], [Combine] or
// [Fix] on a bundle that lacks it reports a *[CapabilityError] at the call
// site; it never fails silently.
package comp
