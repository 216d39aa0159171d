package comp

import "fmt"

// Ops is the per-instance operation bundle: the minimal contract a
// computation kind must satisfy to participate in generic sequencing.
// M is the instance's computation type over an any payload, e.g.
// optional.Optional[any] or state.State[any, any].
type Ops[M any] interface {
	// InstanceName identifies the instance in capability errors and
	// law-harness failures.
	InstanceName() string

	// Unit lifts a plain value into the instance with no effect.
	Unit(v any) M

	// Bind sequences m with f: the result of m is fed to f, and f's
	// computation becomes the result.
	Bind(m M, f func(any) M) M
}

// ChoiceOps extends Ops with failure and choice. Zero is the identity of
// Combine, and Combine must be associative.
type ChoiceOps[M any] interface {
	Ops[M]

	Zero() M
	Combine(a, b M) M
}

// FixOps extends Ops with least-fixed-point threading of a self-referential
// computation. The later thunk yields the instance's knot value — the
// eventual result value for optional, the tied structure for free — and is
// backed by a single cell filled exactly once, before its first read.
// Forcing the thunk before the cell is filled is reported as an error.
type FixOps[M any] interface {
	Ops[M]

	Fix(f func(later func() any) M) (M, error)
}

// CapabilityError reports a request for an optional capability on an
// instance that does not provide it. It is a programming error surfaced at
// the call site, not a computation failure.
type CapabilityError struct {
	Instance   string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("comp: instance %q does not support %s", e.Instance, e.Capability)
}

// Zero returns the failure value of ops, or a *CapabilityError if the
// instance has no notion of failure.
func Zero[M any](ops Ops[M]) (M, error) {
	if ch, ok := ops.(ChoiceOps[M]); ok {
		return ch.Zero(), nil
	}
	var zero M
	return zero, &CapabilityError{Instance: ops.InstanceName(), Capability: "zero"}
}

// Combine merges a and b under the instance's choice semantics, or reports
// a *CapabilityError if the instance has none.
func Combine[M any](ops Ops[M], a, b M) (M, error) {
	if ch, ok := ops.(ChoiceOps[M]); ok {
		return ch.Combine(a, b), nil
	}
	var zero M
	return zero, &CapabilityError{Instance: ops.InstanceName(), Capability: "combine"}
}

// Fix threads a self-referential computation through the instance's knot
// cell, or reports a *CapabilityError if the instance has no safe
// knot-tying strategy.
func Fix[M any](ops Ops[M], f func(later func() any) M) (M, error) {
	if fx, ok := ops.(FixOps[M]); ok {
		return fx.Fix(f)
	}
	var zero M
	return zero, &CapabilityError{Instance: ops.InstanceName(), Capability: "fix"}
}
