package protocol_test

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/up-and-running/compose_able_go/comp/comptest"
	"github.com/up-and-running/compose_able_go/comp/protocol"
)

const (
	tagIdle = protocol.Tag("idle")
	tagHeld = protocol.Tag("held")
)

// A lock-discipline protocol over an acquisition counter: acquire is only
// legal when idle, release only when held.
func acquire() protocol.Machine[int, int] {
	return protocol.Transition(tagIdle, tagHeld, func(n int) (int, int) {
		return n + 1, n + 1
	})
}

func release() protocol.Machine[int, string] {
	return protocol.Transition(tagHeld, tagIdle, func(n int) (string, int) {
		return "released", n
	})
}

func TestProtocol_WellTaggedSequenceRuns(t *testing.T) {
	m := protocol.Bind(acquire(), func(int) protocol.Machine[int, string] {
		return release()
	})

	v, n, tag, err := m.Run(0, tagIdle)
	require.NoError(t, err)
	assert.Equal(t, "released", v)
	assert.Equal(t, 1, n)
	assert.Equal(t, tagIdle, tag)
}

func TestProtocol_ViolationIsAnErrorNotAPanic(t *testing.T) {
	// Release before acquire: the protocol is violated at runtime and the
	// violation surfaces as a value.
	m := protocol.Bind(release(), func(string) protocol.Machine[int, int] {
		return acquire()
	})

	_, n, tag, err := m.Run(0, tagIdle)
	var mismatch *protocol.TagMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, tagHeld, mismatch.Expected)
	assert.Equal(t, tagIdle, mismatch.Actual)

	// The failing step left state and tag untouched.
	assert.Equal(t, 0, n)
	assert.Equal(t, tagIdle, tag)
}

func TestProtocol_ViolationShortCircuitsRemainder(t *testing.T) {
	ran := false
	m := protocol.Bind(release(), func(string) protocol.Machine[int, int] {
		ran = true
		return acquire()
	})

	_, _, _, err := m.Run(0, tagIdle)
	require.Error(t, err)
	assert.False(t, ran, "steps after a tag mismatch must not run")
}

func TestProtocol_GetReadsWithoutMovingTheTag(t *testing.T) {
	m := protocol.Bind(acquire(), func(int) protocol.Machine[int, int] {
		return protocol.Get[int]()
	})

	v, _, tag, err := m.Run(5, tagIdle)
	require.NoError(t, err)
	assert.Equal(t, 6, v)
	assert.Equal(t, tagHeld, tag)
}

func TestProtocol_MapKeepsTagAndState(t *testing.T) {
	m := protocol.Map(acquire(), func(n int) string {
		if n > 0 {
			return "held"
		}
		return "free"
	})

	v, n, tag, err := m.Run(0, tagIdle)
	require.NoError(t, err)
	assert.Equal(t, "held", v)
	assert.Equal(t, 1, n)
	assert.Equal(t, tagHeld, tag)
}

// Machines are functions, so equality is observational: run both over a
// spread of initial states and tags and compare every projection.
func machineEqual(a, b protocol.Machine[any, any]) bool {
	for _, s0 := range []any{0, 7} {
		for _, tag := range []protocol.Tag{tagIdle, tagHeld} {
			av, as, at, ae := a.Run(s0, tag)
			bv, bs, bt, be := b.Run(s0, tag)
			if !reflect.DeepEqual(av, bv) || !reflect.DeepEqual(as, bs) ||
				at != bt || (ae == nil) != (be == nil) {
				return false
			}
		}
	}
	return true
}

func TestProtocol_MonadLaws(t *testing.T) {
	genA := func(rng *rand.Rand) any { return rng.IntN(2001) - 1000 }
	genM := func(rng *rand.Rand) protocol.Machine[any, any] {
		n := rng.IntN(50)
		if rng.IntN(2) == 0 {
			return protocol.Unit[any, any](n)
		}
		return protocol.Transition[any, any](tagIdle, tagHeld, func(s any) (any, any) {
			return n, s
		})
	}
	f := func(x any) protocol.Machine[any, any] {
		return protocol.Unit[any](x)
	}
	g := func(x any) protocol.Machine[any, any] {
		return protocol.Transition[any, any](tagHeld, tagIdle, func(s any) (any, any) {
			return x, x
		})
	}

	comptest.CheckMonadLaws[protocol.Machine[any, any]](t, protocol.Dict(), machineEqual, genA, genM, f, g)
}
