package cont_test

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/up-and-running/compose_able_go/comp/comptest"
	"github.com/up-and-running/compose_able_go/comp/cont"
)

// Continuations are functions, so equality is observational: run both with
// a spread of terminal handlers and compare the answers.
func contEqual(a, b cont.Cont[any, any]) bool {
	handlers := []func(any) any{
		func(v any) any { return v },
		func(v any) any { return fmt.Sprintf("<%v>", v) },
	}
	for _, k := range handlers {
		if !reflect.DeepEqual(a(k), b(k)) {
			return false
		}
	}
	return true
}

func TestCont_MonadLaws(t *testing.T) {
	genA := func(rng *rand.Rand) any { return rng.IntN(2001) - 1000 }
	genM := func(rng *rand.Rand) cont.Cont[any, any] {
		return cont.Of[any](any(rng.IntN(100)))
	}
	f := func(x any) cont.Cont[any, any] {
		return cont.Of[any](any(x.(int) + 3))
	}
	g := func(x any) cont.Cont[any, any] {
		return cont.Of[any](any(x.(int) * 2))
	}

	comptest.CheckMonadLaws[cont.Cont[any, any]](t, cont.Dict(), contEqual, genA, genM, f, g)
}

func TestCont_RunAppliesTerminalHandler(t *testing.T) {
	m := cont.Bind(cont.Of[string](20), func(x int) cont.Cont[string, int] {
		return cont.Of[string](x + 1)
	})

	out := m.Run(func(v int) string { return fmt.Sprintf("got %d", v) })
	assert.Equal(t, "got 21", out)
}

func TestCont_EvalWithIdentity(t *testing.T) {
	m := cont.Map(cont.Of[int](6), func(x int) int { return x * 7 })
	assert.Equal(t, 42, cont.Eval(m))
}

func TestCont_SuspendCapturesContinuation(t *testing.T) {
	// The computation invokes its continuation twice and sums the answers.
	twice := cont.Suspend(func(k func(int) int) int {
		return k(1) + k(2)
	})

	total := twice.Run(func(v int) int { return v * 10 })
	assert.Equal(t, 30, total)
}

func TestCont_CallCCEscapesEarly(t *testing.T) {
	ran := false
	m := cont.CallCC(func(escape func(int) cont.Cont[int, int]) cont.Cont[int, int] {
		return cont.Bind(escape(42), func(int) cont.Cont[int, int] {
			ran = true
			return cont.Of[int](0)
		})
	})

	assert.Equal(t, 42, cont.Eval(m))
	assert.False(t, ran, "code after the escape must not run")
}

func TestCont_CallCCWithoutEscape(t *testing.T) {
	m := cont.CallCC(func(escape func(int) cont.Cont[int, int]) cont.Cont[int, int] {
		return cont.Of[int](7)
	})

	assert.Equal(t, 7, cont.Eval(m))
}

func TestCont_ThenDiscardsFirstResult(t *testing.T) {
	m := cont.Then(cont.Of[int]("ignored"), cont.Of[int](5))
	assert.Equal(t, 5, cont.Eval(m))
}
