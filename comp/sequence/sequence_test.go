package sequence_test

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/up-and-running/compose_able_go/comp/comptest"
	"github.com/up-and-running/compose_able_go/comp/sequence"
)

func seqEqual(a, b sequence.Sequence[any]) bool {
	return reflect.DeepEqual(a.Items(), b.Items())
}

func TestSequence_MonadLaws(t *testing.T) {
	genA := func(rng *rand.Rand) any { return rng.IntN(100) }
	genM := func(rng *rand.Rand) sequence.Sequence[any] {
		n := rng.IntN(4)
		items := make([]any, n)
		for i := range items {
			items[i] = rng.IntN(100)
		}
		return sequence.FromList(items...)
	}
	f := func(x any) sequence.Sequence[any] {
		return sequence.FromList[any](x.(int), x.(int)+1)
	}
	g := func(x any) sequence.Sequence[any] {
		if x.(int)%3 == 0 {
			return sequence.Zero[any]()
		}
		return sequence.Unit[any](x.(int) * 2)
	}

	comptest.CheckMonadLaws[sequence.Sequence[any]](t, sequence.Dict(), seqEqual, genA, genM, f, g)
	comptest.CheckChoiceLaws[sequence.Sequence[any]](t, sequence.Dict(), seqEqual, genM)
}

func TestSequence_BindExpandsInOrder(t *testing.T) {
	res := sequence.Bind(sequence.FromList(1, 2, 3, 4), func(int) sequence.Sequence[int] {
		return sequence.FromList(1, 0)
	})

	assert.Equal(t, []int{1, 0, 1, 0, 1, 0, 1, 0}, res.Items())
}

func TestSequence_GuardPrunesBranches(t *testing.T) {
	// All (x, y) pairs from [1..3]×[1..3] with x+y == 4.
	pairs := sequence.Bind(sequence.FromList(1, 2, 3), func(x int) sequence.Sequence[[2]int] {
		return sequence.Bind(sequence.FromList(1, 2, 3), func(y int) sequence.Sequence[[2]int] {
			return sequence.Bind(sequence.Guard(x+y == 4), func(struct{}) sequence.Sequence[[2]int] {
				return sequence.Unit([2]int{x, y})
			})
		})
	})

	assert.Equal(t, [][2]int{{1, 3}, {2, 2}, {3, 1}}, pairs.Items())
}

func TestSequence_EmptyResultIsOrdinaryValue(t *testing.T) {
	res := sequence.Bind(sequence.FromList(1, 2), func(int) sequence.Sequence[int] {
		return sequence.Zero[int]()
	})

	assert.True(t, res.IsEmpty())
	assert.Zero(t, res.Len())
}

func TestSequence_ImmutableAgainstCallerSlice(t *testing.T) {
	src := []int{1, 2, 3}
	s := sequence.FromList(src...)
	src[0] = 99

	assert.Equal(t, []int{1, 2, 3}, s.Items())

	out := s.Items()
	out[0] = 99
	assert.Equal(t, []int{1, 2, 3}, s.Items())
}
