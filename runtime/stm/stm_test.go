package stm_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/up-and-running/compose_able_go/runtime/stm"
)

func TestTVar_LoadStore(t *testing.T) {
	v := stm.New(10)
	assert.Equal(t, 10, v.Load())

	v.Store(25)
	assert.Equal(t, 25, v.Load())
}

func TestAtomically_WritesCommitTogether(t *testing.T) {
	checking := stm.New(100)
	savings := stm.New(0)

	_, err := stm.Atomically(func(tx *stm.Txn) (struct{}, error) {
		balance := stm.Read(tx, checking)
		stm.Write(tx, checking, balance-30)
		stm.Write(tx, savings, stm.Read(tx, savings)+30)
		return struct{}{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 70, checking.Load())
	assert.Equal(t, 30, savings.Load())
}

func TestAtomically_ErrorAbortsWithoutCommit(t *testing.T) {
	v := stm.New(5)
	boom := errors.New("insufficient funds")

	_, err := stm.Atomically(func(tx *stm.Txn) (int, error) {
		stm.Write(tx, v, 999)
		return 0, boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 5, v.Load(), "an aborted transaction leaves no trace")
}

func TestAtomically_ReadsSeeOwnPendingWrites(t *testing.T) {
	v := stm.New(1)

	out, err := stm.Atomically(func(tx *stm.Txn) (int, error) {
		stm.Write(tx, v, 2)
		return stm.Read(tx, v), nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, out)
}

func TestAtomically_ConcurrentIncrementsNeverLostUpdate(t *testing.T) {
	const goroutines = 8
	const increments = 200

	counter := stm.New(0)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				_, err := stm.Atomically(func(tx *stm.Txn) (struct{}, error) {
					stm.Write(tx, counter, stm.Read(tx, counter)+1)
					return struct{}{}, nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter.Load())
}

func TestRetry_BlocksUntilAReadVariableChanges(t *testing.T) {
	ready := stm.New(false)
	payload := stm.New("")

	got := make(chan string, 1)
	go func() {
		v, err := stm.Atomically(func(tx *stm.Txn) (string, error) {
			if !stm.Read(tx, ready) {
				stm.Retry()
			}
			return stm.Read(tx, payload), nil
		})
		assert.NoError(t, err)
		got <- v
	}()

	// The consumer must be blocked, not polling through to an empty value.
	select {
	case v := <-got:
		t.Fatalf("transaction completed before the flag was set: %q", v)
	case <-time.After(30 * time.Millisecond):
	}

	_, err := stm.Atomically(func(tx *stm.Txn) (struct{}, error) {
		stm.Write(tx, payload, "hello")
		stm.Write(tx, ready, true)
		return struct{}{}, nil
	})
	require.NoError(t, err)

	select {
	case v := <-got:
		assert.Equal(t, "hello", v)
	case <-time.After(2 * time.Second):
		t.Fatal("retrying transaction never woke up")
	}
}

func TestOrElse_FirstBranchWinsWhenItSucceeds(t *testing.T) {
	a := stm.New(1)
	b := stm.New(2)

	out, err := stm.Atomically(stm.OrElse(
		func(tx *stm.Txn) (int, error) { return stm.Read(tx, a), nil },
		func(tx *stm.Txn) (int, error) { return stm.Read(tx, b), nil },
	))

	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestOrElse_FallsBackWhenFirstBranchRetries(t *testing.T) {
	primary := stm.New(0)
	fallback := stm.New(42)

	out, err := stm.Atomically(stm.OrElse(
		func(tx *stm.Txn) (int, error) {
			if stm.Read(tx, primary) == 0 {
				stm.Retry()
			}
			return stm.Read(tx, primary), nil
		},
		func(tx *stm.Txn) (int, error) { return stm.Read(tx, fallback), nil },
	))

	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestOrElse_RetriedBranchWritesAreDiscarded(t *testing.T) {
	scratch := stm.New(0)
	out := stm.New(0)

	_, err := stm.Atomically(stm.OrElse(
		func(tx *stm.Txn) (struct{}, error) {
			stm.Write(tx, scratch, 999)
			stm.Retry()
			return struct{}{}, nil
		},
		func(tx *stm.Txn) (struct{}, error) {
			stm.Write(tx, out, 7)
			return struct{}{}, nil
		},
	))

	require.NoError(t, err)
	assert.Equal(t, 0, scratch.Load(), "writes of a retried branch never commit")
	assert.Equal(t, 7, out.Load())
}

func TestOrElse_BothRetryingBlocksOnEitherVariable(t *testing.T) {
	left := stm.New(0)
	right := stm.New(0)

	got := make(chan int, 1)
	go func() {
		v, err := stm.Atomically(stm.OrElse(
			func(tx *stm.Txn) (int, error) {
				if stm.Read(tx, left) == 0 {
					stm.Retry()
				}
				return stm.Read(tx, left), nil
			},
			func(tx *stm.Txn) (int, error) {
				if stm.Read(tx, right) == 0 {
					stm.Retry()
				}
				return stm.Read(tx, right), nil
			},
		))
		assert.NoError(t, err)
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("composition completed while both branches should retry")
	case <-time.After(30 * time.Millisecond):
	}

	// Waking the second branch's variable must suffice.
	right.Store(5)

	select {
	case v := <-got:
		assert.Equal(t, 5, v)
	case <-time.After(2 * time.Second):
		t.Fatal("composition never woke on the second branch's variable")
	}
}

func TestAtomically_SnapshotIsConsistentAcrossVariables(t *testing.T) {
	// Two variables kept equal by every writer; a reader transaction must
	// never observe them apart.
	x := stm.New(0)
	y := stm.New(0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 300; i++ {
			_, err := stm.Atomically(func(tx *stm.Txn) (struct{}, error) {
				stm.Write(tx, x, i)
				stm.Write(tx, y, i)
				return struct{}{}, nil
			})
			assert.NoError(t, err)
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		pair, err := stm.Atomically(func(tx *stm.Txn) ([2]int, error) {
			return [2]int{stm.Read(tx, x), stm.Read(tx, y)}, nil
		})
		require.NoError(t, err)
		require.Equal(t, pair[0], pair[1], "torn read: %v", pair)
	}
}
