package spark

import (
	"sync"
	"sync/atomic"
)

// Disposition records how a speculative unit of work was resolved. A spark
// starts Pending and moves to exactly one terminal disposition.
type Disposition int32

const (
	// DispositionPending means the spark sits in a queue, unevaluated.
	DispositionPending Disposition = iota
	// DispositionConverted means a pool worker evaluated it to completion.
	DispositionConverted
	// DispositionFizzled means the demander evaluated it before any worker
	// got to it.
	DispositionFizzled
	// DispositionDud means the thunk was already evaluated at enqueue time;
	// the spark was wasted work and never queued.
	DispositionDud
	// DispositionGCed means the spark was discarded before evaluation; the
	// pool skips it.
	DispositionGCed
	// DispositionOverflowed means the queue was at capacity at enqueue
	// time; the spark was rejected and the demander evaluates inline.
	DispositionOverflowed
)

func (d Disposition) String() string {
	switch d {
	case DispositionPending:
		return "pending"
	case DispositionConverted:
		return "converted"
	case DispositionFizzled:
		return "fizzled"
	case DispositionDud:
		return "dud"
	case DispositionGCed:
		return "gced"
	case DispositionOverflowed:
		return "overflowed"
	default:
		return "unknown"
	}
}

// Thunk is a memoized deferred value: the closure runs at most once, and
// every Force after the first returns the shared result. Safe for
// concurrent forcing; whichever caller wins the lock evaluates, the rest
// wait and read the memo.
type Thunk[T any] struct {
	mu     sync.Mutex
	fn     func() T
	value  T
	forced bool
}

// NewThunk wraps a closure as an unevaluated Thunk.
func NewThunk[T any](fn func() T) *Thunk[T] {
	return &Thunk[T]{fn: fn}
}

// Force evaluates the thunk if needed and returns its value.
func (t *Thunk[T]) Force() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.forced {
		t.value = t.fn()
		t.forced = true
		t.fn = nil
	}
	return t.value
}

// Forced reports whether the value has already been evaluated.
func (t *Thunk[T]) Forced() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.forced
}

// Spark is a pending unit of speculative work owned by its pool until the
// disposition resolves.
type Spark[T any] struct {
	key         string
	thunk       *Thunk[T]
	pool        *Pool
	disposition atomic.Int32
}

// Disposition returns the spark's current disposition.
func (s *Spark[T]) Disposition() Disposition {
	return Disposition(s.disposition.Load())
}

// Force returns the spark's value, evaluating inline when no worker has
// converted it yet. A Pending spark forced here fizzles: the demander beat
// the pool to it. If a worker is evaluating concurrently, Force blocks on
// the thunk until the value is ready — the returned value is correct
// regardless of disposition.
func (s *Spark[T]) Force() T {
	if s.disposition.CompareAndSwap(int32(DispositionPending), int32(DispositionFizzled)) {
		s.pool.fizzled.Add(1)
	}
	return s.thunk.Force()
}

// Discard drops the demander's interest in a still-Pending spark. The pool
// marks it GCed and will skip it without evaluating. Discarding a spark
// that already resolved has no effect.
func (s *Spark[T]) Discard() {
	if s.disposition.CompareAndSwap(int32(DispositionPending), int32(DispositionGCed)) {
		s.pool.gced.Add(1)
	}
}

// convert is the worker-side resolution: claim the spark and evaluate it.
// A spark already fizzled, discarded, or otherwise resolved is skipped.
func (s *Spark[T]) convert() {
	if !s.disposition.CompareAndSwap(int32(DispositionPending), int32(DispositionConverted)) {
		return
	}
	s.thunk.Force()
	s.pool.converted.Add(1)
}
