package dataflow

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// CompareFunc orders sink elements: negative when a sorts before b.
type CompareFunc[T any] func(a, b T) int

// OrderedSink re-establishes an order over results that arrive out of order,
// such as futures settling in completion order rather than submit order. It
// holds up to window elements sorted by cmp; inserting past the window
// releases the smallest element to the source channel, and Close drains the
// rest in order. The reordering guarantee is therefore bounded: an element
// arriving more than window positions late is emitted where it lands.
type OrderedSink[T any] struct {
	mu      sync.Mutex
	data    []T
	window  int
	compare CompareFunc[T]

	source chan T
	closed atomic.Bool
}

// NewOrderedSink creates a sink with the given reordering window.
func NewOrderedSink[T any](window int, cmp CompareFunc[T]) *OrderedSink[T] {
	return &OrderedSink[T]{
		data:    make([]T, 0, window),
		window:  window,
		compare: cmp,
		source:  make(chan T, window*2),
	}
}

// Insert adds val in sorted position, releasing the smallest buffered
// element when the window overflows. It reports false if the sink is closed
// or ctx is done before the released element could be delivered.
func (s *OrderedSink[T]) Insert(ctx context.Context, val T) bool {
	if s.closed.Load() {
		return false
	}

	s.mu.Lock()
	idx := sort.Search(len(s.data), func(i int) bool {
		return s.compare(val, s.data[i]) < 0
	})
	s.data = append(s.data, val)
	copy(s.data[idx+1:], s.data[idx:])
	s.data[idx] = val

	var (
		evicted T
		evict   bool
	)
	if len(s.data) > s.window {
		evicted = s.data[0]
		s.data = s.data[1:]
		evict = true
	}
	s.mu.Unlock()

	if evict {
		select {
		case <-ctx.Done():
			return false
		case s.source <- evicted:
		}
	}
	return true
}

// Source is the ordered output. It is closed once Close has drained the
// buffer.
func (s *OrderedSink[T]) Source() <-chan T {
	return s.source
}

// Close stops accepting inserts and emits the buffered elements in order.
// It returns when the drain finishes or ctx is done, whichever is first.
func (s *OrderedSink[T]) Close(ctx context.Context) {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	remaining := s.data
	s.data = nil
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, v := range remaining {
			select {
			case <-ctx.Done():
				return
			case s.source <- v:
			}
		}
		close(s.source)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}
