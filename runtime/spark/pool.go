// Package spark provides the shared worker pool of the concurrency runtime
// and its speculative evaluation primitive. A spark is a closure enqueued
// for opportunistic evaluation by a pool worker; whoever needs the value
// can force it at any time, and the disposition records who won.
package spark

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/up-and-running/compose_able_go/runtime/config"
)

// runnable is a queued unit of work: a spark to convert or a submitted
// task.
type runnable interface {
	convert()
}

// taskFunc adapts a plain closure (future execution) to the worker queue.
type taskFunc func()

func (f taskFunc) convert() { f() }

// Pool is a fixed set of worker goroutines sharing per-worker bounded
// queues. It is the single scheduling substrate of the runtime: sparks,
// futures and dataflow wiring all run on it.
type Pool struct {
	id     string
	logger *zap.Logger
	queues []chan runnable
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool

	created    atomic.Uint64
	converted  atomic.Uint64
	fizzled    atomic.Uint64
	duds       atomic.Uint64
	gced       atomic.Uint64
	overflowed atomic.Uint64
}

// NewPool starts cfg.Workers workers, each with a queue bounded by
// cfg.QueueCapacity. A nil logger disables logging. The pool is ready to
// accept work when NewPool returns.
func NewPool(cfg config.Config, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = config.New(cfg.Workers, cfg.QueueCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		id:     uuid.New().String(),
		logger: logger,
		queues: make([]chan runnable, cfg.Workers),
		ctx:    ctx,
		cancel: cancel,
	}

	ready := sync.WaitGroup{}
	for i := range p.queues {
		q := make(chan runnable, cfg.QueueCapacity)
		p.queues[i] = q
		p.wg.Add(1)
		ready.Add(1)
		go p.worker(q, &ready)
	}
	// Wait until every worker has started before handing the pool out.
	ready.Wait()

	logger.Debug("spark pool started",
		zap.String("poolId", p.id),
		zap.Int("workers", cfg.Workers),
		zap.Int("queueCapacity", cfg.QueueCapacity),
	)
	return p
}

func (p *Pool) worker(q chan runnable, ready *sync.WaitGroup) {
	defer p.wg.Done()
	ready.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case r := <-q:
			p.runOne(r)
		}
	}
}

func (p *Pool) runOne(r runnable) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("panic in pool worker",
				zap.String("poolId", p.id),
				zap.Any("error", rec),
			)
		}
	}()
	r.convert()
}

// Enqueue registers a speculative evaluation of thunk and returns its spark
// immediately. The key selects the worker queue by hash, so sparks sharing
// a key resolve in enqueue order. A thunk already evaluated at enqueue time
// is recorded as a Dud and never queued; a full queue rejects the spark as
// Overflowed, leaving the demander to evaluate inline on Force. Enqueueing
// on a closed pool also reports Overflowed.
func Enqueue[T any](p *Pool, key string, thunk *Thunk[T]) *Spark[T] {
	p.created.Add(1)
	s := &Spark[T]{key: key, thunk: thunk, pool: p}

	if thunk.Forced() {
		s.disposition.Store(int32(DispositionDud))
		p.duds.Add(1)
		p.logger.Debug("dud spark: value already evaluated",
			zap.String("poolId", p.id),
			zap.String("key", key),
		)
		return s
	}
	if p.closed.Load() {
		s.disposition.Store(int32(DispositionOverflowed))
		p.overflowed.Add(1)
		return s
	}

	q := p.queues[queueIndex(key, len(p.queues))]
	select {
	case q <- s:
	default:
		s.disposition.Store(int32(DispositionOverflowed))
		p.overflowed.Add(1)
		p.logger.Debug("spark queue overflow",
			zap.String("poolId", p.id),
			zap.String("key", key),
		)
	}
	return s
}

// Execute submits fn for execution on a worker, blocking while the selected
// queue is full. It returns the context's error if ctx or the pool is done
// before the submission lands.
func (p *Pool) Execute(ctx context.Context, key string, fn func()) error {
	q := p.queues[queueIndex(key, len(p.queues))]
	select {
	case q <- taskFunc(fn):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Logger exposes the pool's logger for components scheduling onto it.
func (p *Pool) Logger() *zap.Logger { return p.logger }

// Close stops the workers and waits for them to exit. Sparks still queued
// are abandoned unevaluated; forcing them afterwards evaluates inline.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.logger.Debug("spark pool closed", zap.String("poolId", p.id))
}

// Stats is a point-in-time snapshot of spark dispositions.
type Stats struct {
	Created    uint64
	Converted  uint64
	Fizzled    uint64
	Duds       uint64
	GCed       uint64
	Overflowed uint64
}

// Pending is the number of sparks not yet resolved to a terminal
// disposition.
func (s Stats) Pending() uint64 {
	return s.Created - s.Converted - s.Fizzled - s.Duds - s.GCed - s.Overflowed
}

// Stats snapshots the pool's disposition counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Created:    p.created.Load(),
		Converted:  p.converted.Load(),
		Fizzled:    p.fizzled.Load(),
		Duds:       p.duds.Load(),
		GCed:       p.gced.Load(),
		Overflowed: p.overflowed.Load(),
	}
}

func queueIndex(key string, numQueues int) int {
	if numQueues == 1 {
		return 0
	}
	return int(xxhash.Sum64String(key) % uint64(numQueues))
}
