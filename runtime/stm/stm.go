// Package stm implements optimistic software transactional memory.
// Transactional variables are versioned cells; a transaction runs against a
// private snapshot of whatever it touches and commits only if every version
// it read is still live. Conflicting transactions are discarded and re-run
// from scratch, so no partial effect ever escapes, and successful commits
// are linearizable with respect to each other.
package stm

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger installs the logger used for conflict and retry diagnostics.
// The default discards everything.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

var nextVarID atomic.Uint64

// core is the type-erased cell behind a TVar. The watch channel is closed
// and replaced on every committed write, waking blocked retries.
type core struct {
	id      uint64
	mu      sync.Mutex
	value   any
	version uint64
	watch   chan struct{}
}

func (c *core) wake() {
	close(c.watch)
	c.watch = make(chan struct{})
}

// TVar is a versioned transactional variable of type T. Mutation happens
// only through a committed transaction or the Store convenience, never in
// place.
type TVar[T any] struct {
	core *core
}

// New creates a TVar holding v.
func New[T any](v T) *TVar[T] {
	return &TVar[T]{core: &core{
		id:    nextVarID.Add(1),
		value: v,
		watch: make(chan struct{}),
	}}
}

// Load reads the variable outside any transaction. Single reads are
// trivially consistent; use Atomically to read several variables as one
// snapshot.
func (v *TVar[T]) Load() T {
	v.core.mu.Lock()
	defer v.core.mu.Unlock()
	return v.core.value.(T)
}

// Store writes the variable outside any transaction, as a one-variable
// committed update.
func (v *TVar[T]) Store(val T) {
	v.core.mu.Lock()
	defer v.core.mu.Unlock()
	v.core.value = val
	v.core.version++
	v.core.wake()
}

type readRecord struct {
	version uint64
	value   any
}

// Txn is one transaction attempt: the versions and values it has read, and
// the writes it will apply on commit. A Txn is confined to the goroutine
// running the transaction function.
type Txn struct {
	reads  map[*core]readRecord
	writes map[*core]any
}

func newTxn() *Txn {
	return &Txn{
		reads:  make(map[*core]readRecord),
		writes: make(map[*core]any),
	}
}

func (tx *Txn) clone() *Txn {
	child := newTxn()
	for c, r := range tx.reads {
		child.reads[c] = r
	}
	for c, w := range tx.writes {
		child.writes[c] = w
	}
	return child
}

// absorbReads merges a child attempt's read set into tx so that later
// validation — and a blocking retry — covers everything the child touched.
func (tx *Txn) absorbReads(child *Txn) {
	for c, r := range child.reads {
		if _, ok := tx.reads[c]; !ok {
			tx.reads[c] = r
		}
	}
}

func (tx *Txn) absorb(child *Txn) {
	tx.absorbReads(child)
	for c, w := range child.writes {
		tx.writes[c] = w
	}
}

// Read returns v's value as seen by this transaction: a pending write if
// one exists, the snapshot if v was read before, otherwise the live value,
// recorded for commit-time validation.
func Read[T any](tx *Txn, v *TVar[T]) T {
	c := v.core
	if w, ok := tx.writes[c]; ok {
		return w.(T)
	}
	if r, ok := tx.reads[c]; ok {
		return r.value.(T)
	}
	c.mu.Lock()
	rec := readRecord{version: c.version, value: c.value}
	c.mu.Unlock()
	tx.reads[c] = rec
	return rec.value.(T)
}

// Write records a pending write, visible to later Reads in the same
// transaction and applied only on a successful commit.
func Write[T any](tx *Txn, v *TVar[T], val T) {
	tx.writes[v.core] = val
}

type retrySignal struct{}

// Retry aborts the current attempt and blocks the transaction until any
// variable it has read so far changes, then re-runs it from scratch. A
// retry before any read blocks forever; that is the caller's hazard, as
// with a dataflow read that is never filled.
func Retry() {
	panic(retrySignal{})
}

// OrElse composes two transaction bodies as alternatives: it runs a, and if
// a retries, runs b from the same starting snapshot. If both retry, the
// whole composition retries, waiting on every variable either side read.
func OrElse[T any](a, b func(*Txn) (T, error)) func(*Txn) (T, error) {
	return func(tx *Txn) (T, error) {
		first := tx.clone()
		val, err, retried := attempt(first, a)
		if !retried {
			tx.absorb(first)
			return val, err
		}

		second := tx.clone()
		val, err, retried = attempt(second, b)
		if retried {
			tx.absorbReads(first)
			tx.absorbReads(second)
			Retry()
		}
		// a's reads stay in the access set: the choice of branch depended
		// on them, so the commit must validate them too.
		tx.absorbReads(first)
		tx.absorb(second)
		return val, err
	}
}

func attempt[T any](tx *Txn, fn func(*Txn) (T, error)) (val T, err error, retried bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(retrySignal); ok {
				retried = true
				return
			}
			panic(r)
		}
	}()
	val, err = fn(tx)
	return
}

// Atomically runs fn as a transaction: all of its writes commit together or
// not at all. Version conflicts are resolved by discarding the attempt and
// re-running — they are never surfaced to the caller. An error returned by
// fn aborts the transaction without committing and is returned as is.
func Atomically[T any](fn func(*Txn) (T, error)) (T, error) {
	txnID := uuid.New().String()
	for attemptNo := 1; ; attemptNo++ {
		tx := newTxn()
		val, err, retried := attempt(tx, fn)
		if retried {
			logger.Load().Debug("transaction blocked on retry",
				zap.String("txnId", txnID),
				zap.Int("attempt", attemptNo),
				zap.Int("watched", len(tx.reads)),
			)
			tx.waitForChange()
			continue
		}
		if err != nil {
			var zero T
			return zero, err
		}
		if tx.commit() {
			return val, nil
		}
		logger.Load().Debug("transaction conflict, rerunning",
			zap.String("txnId", txnID),
			zap.Int("attempt", attemptNo),
		)
	}
}

// commit validates the read set and applies the write set under a global
// lock order (ascending variable id), so concurrent commits cannot
// deadlock and successful ones are totally ordered per variable.
func (tx *Txn) commit() bool {
	cores := make([]*core, 0, len(tx.reads)+len(tx.writes))
	seen := make(map[*core]struct{}, len(tx.reads)+len(tx.writes))
	for c := range tx.reads {
		cores = append(cores, c)
		seen[c] = struct{}{}
	}
	for c := range tx.writes {
		if _, ok := seen[c]; !ok {
			cores = append(cores, c)
		}
	}
	sort.Slice(cores, func(i, j int) bool { return cores[i].id < cores[j].id })

	for _, c := range cores {
		c.mu.Lock()
	}
	defer func() {
		for i := len(cores) - 1; i >= 0; i-- {
			cores[i].mu.Unlock()
		}
	}()

	for c, rec := range tx.reads {
		if c.version != rec.version {
			return false
		}
	}
	for c, val := range tx.writes {
		c.value = val
		c.version++
		c.wake()
	}
	return true
}

// waitForChange blocks until any variable in the read set moves past the
// version this transaction saw.
func (tx *Txn) waitForChange() {
	if len(tx.reads) == 0 {
		// Nothing to watch: block forever, the documented hazard of an
		// unconditional retry.
		select {}
	}

	watches := make([]chan struct{}, 0, len(tx.reads))
	for c, rec := range tx.reads {
		c.mu.Lock()
		if c.version != rec.version {
			c.mu.Unlock()
			return
		}
		watches = append(watches, c.watch)
		c.mu.Unlock()
	}

	fired := make(chan struct{})
	stop := make(chan struct{})
	var once sync.Once
	for _, w := range watches {
		go func(w chan struct{}) {
			select {
			case <-w:
				once.Do(func() { close(fired) })
			case <-stop:
			}
		}(w)
	}
	<-fired
	close(stop)
}
