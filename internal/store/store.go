// Package store implements the state store (C2): the single-threaded,
// in-memory data model for jobs, queues, hashes, lists, sorted sets,
// counters and announced servers, plus their expiration and state indexes.
//
// Nothing in this package is safe for concurrent use; that is the
// dispatcher's job (internal/dispatcher), which serializes every call onto
// one goroutine. Queue FIFO contents live here too, since they are only
// ever mutated from the dispatcher thread; the genuinely cross-thread
// structure is the queue *wait* graph (internal/queuewait), kept separate
// on purpose.
package store

import (
	"time"

	"github.com/google/btree"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

const btreeDegree = 32

// Options configures a Store at construction. MaxExpirationTime is the cap
// applied to all expiry requests except counters and the just-created-job
// window (spec §6); nil means no cap.
type Options struct {
	Clock             clock.Clock
	StringComparer    types.StringComparer
	MaxExpirationTime *time.Duration
	MaxStateHistory   int
}

// Store is the in-memory state store, generic over the job-key variant K.
type Store[K types.Key[K]] struct {
	clk       clock.Clock
	comparer  types.StringComparer
	maxExpiry *time.Duration
	maxHist   int

	jobs    *btree.BTreeG[*types.Job[K]]
	jobExp  *btree.BTreeG[jobExpItem[K]]
	stateIx map[string]*btree.BTreeG[stateItem[K]]

	queues map[string]*queueContainer[K]

	hashes  *btree.BTreeG[*hashContainer]
	hashExp *btree.BTreeG[nameExpItem]

	lists   *btree.BTreeG[*listContainer]
	listExp *btree.BTreeG[nameExpItem]

	sets   *btree.BTreeG[*setContainer]
	setExp *btree.BTreeG[nameExpItem]

	counters   *btree.BTreeG[*counterContainer]
	counterExp *btree.BTreeG[nameExpItem]

	servers *btree.BTreeG[*types.ServerInfo]
}

// New builds an empty Store.
func New[K types.Key[K]](opts Options) *Store[K] {
	cmp := opts.StringComparer
	if cmp == nil {
		cmp = types.OrdinalComparer
	}
	s := &Store[K]{
		clk:       opts.Clock,
		comparer:  cmp,
		maxExpiry: opts.MaxExpirationTime,
		maxHist:   opts.MaxStateHistory,
		queues:    make(map[string]*queueContainer[K]),
		stateIx:   make(map[string]*btree.BTreeG[stateItem[K]]),
	}

	s.jobs = btree.NewG(btreeDegree, func(a, b *types.Job[K]) bool {
		return a.Key.Compare(b.Key) < 0
	})
	s.jobExp = btree.NewG(btreeDegree, lessJobExpItem[K])

	s.hashes = btree.NewG(btreeDegree, func(a, b *hashContainer) bool {
		return cmp(a.Name, b.Name) < 0
	})
	s.hashExp = btree.NewG(btreeDegree, lessNameExpItem(cmp))

	s.lists = btree.NewG(btreeDegree, func(a, b *listContainer) bool {
		return cmp(a.Name, b.Name) < 0
	})
	s.listExp = btree.NewG(btreeDegree, lessNameExpItem(cmp))

	s.sets = btree.NewG(btreeDegree, func(a, b *setContainer) bool {
		return cmp(a.Name, b.Name) < 0
	})
	s.setExp = btree.NewG(btreeDegree, lessNameExpItem(cmp))

	s.counters = btree.NewG(btreeDegree, func(a, b *counterContainer) bool {
		return cmp(a.Name, b.Name) < 0
	})
	s.counterExp = btree.NewG(btreeDegree, lessNameExpItem(cmp))

	s.servers = btree.NewG(btreeDegree, func(a, b *types.ServerInfo) bool {
		return cmp(a.ID, b.ID) < 0
	})

	return s
}

// clampExpiry applies the configured cap unless immune is true. Counter
// expiry and the just-created-job window in JobCreate never call it, so
// they are never capped.
func (s *Store[K]) clampExpiry(d time.Duration, immune bool) time.Duration {
	if immune || s.maxExpiry == nil {
		return d
	}
	if d > *s.maxExpiry {
		return *s.maxExpiry
	}
	return d
}

// Now returns the store's clock reading.
func (s *Store[K]) Now() clock.MonotonicTime {
	return s.clk.Now()
}
