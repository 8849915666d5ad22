// Package fetch implements the blocking multi-queue fetch (C7): the
// operation worker processes call to pull the next job key across a set
// of queues of interest, blocking until one arrives or the caller cancels
// (spec §4.7).
package fetch

import (
	"context"

	"github.com/ChuLiYu/jobcore/internal/dispatcher"
	"github.com/ChuLiYu/jobcore/internal/queuewait"
	"github.com/ChuLiYu/jobcore/internal/store"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// Fetcher pulls job keys from a fixed or per-call set of queues.
type Fetcher[K types.Key[K]] struct {
	dispatcher *dispatcher.Dispatcher[K]
	graph      *queuewait.Graph
}

// New returns a Fetcher over dispatcher and graph; graph must be the same
// instance the dispatcher signals into after a successful commit.
func New[K types.Key[K]](d *dispatcher.Dispatcher[K], graph *queuewait.Graph) *Fetcher[K] {
	return &Fetcher[K]{dispatcher: d, graph: graph}
}

type popResult[K types.Key[K]] struct {
	key K
	ok  bool
}

// FetchNext pops the next job key available across queues, scanned in
// the given stable order (a weak priority: the lowest-index non-empty
// queue wins). Blocks until one is available or ctx is done.
//
// Ordering guarantee: across concurrent fetchers, each enqueued job is
// delivered to exactly one fetcher (FIFO at the queue level), because the
// pop itself executes on the dispatcher's single writer goroutine.
func (f *Fetcher[K]) FetchNext(ctx context.Context, queues []string) (string, K, error) {
	for {
		name, key, ok, err := f.popAny(ctx, queues)
		if err != nil {
			var zero K
			return "", zero, err
		}
		if ok {
			return name, key, nil
		}

		// Nothing available on any listed queue: install one wait node
		// per queue before blocking, then scan once more. This closes the
		// gap between the last failed pop above and the registration
		// below, during which a producer could enqueue and signal without
		// any waiter yet installed to see it; without the recheck, that
		// signal is lost and the fetcher blocks on a non-empty queue. A
		// fresh Waiter is installed on every pass through here rather
		// than reused, since a signal only ever guarantees a job *was*
		// enqueued, not that this call wins the race to pop it (another
		// fetcher may beat it to the dispatcher). Go's channel-based
		// Ready() is consumed exactly once, so re-waiting needs a new
		// registration.
		waiter := f.graph.AddWait(queues)

		name, key, ok, err = f.popAny(ctx, queues)
		if err != nil {
			waiter.Close()
			var zero K
			return "", zero, err
		}
		if ok {
			waiter.Close()
			return name, key, nil
		}

		select {
		case <-waiter.Ready():
			waiter.Close()
		case <-ctx.Done():
			waiter.Close()
			var zero K
			return "", zero, ctx.Err()
		}
	}
}

// popAny scans queues in order for the first non-empty one and pops its
// head, returning ok=false if every queue was empty.
func (f *Fetcher[K]) popAny(ctx context.Context, queues []string) (string, K, bool, error) {
	for _, q := range queues {
		name := q
		res, err := dispatcher.SubmitTask(ctx, f.dispatcher, func(s *store.Store[K]) popResult[K] {
			key, ok := s.QueuePop(name)
			return popResult[K]{key: key, ok: ok}
		})
		if err != nil {
			var zero K
			return "", zero, false, err
		}
		if res.ok {
			f.graph.SignalOne(name) // propagate liveness to the next waiter on this queue
			return name, res.key, true, nil
		}
	}
	var zero K
	return "", zero, false, nil
}
