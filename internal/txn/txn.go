// Package txn implements the client-side transaction buffer (C6): an
// append-only, single-use list of commands plus the set of queue names
// enqueued into during its lifetime, committed atomically through the
// dispatcher.
package txn

import (
	"context"
	"errors"

	"github.com/ChuLiYu/jobcore/internal/command"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// ErrAlreadyCommitted is returned by Append or Commit on a transaction
// that has already been committed, since transactions are single-use.
var ErrAlreadyCommitted = errors.New("txn: already committed")

// Dispatcher is the subset of the dispatcher's API a transaction needs:
// submit a batch of commands to run atomically, and, on success, be told
// which queues to signal. Defined here (rather than depended on from
// internal/dispatcher) to keep txn import-free of the worker loop.
type Dispatcher[K types.Key[K]] interface {
	SubmitWrite(ctx context.Context, cmds []command.Command[K]) error
	SignalQueues(queues []string)
}

// Txn is a deferred, ordered buffer of commands (spec §4.6). Not safe for
// concurrent use by multiple goroutines; a transaction belongs to the
// caller that built it.
type Txn[K types.Key[K]] struct {
	dispatcher Dispatcher[K]
	cmds       []command.Command[K]
	queues     []string
	queueSeen  map[string]bool
	committed  bool
}

// New returns an empty transaction bound to dispatcher.
func New[K types.Key[K]](dispatcher Dispatcher[K]) *Txn[K] {
	return &Txn[K]{dispatcher: dispatcher, queueSeen: make(map[string]bool)}
}

// Append adds one command to the buffer. Order is preserved at commit.
func (t *Txn[K]) Append(cmd command.Command[K]) error {
	if t.committed {
		return ErrAlreadyCommitted
	}
	t.cmds = append(t.cmds, cmd)
	if q, ok := cmd.EnqueuedQueue(); ok && !t.queueSeen[q] {
		t.queueSeen[q] = true
		t.queues = append(t.queues, q)
	}
	return nil
}

// Commit submits the buffered commands as a single atomic batch to the
// dispatcher. Only on success does it signal one waiter per distinct
// queue enqueued during the transaction's lifetime (spec §4.6). A
// transaction may be committed at most once.
func (t *Txn[K]) Commit(ctx context.Context) error {
	if t.committed {
		return ErrAlreadyCommitted
	}
	t.committed = true
	if len(t.cmds) == 0 {
		return nil
	}
	if err := t.dispatcher.SubmitWrite(ctx, t.cmds); err != nil {
		return err
	}
	if len(t.queues) > 0 {
		t.dispatcher.SignalQueues(t.queues)
	}
	return nil
}
