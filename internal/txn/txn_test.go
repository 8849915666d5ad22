package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/ChuLiYu/jobcore/internal/command"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

type fakeDispatcher struct {
	submitted [][]command.Command[types.IntKey]
	signaled  [][]string
	err       error
}

func (f *fakeDispatcher) SubmitWrite(ctx context.Context, cmds []command.Command[types.IntKey]) error {
	f.submitted = append(f.submitted, cmds)
	return f.err
}

func (f *fakeDispatcher) SignalQueues(queues []string) {
	f.signaled = append(f.signaled, queues)
}

func TestCommitSubmitsAndSignalsDistinctQueues(t *testing.T) {
	d := &fakeDispatcher{}
	tx := New[types.IntKey](d)

	if err := tx.Append(&command.QueueEnqueue[types.IntKey]{Queue: "q1", Key: 1}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := tx.Append(&command.QueueEnqueue[types.IntKey]{Queue: "q1", Key: 2}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := tx.Append(&command.QueueEnqueue[types.IntKey]{Queue: "q2", Key: 3}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(d.submitted) != 1 || len(d.submitted[0]) != 3 {
		t.Fatalf("submitted = %v, want one batch of 3 commands", d.submitted)
	}
	if len(d.signaled) != 1 || len(d.signaled[0]) != 2 {
		t.Fatalf("signaled = %v, want one call signaling 2 distinct queues", d.signaled)
	}
}

func TestCommitIsSingleUse(t *testing.T) {
	d := &fakeDispatcher{}
	tx := New[types.IntKey](d)
	tx.Append(&command.CounterIncrementBy[types.IntKey]{Name: "x", Delta: 1})

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	if err := tx.Commit(context.Background()); !errors.Is(err, ErrAlreadyCommitted) {
		t.Fatalf("second Commit = %v, want ErrAlreadyCommitted", err)
	}
	if err := tx.Append(&command.CounterIncrementBy[types.IntKey]{Name: "y", Delta: 1}); !errors.Is(err, ErrAlreadyCommitted) {
		t.Fatalf("Append after commit = %v, want ErrAlreadyCommitted", err)
	}
}

func TestFailedSubmitDoesNotSignalQueues(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("boom")}
	tx := New[types.IntKey](d)
	tx.Append(&command.QueueEnqueue[types.IntKey]{Queue: "q1", Key: 1})

	if err := tx.Commit(context.Background()); err == nil {
		t.Fatal("expected Commit to propagate the dispatcher error")
	}
	if len(d.signaled) != 0 {
		t.Fatalf("signaled = %v, want no signals on a failed commit", d.signaled)
	}
}

func TestEmptyCommitIsNoop(t *testing.T) {
	d := &fakeDispatcher{}
	tx := New[types.IntKey](d)
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(d.submitted) != 0 {
		t.Fatal("an empty transaction should never reach SubmitWrite")
	}
}
