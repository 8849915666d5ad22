package command

import (
	"testing"
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/internal/store"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

func newTestStore(t *testing.T) (*store.Store[types.IntKey], *clock.Fake) {
	t.Helper()
	fc := clock.NewFake()
	return store.New[types.IntKey](store.Options{Clock: fc, MaxStateHistory: 10}), fc
}

func TestJobCreateCommand(t *testing.T) {
	s, fc := newTestStore(t)
	job := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	cmd := &JobCreate[types.IntKey]{Job: job}
	if err := cmd.Execute(s, fc.Now()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if s.JobGet(1) == nil {
		t.Fatal("job should exist after JobCreate")
	}
}

// JobSetState must stamp the record's CreatedAt from the command's `now`
// argument, not leave it at its zero value, since the state index keys
// entries by CreatedAt and two states created at the zero time would
// collide.
func TestJobSetStateStampsCreatedAt(t *testing.T) {
	s, fc := newTestStore(t)
	job := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	s.JobCreate(job, nil)

	fc.Advance(time.Minute)
	now := fc.Now()
	cmd := &JobSetState[types.IntKey]{Key: 1, Record: types.StateRecord{Name: "Enqueued"}}
	if err := cmd.Execute(s, now); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := s.JobGet(1)
	if got.CurrentState == nil || got.CurrentState.CreatedAt.Compare(now) != 0 {
		t.Fatalf("CurrentState.CreatedAt = %v, want %v", got.CurrentState, now)
	}
	if s.StateCount("enqueued") != 1 {
		t.Fatalf("StateCount(enqueued) = %d, want 1", s.StateCount("enqueued"))
	}
}

func TestJobAddStateStampsCreatedAt(t *testing.T) {
	s, fc := newTestStore(t)
	job := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	s.JobCreate(job, nil)

	now := fc.Now()
	cmd := &JobAddState[types.IntKey]{Key: 1, Record: types.StateRecord{Name: "Retrying"}}
	if err := cmd.Execute(s, now); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := s.JobGet(1)
	if len(got.History) != 1 || got.History[0].CreatedAt.Compare(now) != 0 {
		t.Fatalf("History = %+v, want one entry stamped at %v", got.History, now)
	}
}

func TestJobExpireCommandPersistClearsExpiry(t *testing.T) {
	s, fc := newTestStore(t)
	job := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	s.JobCreate(job, nil)

	d := time.Hour
	setCmd := &JobExpire[types.IntKey]{Key: 1, ExpireIn: &d}
	if err := setCmd.Execute(s, fc.Now()); err != nil {
		t.Fatalf("Execute(set): %v", err)
	}
	if s.JobGet(1).ExpireAt == nil {
		t.Fatal("job should carry an ExpireAt after JobExpire")
	}

	persistCmd := &JobExpire[types.IntKey]{Key: 1, Persist: true}
	if err := persistCmd.Execute(s, fc.Now()); err != nil {
		t.Fatalf("Execute(persist): %v", err)
	}
	if s.JobGet(1).ExpireAt != nil {
		t.Fatal("job should no longer carry an ExpireAt after a persist command")
	}
}

func TestQueueEnqueueCommandReportsItsQueue(t *testing.T) {
	cmd := &QueueEnqueue[types.IntKey]{Queue: "q", Key: 1}
	name, ok := cmd.EnqueuedQueue()
	if !ok || name != "q" {
		t.Fatalf("EnqueuedQueue = (%q,%v), want (q,true)", name, ok)
	}
}

func TestCounterIncrementByCommand(t *testing.T) {
	s, fc := newTestStore(t)
	cmd := &CounterIncrementBy[types.IntKey]{Name: "n", Delta: 3}
	if err := cmd.Execute(s, fc.Now()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	v, ok := s.CounterGet("n")
	if !ok || v != 3 {
		t.Fatalf("CounterGet = (%d,%v), want (3,true)", v, ok)
	}
}

func TestHashAndListCommandsHaveNoOpBaseEnqueuedQueue(t *testing.T) {
	cmds := []Command[types.IntKey]{
		&HashSetRange[types.IntKey]{Name: "h"},
		&ListInsert[types.IntKey]{Name: "l", Value: "v"},
		&SetAdd[types.IntKey]{Name: "s", Value: "v", Score: 1},
	}
	for _, cmd := range cmds {
		if name, ok := cmd.EnqueuedQueue(); ok || name != "" {
			t.Fatalf("%s: EnqueuedQueue = (%q,%v), want (\"\",false)", cmd.Kind(), name, ok)
		}
	}
}
