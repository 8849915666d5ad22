package store

import (
	"testing"
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestStore(t *testing.T) (*Store[types.IntKey], *clock.Fake) {
	t.Helper()
	fc := clock.NewFake()
	return New[types.IntKey](Options{Clock: fc, MaxStateHistory: 10}), fc
}

// S3: list head semantics.
func TestListHeadSemantics(t *testing.T) {
	s, _ := newTestStore(t)
	s.ListAdd("L", "a")
	s.ListAdd("L", "b")
	s.ListAdd("L", "c")

	got := s.ListRange("L", 0, 1)
	want := []string{"c", "b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ListRange(0,1) = %v, want %v", got, want)
	}

	s.ListTrim("L", 0, 0)
	got = s.ListRange("L", 0, 10)
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("after trim(0,0), list = %v, want [c]", got)
	}
}

// P1: an absent entry is never left behind with a zero/empty value.
func TestCounterZeroDeletesEntry(t *testing.T) {
	s, _ := newTestStore(t)
	s.CounterIncrementBy("jobs:done", 5)
	if v, ok := s.CounterGet("jobs:done"); !ok || v != 5 {
		t.Fatalf("CounterGet = (%d,%v), want (5,true)", v, ok)
	}
	s.CounterIncrementBy("jobs:done", -5)
	if _, ok := s.CounterGet("jobs:done"); ok {
		t.Fatal("counter should be deleted once it reaches zero")
	}
}

// P2: expiration index membership agrees with ExpireAt.
func TestJobExpiryIndexAgreement(t *testing.T) {
	s, fc := newTestStore(t)
	job := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	s.JobCreate(job, nil)

	d := time.Hour
	now := s.Now()
	s.JobExpire(1, &now, &d)
	if job.ExpireAt == nil {
		t.Fatal("job should have an ExpireAt after JobExpire")
	}

	item, ok := s.jobExp.Min()
	if !ok || item.Key != 1 {
		t.Fatalf("jobExp index does not contain job 1: %v, %v", item, ok)
	}

	s.JobExpire(1, nil, nil) // persist
	if job.ExpireAt != nil {
		t.Fatal("JobExpire(nil,nil) should clear ExpireAt")
	}
	if _, ok := s.jobExp.Min(); ok {
		t.Fatal("jobExp index should be empty after persist")
	}
}

// P4: eviction removes exactly the entries with ExpireAt <= now.
func TestEvictExpiredEntries(t *testing.T) {
	s, fc := newTestStore(t)
	early := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	late := &types.Job[types.IntKey]{Key: 2, CreatedAt: fc.Now()}
	s.JobCreate(early, nil)
	s.JobCreate(late, nil)

	shortD, longD := time.Minute, time.Hour
	now := s.Now()
	s.JobExpire(1, &now, &shortD)
	s.JobExpire(2, &now, &longD)

	fc.Advance(2 * time.Minute)
	stats := s.EvictExpiredEntries(s.Now())
	if stats.Jobs != 1 {
		t.Fatalf("EvictExpiredEntries removed %d jobs, want 1", stats.Jobs)
	}
	if s.JobGet(1) != nil {
		t.Fatal("job 1 should have been evicted")
	}
	if s.JobGet(2) == nil {
		t.Fatal("job 2 should still be present")
	}
}

// S2: maxExpirationTime caps expiry requests except for counters.
func TestMaxExpirationTimeCap(t *testing.T) {
	cap := time.Hour
	fc := clock.NewFake()
	s := New[types.IntKey](Options{Clock: fc, MaxExpirationTime: &cap})

	job := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	s.JobCreate(job, nil)

	requested := 24 * time.Hour
	now := s.Now()
	s.JobExpire(1, &now, &requested)
	got := job.ExpireAt.Sub(now)
	if got != cap {
		t.Fatalf("job ExpireAt = now+%v, want capped at %v", got, cap)
	}

	s.CounterIncrementByWithExpiry("stats:s", 1, now, requested)
	v, ok := s.counters.Get(&counterContainer{Name: "stats:s"})
	if !ok {
		t.Fatal("counter should exist")
	}
	if v.ExpireAt.Sub(now) != requested {
		t.Fatalf("counter is immune to the cap: ExpireAt = now+%v, want now+%v", v.ExpireAt.Sub(now), requested)
	}
}

// P3: a job's current state agrees with exactly one state index.
func TestStateIndexAgreement(t *testing.T) {
	s, fc := newTestStore(t)
	job := &types.Job[types.IntKey]{Key: 1, CreatedAt: fc.Now()}
	s.JobCreate(job, nil)

	s.JobSetState(1, types.StateRecord{Name: "Enqueued", CreatedAt: fc.Now()})
	if s.StateCount("enqueued") != 1 {
		t.Fatalf("StateCount(enqueued) = %d, want 1", s.StateCount("enqueued"))
	}

	s.JobSetState(1, types.StateRecord{Name: "Processing", CreatedAt: fc.Now()})
	if s.StateCount("enqueued") != 0 {
		t.Fatal("job should have been removed from the old state index")
	}
	if s.StateCount("processing") != 1 {
		t.Fatal("job should be in exactly the new state's index")
	}
}

func TestQueueOrderingIsFIFO(t *testing.T) {
	s, _ := newTestStore(t)
	s.QueueEnqueue("q", types.IntKey(1))
	s.QueueEnqueue("q", types.IntKey(2))

	k, ok := s.QueuePop("q")
	if !ok || k != 1 {
		t.Fatalf("first pop = (%v,%v), want (1,true)", k, ok)
	}
	k, ok = s.QueuePop("q")
	if !ok || k != 2 {
		t.Fatalf("second pop = (%v,%v), want (2,true)", k, ok)
	}
}

// P5: a sorted set scans in ascending (score, value) order regardless of
// insertion order.
func TestSetScanAscendingOrder(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetAdd("ranked", "charlie", 3)
	s.SetAdd("ranked", "alice", 1)
	s.SetAdd("ranked", "bob", 2)

	members := s.SetScan("ranked")
	want := []string{"alice", "bob", "charlie"}
	if len(members) != len(want) {
		t.Fatalf("SetScan returned %d members, want %d", len(members), len(want))
	}
	for i, m := range members {
		if m.Value != want[i] {
			t.Fatalf("SetScan[%d] = %q, want %q", i, m.Value, want[i])
		}
	}
}

func TestSetFirstByScoreRange(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetAdd("ranked", "alice", 1)
	s.SetAdd("ranked", "bob", 2)
	s.SetAdd("ranked", "charlie", 3)

	v, ok := s.SetFirstByScoreRange("ranked", 2, 10)
	if !ok || v != "bob" {
		t.Fatalf("SetFirstByScoreRange(2,10) = (%q,%v), want (bob,true)", v, ok)
	}
	if _, ok := s.SetFirstByScoreRange("ranked", 100, 200); ok {
		t.Fatal("SetFirstByScoreRange outside every score should report not found")
	}
}

// SetAdd re-adding an existing value updates its score rather than
// duplicating the member.
func TestSetAddUpdatesExistingScore(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetAdd("ranked", "alice", 1)
	s.SetAdd("ranked", "alice", 5)

	members := s.SetScan("ranked")
	if len(members) != 1 || members[0].Score != 5 {
		t.Fatalf("SetScan = %+v, want a single member with score 5", members)
	}
}

func TestHashSetRangeAndRemove(t *testing.T) {
	s, _ := newTestStore(t)
	s.HashSetRange("h", []types.NameValue{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}})

	got := s.HashGet("h")
	if got["a"] != "1" || got["b"] != "2" {
		t.Fatalf("HashGet = %v, want a=1 b=2", got)
	}

	s.HashRemove("h")
	if s.HashGet("h") != nil {
		t.Fatal("hash should be gone after HashRemove")
	}
}

func TestServerDeleteInactive(t *testing.T) {
	s, fc := newTestStore(t)
	s.ServerAnnounce("server-a", types.ServerContext{}, fc.Now())
	s.ServerAnnounce("server-b", types.ServerContext{}, fc.Now())

	fc.Advance(time.Minute)
	s.ServerHeartbeat("server-b", fc.Now())

	fc.Advance(time.Minute)
	removed := s.ServerDeleteInactive(fc.Now(), 90*time.Second)
	if removed != 1 {
		t.Fatalf("ServerDeleteInactive removed %d, want 1", removed)
	}
	if s.ServerGet("server-a") != nil {
		t.Fatal("server-a should have been removed as stale")
	}
	if s.ServerGet("server-b") == nil {
		t.Fatal("server-b should still be present, its heartbeat was refreshed")
	}
}
