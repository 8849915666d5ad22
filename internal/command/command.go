// Package command implements the typed command objects and read queries
// (C8) the dispatcher executes against the state store from its own
// goroutine. Every command is idempotent at the "entry absent" boundary:
// operating on a missing entity completes successfully with no effect,
// so a transaction racing eviction never fails (spec §4.6).
package command

import (
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/internal/store"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// Command is one mutating step of a transaction. Execute runs on the
// dispatcher's worker goroutine with exclusive access to s.
type Command[K types.Key[K]] interface {
	Execute(s *store.Store[K], now clock.MonotonicTime) error
	// Kind names the command for logging and metrics.
	Kind() string
	// EnqueuedQueue reports the queue name this command enqueued into, if
	// any, so the transaction can signal one waiter per distinct queue
	// after a successful commit.
	EnqueuedQueue() (string, bool)
}

// base supplies the no-op EnqueuedQueue for commands that never enqueue.
type base struct{}

func (base) EnqueuedQueue() (string, bool) { return "", false }

// --- Job commands ---

type JobCreate[K types.Key[K]] struct {
	base
	Job      *types.Job[K]
	ExpireIn *time.Duration
}

func (c *JobCreate[K]) Kind() string { return "job.create" }
func (c *JobCreate[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.JobCreate(c.Job, c.ExpireIn)
	return nil
}

type JobSetParameter[K types.Key[K]] struct {
	base
	Key   K
	Name  string
	Value string
}

func (c *JobSetParameter[K]) Kind() string { return "job.setParameter" }
func (c *JobSetParameter[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.JobSetParameter(c.Key, c.Name, c.Value)
	return nil
}

type JobAddState[K types.Key[K]] struct {
	base
	Key    K
	Record types.StateRecord
}

func (c *JobAddState[K]) Kind() string { return "job.addState" }
func (c *JobAddState[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	c.Record.CreatedAt = now
	s.JobAddState(c.Key, c.Record)
	return nil
}

type JobSetState[K types.Key[K]] struct {
	base
	Key    K
	Record types.StateRecord
}

func (c *JobSetState[K]) Kind() string { return "job.setState" }
func (c *JobSetState[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	c.Record.CreatedAt = now
	s.JobSetState(c.Key, c.Record)
	return nil
}

type JobExpire[K types.Key[K]] struct {
	base
	Key      K
	ExpireIn *time.Duration // nil together with Persist=true clears the expiry
	Persist  bool
}

func (c *JobExpire[K]) Kind() string { return "job.expire" }
func (c *JobExpire[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	if c.Persist {
		s.JobExpire(c.Key, nil, nil)
		return nil
	}
	s.JobExpire(c.Key, &now, c.ExpireIn)
	return nil
}

// --- Queue commands ---

type QueueEnqueue[K types.Key[K]] struct {
	Queue string
	Key   K
}

func (c *QueueEnqueue[K]) Kind() string { return "queue.enqueue" }
func (c *QueueEnqueue[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.QueueEnqueue(c.Queue, c.Key)
	return nil
}
func (c *QueueEnqueue[K]) EnqueuedQueue() (string, bool) { return c.Queue, true }

// --- Counter commands ---

type CounterIncrementBy[K types.Key[K]] struct {
	base
	Name  string
	Delta int64
}

func (c *CounterIncrementBy[K]) Kind() string { return "counter.incrementBy" }
func (c *CounterIncrementBy[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.CounterIncrementBy(c.Name, c.Delta)
	return nil
}

type CounterIncrementByWithExpiry[K types.Key[K]] struct {
	base
	Name     string
	Delta    int64
	ExpireIn time.Duration
}

func (c *CounterIncrementByWithExpiry[K]) Kind() string { return "counter.incrementByWithExpiry" }
func (c *CounterIncrementByWithExpiry[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.CounterIncrementByWithExpiry(c.Name, c.Delta, now, c.ExpireIn)
	return nil
}

// --- Sorted set commands ---

type SetAdd[K types.Key[K]] struct {
	base
	Name  string
	Value string
	Score float64
}

func (c *SetAdd[K]) Kind() string { return "set.add" }
func (c *SetAdd[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.SetAdd(c.Name, c.Value, c.Score)
	return nil
}

type SetAddRange[K types.Key[K]] struct {
	base
	Name    string
	Members []types.SortedSetMember
}

func (c *SetAddRange[K]) Kind() string { return "set.addRange" }
func (c *SetAddRange[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.SetAddRange(c.Name, c.Members)
	return nil
}

type SetRemove[K types.Key[K]] struct {
	base
	Name  string
	Value string
}

func (c *SetRemove[K]) Kind() string { return "set.remove" }
func (c *SetRemove[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.SetRemove(c.Name, c.Value)
	return nil
}

type SetDelete[K types.Key[K]] struct {
	base
	Name string
}

func (c *SetDelete[K]) Kind() string { return "set.delete" }
func (c *SetDelete[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.SetDelete(c.Name)
	return nil
}

type SetExpire[K types.Key[K]] struct {
	base
	Name     string
	ExpireIn *time.Duration
	Persist  bool
}

func (c *SetExpire[K]) Kind() string { return "set.expire" }
func (c *SetExpire[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	if c.Persist {
		s.SetExpire(c.Name, nil, nil)
		return nil
	}
	s.SetExpire(c.Name, &now, c.ExpireIn)
	return nil
}

// --- List commands ---

type ListInsert[K types.Key[K]] struct {
	base
	Name  string
	Value string
}

func (c *ListInsert[K]) Kind() string { return "list.insert" }
func (c *ListInsert[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.ListAdd(c.Name, c.Value)
	return nil
}

type ListRemoveAll[K types.Key[K]] struct {
	base
	Name  string
	Value string
}

func (c *ListRemoveAll[K]) Kind() string { return "list.removeAll" }
func (c *ListRemoveAll[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.ListRemoveAll(c.Name, c.Value)
	return nil
}

type ListTrim[K types.Key[K]] struct {
	base
	Name     string
	From, To int
}

func (c *ListTrim[K]) Kind() string { return "list.trim" }
func (c *ListTrim[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.ListTrim(c.Name, c.From, c.To)
	return nil
}

type ListExpire[K types.Key[K]] struct {
	base
	Name     string
	ExpireIn *time.Duration
	Persist  bool
}

func (c *ListExpire[K]) Kind() string { return "list.expire" }
func (c *ListExpire[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	if c.Persist {
		s.ListExpire(c.Name, nil, nil)
		return nil
	}
	s.ListExpire(c.Name, &now, c.ExpireIn)
	return nil
}

// --- Hash commands ---

type HashSetRange[K types.Key[K]] struct {
	base
	Name   string
	Fields []types.NameValue
}

func (c *HashSetRange[K]) Kind() string { return "hash.setRange" }
func (c *HashSetRange[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.HashSetRange(c.Name, c.Fields)
	return nil
}

type HashRemove[K types.Key[K]] struct {
	base
	Name string
}

func (c *HashRemove[K]) Kind() string { return "hash.remove" }
func (c *HashRemove[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.HashRemove(c.Name)
	return nil
}

type HashExpire[K types.Key[K]] struct {
	base
	Name     string
	ExpireIn *time.Duration
	Persist  bool
}

func (c *HashExpire[K]) Kind() string { return "hash.expire" }
func (c *HashExpire[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	if c.Persist {
		s.HashExpire(c.Name, nil, nil)
		return nil
	}
	s.HashExpire(c.Name, &now, c.ExpireIn)
	return nil
}

// --- Server commands ---

type ServerAnnounce[K types.Key[K]] struct {
	base
	ID      string
	Context types.ServerContext
}

func (c *ServerAnnounce[K]) Kind() string { return "server.announce" }
func (c *ServerAnnounce[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.ServerAnnounce(c.ID, c.Context, now)
	return nil
}

type ServerHeartbeat[K types.Key[K]] struct {
	base
	ID string
}

func (c *ServerHeartbeat[K]) Kind() string { return "server.heartbeat" }
func (c *ServerHeartbeat[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.ServerHeartbeat(c.ID, now)
	return nil
}

type ServerDelete[K types.Key[K]] struct {
	base
	ID string
}

func (c *ServerDelete[K]) Kind() string { return "server.delete" }
func (c *ServerDelete[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.ServerDelete(c.ID)
	return nil
}

type ServerDeleteInactive[K types.Key[K]] struct {
	base
	Timeout time.Duration
}

func (c *ServerDeleteInactive[K]) Kind() string { return "server.deleteInactive" }
func (c *ServerDeleteInactive[K]) Execute(s *store.Store[K], now clock.MonotonicTime) error {
	s.ServerDeleteInactive(now, c.Timeout)
	return nil
}
