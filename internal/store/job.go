package store

import (
	"strings"
	"time"

	"github.com/google/btree"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// JobCreate inserts a new job. If expireIn is set, the expiry is scheduled
// from job.CreatedAt and is never subject to MaxExpirationTime; this
// covers the window between creation and the follow-up transaction that
// usually sets the job's first state (spec §4.2).
func (s *Store[K]) JobCreate(job *types.Job[K], expireIn *time.Duration) {
	s.jobs.ReplaceOrInsert(job)
	if expireIn != nil {
		at := job.CreatedAt.Add(*expireIn)
		job.ExpireAt = &at
		s.jobExp.ReplaceOrInsert(jobExpItem[K]{At: at, Key: job.Key})
	}
}

// JobGet returns the live job pointer, or nil if absent. Callers inside
// the dispatcher thread may mutate it directly; anything crossing to a
// caller must go through Job.Clone first.
func (s *Store[K]) JobGet(key K) *types.Job[K] {
	probe := &types.Job[K]{Key: key}
	job, ok := s.jobs.Get(probe)
	if !ok {
		return nil
	}
	return job
}

// JobSetParameter sets a single parameter on an existing job. No-op if the
// job is absent (idempotent-by-absence, spec §4.6).
func (s *Store[K]) JobSetParameter(key K, name, value string) {
	job := s.JobGet(key)
	if job == nil {
		return
	}
	if job.Parameters == nil {
		job.Parameters = make(map[string]string)
	}
	job.Parameters[name] = value
}

// JobAddState appends a state record to history without changing the job's
// current state or rewiring the state index.
func (s *Store[K]) JobAddState(key K, record types.StateRecord) {
	job := s.JobGet(key)
	if job == nil {
		return
	}
	s.appendHistory(job, record)
}

// JobSetState appends a state record to history and makes it the job's
// current state, rewiring the state index: the previous entry is removed
// before the new one is added (spec invariant 3).
func (s *Store[K]) JobSetState(key K, record types.StateRecord) {
	job := s.JobGet(key)
	if job == nil {
		return
	}
	s.removeFromStateIndex(job)
	job.CurrentState = &record
	s.insertIntoStateIndex(job)
	s.appendHistory(job, record)
}

func (s *Store[K]) appendHistory(job *types.Job[K], record types.StateRecord) {
	job.History = append(job.History, record)
	if s.maxHist > 0 && len(job.History) > s.maxHist {
		job.History = job.History[len(job.History)-s.maxHist:]
	}
}

func (s *Store[K]) removeFromStateIndex(job *types.Job[K]) {
	if job.CurrentState == nil {
		return
	}
	name := strings.ToLower(job.CurrentState.Name)
	idx, ok := s.stateIx[name]
	if !ok {
		return
	}
	idx.Delete(stateItem[K]{CreatedAt: job.CurrentState.CreatedAt, Key: job.Key})
	if idx.Len() == 0 {
		delete(s.stateIx, name)
	}
}

func (s *Store[K]) insertIntoStateIndex(job *types.Job[K]) {
	name := strings.ToLower(job.CurrentState.Name)
	idx, ok := s.stateIx[name]
	if !ok {
		idx = btree.NewG(btreeDegree, lessStateItem[K])
		s.stateIx[name] = idx
	}
	idx.ReplaceOrInsert(stateItem[K]{CreatedAt: job.CurrentState.CreatedAt, Key: job.Key})
}

// JobExpire applies an expiry request. If now and expireIn are both
// present, the duration, capped by MaxExpirationTime, is applied; a
// duration <= 0 deletes the job immediately. If either is
// absent, this is the "persist" operation: ExpireAt is cleared and the job
// is removed from the expiration index. Returns true if the job was
// deleted. No-op (returns false) if the job is absent.
func (s *Store[K]) JobExpire(key K, now *clock.MonotonicTime, expireIn *time.Duration) bool {
	job := s.JobGet(key)
	if job == nil {
		return false
	}
	if now == nil || expireIn == nil {
		s.clearJobExpiry(job)
		return false
	}
	d := s.clampExpiry(*expireIn, false)
	if d <= 0 {
		s.jobDelete(job.Key)
		return true
	}
	at := now.Add(d)
	s.setJobExpiry(job, at)
	return false
}

func (s *Store[K]) setJobExpiry(job *types.Job[K], at clock.MonotonicTime) {
	if job.ExpireAt != nil {
		s.jobExp.Delete(jobExpItem[K]{At: *job.ExpireAt, Key: job.Key})
	}
	expireAt := at
	job.ExpireAt = &expireAt
	s.jobExp.ReplaceOrInsert(jobExpItem[K]{At: at, Key: job.Key})
}

func (s *Store[K]) clearJobExpiry(job *types.Job[K]) {
	if job.ExpireAt == nil {
		return
	}
	s.jobExp.Delete(jobExpItem[K]{At: *job.ExpireAt, Key: job.Key})
	job.ExpireAt = nil
}

// JobDelete removes a job outright: from the primary map, the expiration
// index (if present) and the state index (if present). No-op if absent.
func (s *Store[K]) JobDelete(key K) {
	s.jobDelete(key)
}

func (s *Store[K]) jobDelete(key K) {
	job := s.JobGet(key)
	if job == nil {
		return
	}
	s.removeFromStateIndex(job)
	if job.ExpireAt != nil {
		s.jobExp.Delete(jobExpItem[K]{At: *job.ExpireAt, Key: key})
	}
	s.jobs.Delete(&types.Job[K]{Key: key})
}

// JobCount returns the total number of live jobs.
func (s *Store[K]) JobCount() int {
	return s.jobs.Len()
}

// StateCount returns the number of jobs currently in the named state
// (case-insensitive, spec §3).
func (s *Store[K]) StateCount(stateName string) int {
	idx, ok := s.stateIx[strings.ToLower(stateName)]
	if !ok {
		return 0
	}
	return idx.Len()
}

// StateRange returns up to count job keys in the named state, oldest-first,
// as a copy (spec §4.8 "Read queries return copies").
func (s *Store[K]) StateRange(stateName string, offset, count int) []K {
	idx, ok := s.stateIx[strings.ToLower(stateName)]
	if !ok {
		return nil
	}
	var out []K
	skipped := 0
	idx.Ascend(func(item stateItem[K]) bool {
		if skipped < offset {
			skipped++
			return true
		}
		if len(out) >= count {
			return false
		}
		out = append(out, item.Key)
		return true
	})
	return out
}
