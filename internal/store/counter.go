package store

import (
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
)

// counterContainer is a named signed 64-bit counter, created on first
// increment and destroyed the instant its value returns to zero (spec §3).
// Counters are never subject to MaxExpirationTime (statistics retention).
type counterContainer struct {
	Name     string
	Value    int64
	ExpireAt *clock.MonotonicTime
}

func (s *Store[K]) counterGetOrAdd(name string) *counterContainer {
	probe := &counterContainer{Name: name}
	c, ok := s.counters.Get(probe)
	if !ok {
		c = &counterContainer{Name: name}
		s.counters.ReplaceOrInsert(c)
	}
	return c
}

// CounterIncrementBy adjusts the named counter by delta, creating it if
// absent. If the resulting value is zero the counter is deleted, even if
// it carried an ExpireAt (design note: delete wins over persist).
func (s *Store[K]) CounterIncrementBy(name string, delta int64) int64 {
	c := s.counterGetOrAdd(name)
	c.Value += delta
	if c.Value == 0 {
		s.counterDelete(c)
		return 0
	}
	return c.Value
}

// CounterIncrementByWithExpiry adjusts the counter and, unless the result
// is zero (counter deleted), (re)schedules its expiry. Counters are immune
// to MaxExpirationTime.
func (s *Store[K]) CounterIncrementByWithExpiry(name string, delta int64, now clock.MonotonicTime, expireIn time.Duration) int64 {
	c := s.counterGetOrAdd(name)
	c.Value += delta
	if c.Value == 0 {
		s.counterDelete(c)
		return 0
	}
	at := now.Add(expireIn)
	s.setCounterExpiry(c, at)
	return c.Value
}

// CounterGet returns the current value and whether the counter exists.
func (s *Store[K]) CounterGet(name string) (int64, bool) {
	probe := &counterContainer{Name: name}
	c, ok := s.counters.Get(probe)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

func (s *Store[K]) counterDelete(c *counterContainer) {
	if c.ExpireAt != nil {
		s.counterExp.Delete(nameExpItem{At: *c.ExpireAt, Name: c.Name})
	}
	s.counters.Delete(c)
}

func (s *Store[K]) setCounterExpiry(c *counterContainer, at clock.MonotonicTime) {
	if c.ExpireAt != nil {
		s.counterExp.Delete(nameExpItem{At: *c.ExpireAt, Name: c.Name})
	}
	expireAt := at
	c.ExpireAt = &expireAt
	s.counterExp.ReplaceOrInsert(nameExpItem{At: at, Name: c.Name})
}
