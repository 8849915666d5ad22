package store

import (
	"time"

	"github.com/google/btree"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// setContainer is a named sorted set, dual-indexed by (score, value) for
// ordered scans and by value alone for O(log n) presence/remove (spec §3).
// Total order is score ascending, ties broken by value under the
// configured StringComparer.
type setContainer struct {
	Name     string
	byScore  *btree.BTreeG[types.SortedSetMember]
	byValue  *btree.BTreeG[types.SortedSetMember]
	ExpireAt *clock.MonotonicTime
}

func (s *Store[K]) setGetOrAdd(name string) *setContainer {
	probe := &setContainer{Name: name}
	c, ok := s.sets.Get(probe)
	if !ok {
		cmp := s.comparer
		c = &setContainer{
			Name: name,
			byScore: btree.NewG(btreeDegree, func(a, b types.SortedSetMember) bool {
				if a.Score != b.Score {
					return a.Score < b.Score
				}
				return cmp(a.Value, b.Value) < 0
			}),
			byValue: btree.NewG(btreeDegree, func(a, b types.SortedSetMember) bool {
				return cmp(a.Value, b.Value) < 0
			}),
		}
		s.sets.ReplaceOrInsert(c)
	}
	return c
}

// SetAdd upserts one (value, score) member of the named sorted set.
func (s *Store[K]) SetAdd(name, value string, score float64) {
	c := s.setGetOrAdd(name)
	s.setUpsert(c, value, score)
}

// SetAddRange upserts many members at once.
func (s *Store[K]) SetAddRange(name string, members []types.SortedSetMember) {
	c := s.setGetOrAdd(name)
	for _, m := range members {
		s.setUpsert(c, m.Value, m.Score)
	}
}

func (s *Store[K]) setUpsert(c *setContainer, value string, score float64) {
	if old, ok := c.byValue.Get(types.SortedSetMember{Value: value}); ok {
		c.byScore.Delete(old)
	}
	m := types.SortedSetMember{Value: value, Score: score}
	c.byValue.ReplaceOrInsert(m)
	c.byScore.ReplaceOrInsert(m)
}

// SetRemove removes one member; deletes the set entirely if it becomes
// empty.
func (s *Store[K]) SetRemove(name, value string) {
	probe := &setContainer{Name: name}
	c, ok := s.sets.Get(probe)
	if !ok {
		return
	}
	if old, found := c.byValue.Get(types.SortedSetMember{Value: value}); found {
		c.byValue.Delete(old)
		c.byScore.Delete(old)
	}
	if c.byValue.Len() == 0 {
		s.setDelete(c)
	}
}

// SetDelete removes the entire named sorted set.
func (s *Store[K]) SetDelete(name string) {
	probe := &setContainer{Name: name}
	c, ok := s.sets.Get(probe)
	if !ok {
		return
	}
	s.setDelete(c)
}

func (s *Store[K]) setDelete(c *setContainer) {
	if c.ExpireAt != nil {
		s.setExp.Delete(nameExpItem{At: *c.ExpireAt, Name: c.Name})
	}
	s.sets.Delete(c)
}

// SetScan returns every member in ascending (score, value) order, as a
// copy.
func (s *Store[K]) SetScan(name string) []types.SortedSetMember {
	probe := &setContainer{Name: name}
	c, ok := s.sets.Get(probe)
	if !ok {
		return nil
	}
	out := make([]types.SortedSetMember, 0, c.byScore.Len())
	c.byScore.Ascend(func(m types.SortedSetMember) bool {
		out = append(out, m)
		return true
	})
	return out
}

// SetFirstByScoreRange returns the value with the lowest score in
// [min, max], and whether one was found.
func (s *Store[K]) SetFirstByScoreRange(name string, min, max float64) (string, bool) {
	probe := &setContainer{Name: name}
	c, ok := s.sets.Get(probe)
	if !ok {
		return "", false
	}
	var result string
	found := false
	c.byScore.AscendGreaterOrEqual(types.SortedSetMember{Score: min}, func(m types.SortedSetMember) bool {
		if m.Score > max {
			return false
		}
		result, found = m.Value, true
		return false
	})
	return result, found
}

// SetExpire applies an expiry request to the named sorted set, same
// semantics as HashExpire. Returns true if the set was deleted.
func (s *Store[K]) SetExpire(name string, now *clock.MonotonicTime, expireIn *time.Duration) bool {
	probe := &setContainer{Name: name}
	c, ok := s.sets.Get(probe)
	if !ok {
		return false
	}
	if now == nil || expireIn == nil {
		s.clearSetExpiry(c)
		return false
	}
	d := s.clampExpiry(*expireIn, false)
	if d <= 0 {
		s.setDelete(c)
		return true
	}
	at := now.Add(d)
	s.setSetExpiry(c, at)
	return false
}

func (s *Store[K]) setSetExpiry(c *setContainer, at clock.MonotonicTime) {
	if c.ExpireAt != nil {
		s.setExp.Delete(nameExpItem{At: *c.ExpireAt, Name: c.Name})
	}
	expireAt := at
	c.ExpireAt = &expireAt
	s.setExp.ReplaceOrInsert(nameExpItem{At: at, Name: c.Name})
}

func (s *Store[K]) clearSetExpiry(c *setContainer) {
	if c.ExpireAt == nil {
		return
	}
	s.setExp.Delete(nameExpItem{At: *c.ExpireAt, Name: c.Name})
	c.ExpireAt = nil
}
