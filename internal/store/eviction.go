package store

import "github.com/ChuLiYu/jobcore/internal/clock"

// EvictionStats counts how many entries of each kind a single
// EvictExpiredEntries pass removed, for the dispatcher's periodic log line
// and the metrics collector.
type EvictionStats struct {
	Jobs     int
	Hashes   int
	Lists    int
	Sets     int
	Counters int
}

// Total returns the sum across all kinds.
func (e EvictionStats) Total() int {
	return e.Jobs + e.Hashes + e.Lists + e.Sets + e.Counters
}

// EvictExpiredEntries removes every entry, across all expirable kinds,
// whose ExpireAt is <= now (spec §4.2, property P4). It is called only
// from the dispatcher thread, on the fixed eviction interval.
func (s *Store[K]) EvictExpiredEntries(now clock.MonotonicTime) EvictionStats {
	var stats EvictionStats

	for {
		item, ok := s.jobExp.Min()
		if !ok || item.At.After(now) {
			break
		}
		s.jobDelete(item.Key)
		stats.Jobs++
	}

	for {
		item, ok := s.hashExp.Min()
		if !ok || item.At.After(now) {
			break
		}
		s.HashRemove(item.Name)
		stats.Hashes++
	}

	for {
		item, ok := s.listExp.Min()
		if !ok || item.At.After(now) {
			break
		}
		probe := &listContainer{Name: item.Name}
		if l, found := s.lists.Get(probe); found {
			s.listDelete(l)
		}
		stats.Lists++
	}

	for {
		item, ok := s.setExp.Min()
		if !ok || item.At.After(now) {
			break
		}
		s.SetDelete(item.Name)
		stats.Sets++
	}

	for {
		item, ok := s.counterExp.Min()
		if !ok || item.At.After(now) {
			break
		}
		probe := &counterContainer{Name: item.Name}
		if c, found := s.counters.Get(probe); found {
			s.counterDelete(c)
		}
		stats.Counters++
	}

	return stats
}
