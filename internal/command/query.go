package command

import (
	"github.com/ChuLiYu/jobcore/internal/store"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// Query is a read-only step executed on the dispatcher's goroutine (the
// "sequential reads" strategy of spec §4.5) or inline under the
// concurrent-read latch. Results are always copies (spec §4.8).
type Query[K types.Key[K], T any] func(s *store.Store[K]) T

func JobGetQuery[K types.Key[K]](key K) Query[K, *types.Job[K]] {
	return func(s *store.Store[K]) *types.Job[K] {
		job := s.JobGet(key)
		if job == nil {
			return nil
		}
		return job.Clone()
	}
}

func JobCountQuery[K types.Key[K]]() Query[K, int] {
	return func(s *store.Store[K]) int { return s.JobCount() }
}

func StateCountQuery[K types.Key[K]](name string) Query[K, int] {
	return func(s *store.Store[K]) int { return s.StateCount(name) }
}

func StateRangeQuery[K types.Key[K]](name string, offset, count int) Query[K, []K] {
	return func(s *store.Store[K]) []K { return s.StateRange(name, offset, count) }
}

func QueueCountQuery[K types.Key[K]](name string) Query[K, int] {
	return func(s *store.Store[K]) int { return s.QueueCount(name) }
}

func QueuePeekQuery[K types.Key[K]](name string, offset, count int) Query[K, []K] {
	return func(s *store.Store[K]) []K { return s.QueuePeek(name, offset, count) }
}

func CounterGetQuery[K types.Key[K]](name string) Query[K, int64] {
	return func(s *store.Store[K]) int64 {
		v, _ := s.CounterGet(name)
		return v
	}
}

func HashGetQuery[K types.Key[K]](name string) Query[K, map[string]string] {
	return func(s *store.Store[K]) map[string]string { return s.HashGet(name) }
}

func ListRangeQuery[K types.Key[K]](name string, from, to int) Query[K, []string] {
	return func(s *store.Store[K]) []string { return s.ListRange(name, from, to) }
}

func SetScanQuery[K types.Key[K]](name string) Query[K, []types.SortedSetMember] {
	return func(s *store.Store[K]) []types.SortedSetMember { return s.SetScan(name) }
}

func SetFirstByScoreRangeQuery[K types.Key[K]](name string, min, max float64) Query[K, types.SortedSetMember] {
	return func(s *store.Store[K]) types.SortedSetMember {
		v, ok := s.SetFirstByScoreRange(name, min, max)
		if !ok {
			return types.SortedSetMember{}
		}
		return types.SortedSetMember{Value: v}
	}
}

func ServerGetQuery[K types.Key[K]](id string) Query[K, *types.ServerInfo] {
	return func(s *store.Store[K]) *types.ServerInfo { return s.ServerGet(id) }
}

func ServerCountQuery[K types.Key[K]]() Query[K, int] {
	return func(s *store.Store[K]) int { return s.ServerCount() }
}
