package store

import (
	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// jobExpItem is one entry of the job expiration index: ordered by
// (ExpireAt, job key) so eviction always removes the soonest-expiring
// entries first (spec §3 "Expiration index").
type jobExpItem[K types.Key[K]] struct {
	At  clock.MonotonicTime
	Key K
}

func lessJobExpItem[K types.Key[K]](a, b jobExpItem[K]) bool {
	if c := a.At.Compare(b.At); c != 0 {
		return c < 0
	}
	return a.Key.Compare(b.Key) < 0
}

// nameExpItem is the equivalent expiration-index entry for the
// string-keyed containers (hash/list/set/counter).
type nameExpItem struct {
	At   clock.MonotonicTime
	Name string
}

func lessNameExpItem(cmp types.StringComparer) func(a, b nameExpItem) bool {
	return func(a, b nameExpItem) bool {
		if c := a.At.Compare(b.At); c != 0 {
			return c < 0
		}
		return cmp(a.Name, b.Name) < 0
	}
}

// stateItem is one entry of a per-state-name index, ordered by
// (state.CreatedAt, job key) so oldest-first/newest-first pagination is a
// plain forward or backward btree scan (spec §3 "State index").
type stateItem[K types.Key[K]] struct {
	CreatedAt clock.MonotonicTime
	Key       K
}

func lessStateItem[K types.Key[K]](a, b stateItem[K]) bool {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c < 0
	}
	return a.Key.Compare(b.Key) < 0
}
