package store

import (
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
)

// listContainer is a named ordered sequence of strings. Internally items
// are appended in insertion order (oldest first); spec §4.2 requires the
// *user-visible* index 0 to be the most recently added element, so every
// public accessor below translates user-visible indices to/from the
// underlying slice (scenario S3).
type listContainer struct {
	Name     string
	Items    []string // oldest first
	ExpireAt *clock.MonotonicTime
}

func (s *Store[K]) listGetOrAdd(name string) *listContainer {
	probe := &listContainer{Name: name}
	l, ok := s.lists.Get(probe)
	if !ok {
		l = &listContainer{Name: name}
		s.lists.ReplaceOrInsert(l)
	}
	return l
}

// ListAdd appends a value; it becomes the new user-visible index 0.
func (s *Store[K]) ListAdd(name, value string) {
	l := s.listGetOrAdd(name)
	l.Items = append(l.Items, value)
}

// userToUnderlying converts a user-visible index (0 = newest) to the
// underlying slice index, for a list of the given length.
func userToUnderlying(length, userIndex int) int {
	return length - 1 - userIndex
}

// ListRange returns the values with user-visible index in [from, to]
// (inclusive), newest first, as a copy.
func (s *Store[K]) ListRange(name string, from, to int) []string {
	probe := &listContainer{Name: name}
	l, ok := s.lists.Get(probe)
	if !ok {
		return nil
	}
	n := len(l.Items)
	if n == 0 {
		return nil
	}
	if from < 0 {
		from = 0
	}
	if to > n-1 {
		to = n - 1
	}
	if from > to {
		return nil
	}
	out := make([]string, 0, to-from+1)
	for userIdx := from; userIdx <= to; userIdx++ {
		out = append(out, l.Items[userToUnderlying(n, userIdx)])
	}
	return out
}

// ListRemoveAll removes every occurrence of value, preserving relative
// order of the remaining elements. Deletes the list if it becomes empty.
func (s *Store[K]) ListRemoveAll(name, value string) {
	probe := &listContainer{Name: name}
	l, ok := s.lists.Get(probe)
	if !ok {
		return
	}
	kept := l.Items[:0]
	for _, v := range l.Items {
		if v != value {
			kept = append(kept, v)
		}
	}
	l.Items = kept
	if len(l.Items) == 0 {
		s.listDelete(l)
	}
}

// ListTrim keeps only the elements whose user-visible index lies in
// [from, to]; deletes the list if the result is empty.
func (s *Store[K]) ListTrim(name string, from, to int) {
	probe := &listContainer{Name: name}
	l, ok := s.lists.Get(probe)
	if !ok {
		return
	}
	n := len(l.Items)
	if from < 0 {
		from = 0
	}
	if to > n-1 {
		to = n - 1
	}
	if from > to || n == 0 {
		l.Items = nil
		s.listDelete(l)
		return
	}
	// User-visible [from, to] maps to underlying [n-1-to, n-1-from].
	lo, hi := userToUnderlying(n, to), userToUnderlying(n, from)
	l.Items = append([]string(nil), l.Items[lo:hi+1]...)
	if len(l.Items) == 0 {
		s.listDelete(l)
	}
}

func (s *Store[K]) listDelete(l *listContainer) {
	if l.ExpireAt != nil {
		s.listExp.Delete(nameExpItem{At: *l.ExpireAt, Name: l.Name})
	}
	s.lists.Delete(l)
}

// ListExpire applies an expiry request to the named list, same semantics
// as HashExpire. Returns true if the list was deleted.
func (s *Store[K]) ListExpire(name string, now *clock.MonotonicTime, expireIn *time.Duration) bool {
	probe := &listContainer{Name: name}
	l, ok := s.lists.Get(probe)
	if !ok {
		return false
	}
	if now == nil || expireIn == nil {
		s.clearListExpiry(l)
		return false
	}
	d := s.clampExpiry(*expireIn, false)
	if d <= 0 {
		s.listDelete(l)
		return true
	}
	at := now.Add(d)
	s.setListExpiry(l, at)
	return false
}

func (s *Store[K]) setListExpiry(l *listContainer, at clock.MonotonicTime) {
	if l.ExpireAt != nil {
		s.listExp.Delete(nameExpItem{At: *l.ExpireAt, Name: l.Name})
	}
	expireAt := at
	l.ExpireAt = &expireAt
	s.listExp.ReplaceOrInsert(nameExpItem{At: at, Name: l.Name})
}

func (s *Store[K]) clearListExpiry(l *listContainer) {
	if l.ExpireAt == nil {
		return
	}
	s.listExp.Delete(nameExpItem{At: *l.ExpireAt, Name: l.Name})
	l.ExpireAt = nil
}
