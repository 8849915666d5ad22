package store

import (
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// hashContainer is a named field->string mapping, created on first write
// and destroyed once empty (spec §3 invariant 1).
type hashContainer struct {
	Name     string
	Fields   map[string]string
	ExpireAt *clock.MonotonicTime
}

func (s *Store[K]) hashGetOrAdd(name string) *hashContainer {
	probe := &hashContainer{Name: name}
	h, ok := s.hashes.Get(probe)
	if !ok {
		h = &hashContainer{Name: name, Fields: make(map[string]string)}
		s.hashes.ReplaceOrInsert(h)
	}
	return h
}

// HashSetRange sets or overwrites the given fields on the named hash,
// creating it if absent.
func (s *Store[K]) HashSetRange(name string, fields []types.NameValue) {
	h := s.hashGetOrAdd(name)
	for _, f := range fields {
		h.Fields[f.Name] = f.Value
	}
}

// HashGet returns a copy of the named hash's fields, or nil if absent.
func (s *Store[K]) HashGet(name string) map[string]string {
	probe := &hashContainer{Name: name}
	h, ok := s.hashes.Get(probe)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(h.Fields))
	for k, v := range h.Fields {
		out[k] = v
	}
	return out
}

// HashRemove deletes the entire named hash, idempotent-by-absence.
func (s *Store[K]) HashRemove(name string) {
	probe := &hashContainer{Name: name}
	h, ok := s.hashes.Get(probe)
	if !ok {
		return
	}
	if h.ExpireAt != nil {
		s.hashExp.Delete(nameExpItem{At: *h.ExpireAt, Name: name})
	}
	s.hashes.Delete(probe)
}

// HashExpire applies an expiry request to the named hash, following the
// same now/expireIn semantics as JobExpire (capped by MaxExpirationTime).
// Returns true if the hash was deleted.
func (s *Store[K]) HashExpire(name string, now *clock.MonotonicTime, expireIn *time.Duration) bool {
	probe := &hashContainer{Name: name}
	h, ok := s.hashes.Get(probe)
	if !ok {
		return false
	}
	if now == nil || expireIn == nil {
		s.clearHashExpiry(h)
		return false
	}
	d := s.clampExpiry(*expireIn, false)
	if d <= 0 {
		s.HashRemove(name)
		return true
	}
	at := now.Add(d)
	s.setHashExpiry(h, at)
	return false
}

func (s *Store[K]) setHashExpiry(h *hashContainer, at clock.MonotonicTime) {
	if h.ExpireAt != nil {
		s.hashExp.Delete(nameExpItem{At: *h.ExpireAt, Name: h.Name})
	}
	expireAt := at
	h.ExpireAt = &expireAt
	s.hashExp.ReplaceOrInsert(nameExpItem{At: at, Name: h.Name})
}

func (s *Store[K]) clearHashExpiry(h *hashContainer) {
	if h.ExpireAt == nil {
		return
	}
	s.hashExp.Delete(nameExpItem{At: *h.ExpireAt, Name: h.Name})
	h.ExpireAt = nil
}
