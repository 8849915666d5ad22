package store

import (
	"time"

	"github.com/ChuLiYu/jobcore/internal/clock"
	"github.com/ChuLiYu/jobcore/pkg/types"
)

// ServerAnnounce records (or re-records) a worker process's announcement.
func (s *Store[K]) ServerAnnounce(id string, ctx types.ServerContext, now clock.MonotonicTime) {
	info := &types.ServerInfo{
		ID:          id,
		Context:     ctx,
		StartedAt:   now,
		HeartbeatAt: now,
	}
	s.servers.ReplaceOrInsert(info)
}

// ServerHeartbeat refreshes the last-seen time for an announced server.
// No-op if the server was never announced (idempotent-by-absence).
func (s *Store[K]) ServerHeartbeat(id string, now clock.MonotonicTime) {
	probe := &types.ServerInfo{ID: id}
	info, ok := s.servers.Get(probe)
	if !ok {
		return
	}
	info.HeartbeatAt = now
}

// ServerGet returns a copy of the named server's record, or nil if absent.
func (s *Store[K]) ServerGet(id string) *types.ServerInfo {
	probe := &types.ServerInfo{ID: id}
	info, ok := s.servers.Get(probe)
	if !ok {
		return nil
	}
	clone := *info
	return &clone
}

// ServerDelete removes a server record, idempotent-by-absence.
func (s *Store[K]) ServerDelete(id string) {
	s.servers.Delete(&types.ServerInfo{ID: id})
}

// ServerDeleteInactive removes every server whose last heartbeat is older
// than timeout, and returns the number removed.
func (s *Store[K]) ServerDeleteInactive(now clock.MonotonicTime, timeout time.Duration) int {
	var stale []string
	s.servers.Ascend(func(info *types.ServerInfo) bool {
		if now.Sub(info.HeartbeatAt) > timeout {
			stale = append(stale, info.ID)
		}
		return true
	})
	for _, id := range stale {
		s.servers.Delete(&types.ServerInfo{ID: id})
	}
	return len(stale)
}

// ServerCount returns the number of announced servers.
func (s *Store[K]) ServerCount() int {
	return s.servers.Len()
}
