package store

import "github.com/ChuLiYu/jobcore/pkg/types"

// queueContainer holds a queue's FIFO of job keys. Unlike the other
// containers, queues are retained even when empty (spec §3: "destroyed
// when dispatcher removes an empty and unreferenced one (optional;
// retention is permitted)"); this store chooses retention, since the
// queue-wait graph (internal/queuewait) keys its own state by the same
// name and churn-free names are simpler to reason about.
type queueContainer[K types.Key[K]] struct {
	name  string
	items []K
}

// QueueGetOrAdd returns the named queue, creating it on first reference.
func (s *Store[K]) QueueGetOrAdd(name string) *queueContainer[K] {
	q, ok := s.queues[name]
	if !ok {
		q = &queueContainer[K]{name: name}
		s.queues[name] = q
	}
	return q
}

// QueueEnqueue appends a job key to the tail of the named queue.
func (s *Store[K]) QueueEnqueue(name string, key K) {
	q := s.QueueGetOrAdd(name)
	q.items = append(q.items, key)
}

// QueuePop removes and returns the job key at the head of the named
// queue. Returns false if the queue is absent or empty.
func (s *Store[K]) QueuePop(name string) (K, bool) {
	var zero K
	q, ok := s.queues[name]
	if !ok || len(q.items) == 0 {
		return zero, false
	}
	key := q.items[0]
	q.items = q.items[1:]
	return key, true
}

// QueueCount returns the number of job keys currently queued, 0 if the
// queue has never been referenced.
func (s *Store[K]) QueueCount(name string) int {
	q, ok := s.queues[name]
	if !ok {
		return 0
	}
	return len(q.items)
}

// QueuePeek returns up to count job keys starting at offset from the head,
// as a copy.
func (s *Store[K]) QueuePeek(name string, offset, count int) []K {
	q, ok := s.queues[name]
	if !ok || offset >= len(q.items) {
		return nil
	}
	end := offset + count
	if end > len(q.items) {
		end = len(q.items)
	}
	out := make([]K, end-offset)
	copy(out, q.items[offset:end])
	return out
}
