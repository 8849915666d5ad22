// Package lockregistry implements the reentrant, multi-waiter named lock
// (C3). Unlike the state store, this package is thread-safe by design: it
// is consulted directly from submitter/fetcher goroutines, never routed
// through the dispatcher (spec §5).
package lockregistry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrNotOwner is returned when Release is called by a token that does not
// hold the lock. The protocol treats this as a programming error the
// caller should surface fatally (spec §4.3) rather than retry.
var ErrNotOwner = errors.New("lockregistry: release by non-owner")

// TimeoutError reports that an acquire exceeded its deadline for the named
// resource. Retryable.
type TimeoutError struct {
	Resource string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("lockregistry: timeout acquiring %q", e.Resource)
}

// lockSlot is one named lock's state machine: Vacant -> Held(owner,
// level>=1) -> Vacant | Finalized (spec §4.3).
type lockSlot struct {
	mu        sync.Mutex
	owner     string
	level     int
	refCount  int
	finalized bool
	sem       *semaphore.Weighted // weight 1: held iff owner != ""
}

func newLockSlot() *lockSlot {
	return &lockSlot{sem: semaphore.NewWeighted(1)}
}

// Registry is the concurrent map of resource name -> lock slot.
type Registry struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

// New returns an empty lock registry.
func New() *Registry {
	return &Registry{slots: make(map[string]*lockSlot)}
}

func (r *Registry) getOrAdd(name string) *lockSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[name]
	if !ok {
		slot = newLockSlot()
		r.slots[name] = slot
	}
	return slot
}

// removeIfSame deletes name from the map only if it still maps to slot,
// guarding against racing with a fresh slot already inserted under the same
// name after this one was finalized.
func (r *Registry) removeIfSame(name string, slot *lockSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.slots[name]; ok && cur == slot {
		delete(r.slots, name)
	}
}

// Handle represents one successful acquisition. Calling Release on all
// exit paths (typically via defer) releases the lock; dropping it without
// releasing leaks the hold until the process that owns the handle exits.
type Handle struct {
	reg      *Registry
	resource string
	owner    string
	released bool
}

// Acquire acquires the named lock for owner, blocking up to ctx's
// deadline/cancellation. Reentrant: the same owner may acquire the same
// resource multiple times, incrementing a reentrancy level that Release
// must unwind symmetrically (spec §4.3, property P7).
func (r *Registry) Acquire(ctx context.Context, resource, owner string) (*Handle, error) {
	for {
		slot := r.getOrAdd(resource)
		slot.mu.Lock()

		if slot.finalized {
			// Observed between lookup and lock; the slot has already been
			// removed from the map. Retry with a fresh GetOrAdd.
			slot.mu.Unlock()
			continue
		}

		if slot.owner == "" {
			slot.owner = owner
			slot.level = 1
			slot.refCount++
			slot.mu.Unlock()
			if err := slot.sem.Acquire(ctx, 1); err != nil {
				r.rollbackFailedAcquire(resource, slot, true)
				return nil, translateAcquireErr(resource, err)
			}
			return &Handle{reg: r, resource: resource, owner: owner}, nil
		}

		if slot.owner == owner {
			slot.level++
			slot.refCount++
			slot.mu.Unlock()
			return &Handle{reg: r, resource: resource, owner: owner}, nil
		}

		// Contended: another owner holds it. Register as a waiter and
		// block on the semaphore, which the releaser signals via a single
		// Release(1) pulse (spec §4.3 step 2 "wait on the slot's monitor").
		slot.refCount++
		slot.mu.Unlock()

		if err := slot.sem.Acquire(ctx, 1); err != nil {
			r.rollbackFailedAcquire(resource, slot, false)
			return nil, translateAcquireErr(resource, err)
		}

		slot.mu.Lock()
		slot.owner = owner
		slot.level = 1
		slot.mu.Unlock()
		return &Handle{reg: r, resource: resource, owner: owner}, nil
	}
}

// rollbackFailedAcquire undoes the bookkeeping for a waiter (or the first,
// vacant-path acquirer) whose semaphore wait failed, finalizing the slot
// if no one else references it.
func (r *Registry) rollbackFailedAcquire(resource string, slot *lockSlot, wasVacantPath bool) {
	slot.mu.Lock()
	if wasVacantPath {
		slot.owner = ""
		slot.level = 0
	}
	slot.refCount--
	finalize := slot.refCount == 0
	if finalize {
		slot.finalized = true
	}
	slot.mu.Unlock()
	if finalize {
		r.removeIfSame(resource, slot)
	}
}

func translateAcquireErr(resource string, err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return &TimeoutError{Resource: resource}
}

// Release releases one level of reentrancy. When the level reaches zero,
// the slot becomes vacant and, if other callers are waiting, exactly one
// is pulsed awake. Releasing with a token that is not the current owner
// is a programming error (ErrNotOwner); the protocol assumes callers
// treat it as fatal, not retryable (spec §4.3/§7).
func (h *Handle) Release() error {
	if h.released {
		return ErrNotOwner
	}
	r := h.reg
	r.mu.Lock()
	slot, ok := r.slots[h.resource]
	r.mu.Unlock()
	if !ok {
		return ErrNotOwner
	}

	slot.mu.Lock()
	if slot.owner != h.owner {
		slot.mu.Unlock()
		return ErrNotOwner
	}
	slot.level--
	if slot.level > 0 {
		slot.mu.Unlock()
		h.released = true
		return nil
	}

	slot.owner = ""
	slot.refCount--
	finalize := slot.refCount == 0
	if finalize {
		slot.finalized = true
	}
	slot.mu.Unlock()
	h.released = true

	if finalize {
		r.removeIfSame(h.resource, slot)
	} else {
		slot.sem.Release(1)
	}
	return nil
}
