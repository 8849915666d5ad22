// Package types defines the core domain model shared by every engine
// package: job keys, job records, parameter bags, and state history.
package types

import (
	"strconv"

	"github.com/google/uuid"
)

// Key is the total-order constraint every job-key variant must satisfy.
// The engine is parametrized over K so the same store/dispatcher/fetcher
// code works whether jobs are identified by a 64-bit counter or a 128-bit
// UUID; the "idType" knob picks the concrete K at construction time
// instead of at every call site.
type Key[T any] interface {
	comparable
	// Compare returns <0, 0, >0 as the receiver is less than, equal to, or
	// greater than other. Ties never occur between distinct keys of a
	// correctly generated sequence, but the btree indexes require a total
	// order regardless.
	Compare(other T) int
	String() string
}

// IntKey is a 64-bit counter-backed job key, the default idType.
type IntKey uint64

func (k IntKey) Compare(other IntKey) int {
	switch {
	case k < other:
		return -1
	case k > other:
		return 1
	default:
		return 0
	}
}

func (k IntKey) String() string {
	return strconv.FormatUint(uint64(k), 10)
}

// IntKeyGenerator hands out strictly increasing IntKey values.
type IntKeyGenerator struct {
	next uint64
}

// Next returns the next key in the sequence, starting at 1.
func (g *IntKeyGenerator) Next() IntKey {
	g.next++
	return IntKey(g.next)
}

// UUIDKey is a 128-bit UUID-backed job key, selected via idType: "uuid".
type UUIDKey uuid.UUID

func (k UUIDKey) Compare(other UUIDKey) int {
	a, b := uuid.UUID(k), uuid.UUID(other)
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (k UUIDKey) String() string {
	return uuid.UUID(k).String()
}

// UUIDKeyGenerator hands out random v4 UUID keys.
type UUIDKeyGenerator struct{}

// Next returns a freshly generated UUIDKey.
func (UUIDKeyGenerator) Next() UUIDKey {
	return UUIDKey(uuid.New())
}
