// Package clock provides the monotonic tick source every expiry comparison
// in the engine is measured against. Wall-clock adjustments (NTP step,
// daylight saving, operator date -s) must never perturb a job's expiry.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// MonotonicTime is an opaque tick reading. It supports subtraction (to a
// duration), addition of a duration, and total ordering, but intentionally
// exposes no way to recover a wall-clock instant except through Wall, whose
// result must not be used for further arithmetic.
type MonotonicTime struct {
	t time.Time
}

// Wall projects the reading onto wall-clock time, for user-visible
// timestamps only (e.g. a job's CreatedAt as rendered to an operator).
// The result must not be fed back into expiry comparisons.
func (m MonotonicTime) Wall() time.Time {
	return m.t
}

// Sub returns the duration elapsed between other and m (m - other).
func (m MonotonicTime) Sub(other MonotonicTime) time.Duration {
	return m.t.Sub(other.t)
}

// Add returns the reading advanced by d.
func (m MonotonicTime) Add(d time.Duration) MonotonicTime {
	return MonotonicTime{t: m.t.Add(d)}
}

// Before reports whether m occurs strictly before other.
func (m MonotonicTime) Before(other MonotonicTime) bool {
	return m.t.Before(other.t)
}

// After reports whether m occurs strictly after other.
func (m MonotonicTime) After(other MonotonicTime) bool {
	return m.t.After(other.t)
}

// Compare returns <0, 0, >0 as m is before, equal to, or after other.
func (m MonotonicTime) Compare(other MonotonicTime) int {
	switch {
	case m.t.Before(other.t):
		return -1
	case m.t.After(other.t):
		return 1
	default:
		return 0
	}
}

// IsZero reports whether m is the zero value (used to represent "no
// expiry" at call sites that can't use a pointer/optional).
func (m MonotonicTime) IsZero() bool {
	return m.t.IsZero()
}

// Clock is the tick source used throughout the engine. NewReal wraps the
// platform's high-resolution timer; NewFake (in tests) wraps a
// clockwork.FakeClock so expiry and eviction can be exercised without
// wall-clock sleeps.
type Clock interface {
	Now() MonotonicTime
}

type realClock struct {
	c clockwork.Clock
}

// NewReal returns a Clock backed by the platform's monotonic timer.
func NewReal() Clock {
	return realClock{c: clockwork.NewRealClock()}
}

func (r realClock) Now() MonotonicTime {
	return MonotonicTime{t: r.c.Now()}
}

// Fake is a controllable Clock for deterministic expiry/eviction tests.
type Fake struct {
	clockwork.FakeClock
}

// NewFake returns a Fake clock pinned at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{FakeClock: clockwork.NewFakeClock()}
}

// Now implements Clock.
func (f *Fake) Now() MonotonicTime {
	return MonotonicTime{t: f.FakeClock.Now()}
}

// Advance moves the fake clock forward by d, the way a test simulates
// time passing for expiry/eviction without a real sleep.
func (f *Fake) Advance(d time.Duration) {
	f.FakeClock.Advance(d)
}
