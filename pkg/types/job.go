package types

import (
	"strings"

	"github.com/ChuLiYu/jobcore/internal/clock"
)

// NameValue is an ordered name/value pair, used for state-record data and
// anywhere else insertion order must survive a round trip (unlike a map).
type NameValue struct {
	Name  string
	Value string
}

// StateRecord captures one point in a job's history: the named state it
// entered, an optional human-readable reason, arbitrary ordered state data,
// and when it was recorded.
type StateRecord struct {
	Name      string
	Reason    string
	Data      []NameValue
	CreatedAt clock.MonotonicTime
}

// Job is the engine's unit of work. K is the job-key variant (IntKey or
// UUIDKey); Invocation is an opaque blob the core never interprets, and
// the façade's serialization hook owns its shape.
type Job[K Key[K]] struct {
	Key        K
	Invocation []byte
	Parameters map[string]string

	CurrentState *StateRecord
	History      []StateRecord

	CreatedAt clock.MonotonicTime
	ExpireAt  *clock.MonotonicTime
}

// HasExpiry reports whether the job carries an expiration.
func (j *Job[K]) HasExpiry() bool {
	return j.ExpireAt != nil
}

// Clone returns a deep copy suitable for returning from a read query: the
// caller may mutate the result without risking the store (spec §4.8).
func (j *Job[K]) Clone() *Job[K] {
	if j == nil {
		return nil
	}
	clone := *j
	if j.Parameters != nil {
		clone.Parameters = make(map[string]string, len(j.Parameters))
		for k, v := range j.Parameters {
			clone.Parameters[k] = v
		}
	}
	if j.CurrentState != nil {
		cs := *j.CurrentState
		cs.Data = append([]NameValue(nil), j.CurrentState.Data...)
		clone.CurrentState = &cs
	}
	clone.History = make([]StateRecord, len(j.History))
	for i, rec := range j.History {
		rec.Data = append([]NameValue(nil), rec.Data...)
		clone.History[i] = rec
	}
	if j.ExpireAt != nil {
		exp := *j.ExpireAt
		clone.ExpireAt = &exp
	}
	return &clone
}

// StringComparer orders and equates string keys/values. The default is
// case-sensitive ordinal (strings.Compare); state-index keys always use
// their own case-insensitive comparison regardless of this setting
// (spec §3).
type StringComparer func(a, b string) int

// OrdinalComparer is the default, case-sensitive byte-wise comparer.
func OrdinalComparer(a, b string) int {
	return strings.Compare(a, b)
}

// CaseInsensitiveComparer folds case before comparing, offered as an
// explicit opt-in for façade configuration. State-index keys are folded
// the same way (strings.ToLower) by the store itself, regardless of the
// configured StringComparer.
func CaseInsensitiveComparer(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// SortedSetMember is one element of a sorted set: a value with its score.
// Total order is score ascending, ties broken by value under the
// configured StringComparer (spec §3).
type SortedSetMember struct {
	Value string
	Score float64
}

// ServerContext describes what a worker process announced about itself.
type ServerContext struct {
	Queues      []string
	WorkerCount int
}

// ServerInfo is the heartbeat record for one announced worker process.
type ServerInfo struct {
	ID          string
	Context     ServerContext
	StartedAt   clock.MonotonicTime
	HeartbeatAt clock.MonotonicTime
}
