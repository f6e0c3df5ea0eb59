package qosfsm

import (
	"sync"
	"time"

	"github.com/hdds-io/hdds/internal/keyhash"
)

// TimeBasedFilter drops samples of the same instance delivered to a reader
// more often than minimumSeparation. It is
// reader-local state, never consulted during matching.
type TimeBasedFilter struct {
	mu                sync.Mutex
	minimumSeparation time.Duration
	last              map[keyhash.KeyHash]time.Time
}

// NewTimeBasedFilter returns a filter enforcing minimumSeparation. Zero
// disables filtering: Admit always returns true.
func NewTimeBasedFilter(minimumSeparation time.Duration) *TimeBasedFilter {
	return &TimeBasedFilter{
		minimumSeparation: minimumSeparation,
		last:              make(map[keyhash.KeyHash]time.Time),
	}
}

// Admit reports whether a sample of instance arriving at now should be
// delivered to the application, and records now as the instance's last
// delivery time when it does.
func (f *TimeBasedFilter) Admit(instance keyhash.KeyHash, now time.Time) bool {
	if f.minimumSeparation <= 0 {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.last[instance]
	if ok && now.Sub(last) < f.minimumSeparation {
		return false
	}
	f.last[instance] = now
	return true
}
