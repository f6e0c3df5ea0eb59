// Package qosfsm implements the QoS state machines: liveliness lease
// tracking, deadline watchdogs, ownership arbitration and the reader-side
// time-based filter. The liveliness tracker is a mutex-protected map from
// id to an expiry time, with an assert/check pair driving lost/recovered
// notifications.
package qosfsm

import (
	"sync"
	"time"

	"github.com/hdds-io/hdds/internal/guid"
)

// LivelinessTracker tracks, per remote writer GUID, the deadline by which
// that writer must next assert liveliness. A writer that misses its lease
// is reported lost exactly once per episode.
type LivelinessTracker struct {
	mu      sync.Mutex
	leases  map[guid.GUID]time.Time
	lost    map[guid.GUID]bool
	onLost  func(guid.GUID)
	onBack  func(guid.GUID)
}

// NewLivelinessTracker returns an empty tracker. onLost and onBack may be
// nil; if set they are invoked synchronously: onLost from CheckExpired
// after the tracker's lock is released, onBack from Assert while the lock
// is held.
func NewLivelinessTracker(onLost, onBack func(guid.GUID)) *LivelinessTracker {
	return &LivelinessTracker{
		leases: make(map[guid.GUID]time.Time),
		lost:   make(map[guid.GUID]bool),
		onLost: onLost,
		onBack: onBack,
	}
}

// Assert records that writer asserted liveliness, extending its lease to
// leaseUntil (an absolute expiry time, computed by the caller as
// now+lease_duration so tests can control "now" independently of the wall
// clock). If the writer had previously been reported lost, onBack fires
// once.
func (t *LivelinessTracker) Assert(writer guid.GUID, leaseUntil time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leases[writer] = leaseUntil
	if t.lost[writer] {
		delete(t.lost, writer)
		if t.onBack != nil {
			t.onBack(writer)
		}
	}
}

// CheckExpired scans every tracked writer and reports (exactly once per
// loss episode) any whose lease has expired as of now.
func (t *LivelinessTracker) CheckExpired(now time.Time) {
	t.mu.Lock()
	var newlyLost []guid.GUID
	for w, until := range t.leases {
		if now.After(until) && !t.lost[w] {
			t.lost[w] = true
			newlyLost = append(newlyLost, w)
		}
	}
	t.mu.Unlock()

	if t.onLost != nil {
		for _, w := range newlyLost {
			t.onLost(w)
		}
	}
}

// IsAlive reports whether writer's lease has not expired. Unknown writers
// are considered alive until their first missed lease is observed.
func (t *LivelinessTracker) IsAlive(writer guid.GUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.lost[writer]
}

// Forget removes writer from tracking entirely, called when the writer is
// unmatched.
func (t *LivelinessTracker) Forget(writer guid.GUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.leases, writer)
	delete(t.lost, writer)
}
