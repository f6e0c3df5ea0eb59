package qosfsm

import (
	"sync"
	"time"

	"github.com/hdds-io/hdds/internal/keyhash"
)

// DeadlineWatchdog tracks, per instance, the deadline by which the next
// sample must arrive. Missing a deadline is
// reported exactly once per miss, then the window resets from the miss
// time so a stalled instance reports again every period rather than once.
type DeadlineWatchdog struct {
	mu       sync.Mutex
	period   time.Duration
	deadline map[keyhash.KeyHash]time.Time
	onMissed func(keyhash.KeyHash)
}

// NewDeadlineWatchdog returns a watchdog enforcing period. A zero period
// disables deadline tracking entirely (Check always reports no misses).
func NewDeadlineWatchdog(period time.Duration, onMissed func(keyhash.KeyHash)) *DeadlineWatchdog {
	return &DeadlineWatchdog{
		period:   period,
		deadline: make(map[keyhash.KeyHash]time.Time),
		onMissed: onMissed,
	}
}

// Touch records that instance produced or was delivered a sample at now,
// resetting its deadline window.
func (d *DeadlineWatchdog) Touch(instance keyhash.KeyHash, now time.Time) {
	if d.period <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deadline[instance] = now.Add(d.period)
}

// Check reports every instance whose deadline has elapsed as of now,
// resetting each reported instance's window so it is not reported again
// until another full period elapses.
func (d *DeadlineWatchdog) Check(now time.Time) {
	if d.period <= 0 {
		return
	}
	d.mu.Lock()
	var missed []keyhash.KeyHash
	for inst, dl := range d.deadline {
		if now.After(dl) {
			missed = append(missed, inst)
			d.deadline[inst] = now.Add(d.period)
		}
	}
	d.mu.Unlock()

	if d.onMissed != nil {
		for _, inst := range missed {
			d.onMissed(inst)
		}
	}
}
