package reliability

import "time"

// HeartbeatPacer decides when a reliable writer should emit its next
// HEARTBEAT submessage, triggered by either a sample count or an elapsed
// time since the last heartbeat, whichever comes first.
type HeartbeatPacer struct {
	periodSamples int
	periodTime    time.Duration

	samplesSinceLast int
	lastSent         time.Time
}

// NewHeartbeatPacer returns a pacer that fires after periodSamples new
// samples or periodTime elapsed, whichever is sooner. A zero value for
// either disables that trigger.
func NewHeartbeatPacer(periodSamples int, periodTime time.Duration) *HeartbeatPacer {
	return &HeartbeatPacer{periodSamples: periodSamples, periodTime: periodTime, lastSent: time.Now()}
}

// RecordSample accounts for one newly written sample.
func (p *HeartbeatPacer) RecordSample() {
	p.samplesSinceLast++
}

// Due reports whether a heartbeat should be sent now, given now.
func (p *HeartbeatPacer) Due(now time.Time) bool {
	if p.periodSamples > 0 && p.samplesSinceLast >= p.periodSamples {
		return true
	}
	if p.periodTime > 0 && now.Sub(p.lastSent) >= p.periodTime {
		return true
	}
	return false
}

// MarkSent resets the pacer's counters after a heartbeat is sent.
func (p *HeartbeatPacer) MarkSent(now time.Time) {
	p.samplesSinceLast = 0
	p.lastSent = now
}
