package metrics

import (
	"sync/atomic"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is the telemetry HDDS exposes for a domain participant
//: point-in-time counters and latency percentiles, read
// without blocking the hot path.
type Snapshot struct {
	TimestampNS      int64
	MessagesSent     int64
	MessagesReceived int64
	MessagesDropped  int64
	BytesSent        int64
	LatencyP50NS     int64
	LatencyP99NS     int64
	LatencyP999NS    int64
	MergeFullCount   int64
	WouldBlockCount  int64
}

// HDDSMetrics is a metrics facade fed through its Record methods; no
// writer, reader or transport in this module records into it. Counters use atomics directly on the hot
// path; latency percentiles are read from a prometheus Summary. It wraps a
// prometheus.Registerer behind a typed facade instead of exposing raw
// collectors to callers.
type HDDSMetrics struct {
	Registry prometheus.Registerer

	messagesSent     int64
	messagesReceived int64
	messagesDropped  int64
	bytesSent        int64
	mergeFullCount   int64
	wouldBlockCount  int64

	latency prometheus.Summary
}

// NewHDDSMetrics registers a latency summary under reg and returns an
// HDDSMetrics ready to instrument.
func NewHDDSMetrics(reg prometheus.Registerer) (*HDDSMetrics, error) {
	latency := prometheus.NewSummary(prometheus.SummaryOpts{
		Name: "hdds_sample_latency_seconds",
		Help: "End-to-end latency from write to take, in seconds.",
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	})
	if err := reg.Register(latency); err != nil {
		return nil, err
	}
	return &HDDSMetrics{Registry: reg, latency: latency}, nil
}

// Register registers an additional prometheus collector under the same
// registerer, used by components (e.g. internal/transport) that expose
// their own collectors.
func (m *HDDSMetrics) Register(collector prometheus.Collector) error {
	return m.Registry.Register(collector)
}

// RecordSent accounts for one message transmitted successfully.
func (m *HDDSMetrics) RecordSent(bytes int) {
	atomic.AddInt64(&m.messagesSent, 1)
	atomic.AddInt64(&m.bytesSent, int64(bytes))
}

// RecordReceived accounts for one message delivered to a reader.
func (m *HDDSMetrics) RecordReceived() {
	atomic.AddInt64(&m.messagesReceived, 1)
}

// RecordDropped accounts for one message discarded (late arrival,
// RESOURCE_LIMITS rejection, reassembly timeout).
func (m *HDDSMetrics) RecordDropped() {
	atomic.AddInt64(&m.messagesDropped, 1)
}

// RecordMergeFull accounts for one would-be history cache admission that
// found the merged view (instance+sample limits) already at capacity.
func (m *HDDSMetrics) RecordMergeFull() {
	atomic.AddInt64(&m.mergeFullCount, 1)
}

// RecordWouldBlock accounts for one reliable writer send that hit
// WOULD_BLOCK and entered congestion backoff.
func (m *HDDSMetrics) RecordWouldBlock() {
	atomic.AddInt64(&m.wouldBlockCount, 1)
}

// RecordLatency records one write-to-take latency observation.
func (m *HDDSMetrics) RecordLatency(d time.Duration) {
	if m.latency != nil {
		m.latency.Observe(d.Seconds())
	}
}

// Snapshot returns the current counters. Latency percentiles are read from
// the prometheus Summary via gatherSummary, which returns zeros if nothing
// has been observed yet.
func (m *HDDSMetrics) Snapshot(now time.Time) Snapshot {
	p50, p99, p999 := gatherSummary(m.latency)
	return Snapshot{
		TimestampNS:      now.UnixNano(),
		MessagesSent:     atomic.LoadInt64(&m.messagesSent),
		MessagesReceived: atomic.LoadInt64(&m.messagesReceived),
		MessagesDropped:  atomic.LoadInt64(&m.messagesDropped),
		BytesSent:        atomic.LoadInt64(&m.bytesSent),
		LatencyP50NS:     p50,
		LatencyP99NS:     p99,
		LatencyP999NS:    p999,
		MergeFullCount:   atomic.LoadInt64(&m.mergeFullCount),
		WouldBlockCount:  atomic.LoadInt64(&m.wouldBlockCount),
	}
}

// gatherSummary extracts the configured quantiles from a prometheus
// Summary's current metric snapshot, in nanoseconds.
func gatherSummary(s prometheus.Summary) (p50, p99, p999 int64) {
	if s == nil {
		return 0, 0, 0
	}
	var m dto.Metric
	if err := s.Write(&m); err != nil {
		return 0, 0, 0
	}
	for _, q := range m.GetSummary().GetQuantile() {
		switch q.GetQuantile() {
		case 0.5:
			p50 = int64(q.GetValue() * float64(time.Second))
		case 0.99:
			p99 = int64(q.GetValue() * float64(time.Second))
		case 0.999:
			p999 = int64(q.GetValue() * float64(time.Second))
		}
	}
	return p50, p99, p999
}
