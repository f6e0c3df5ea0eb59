package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCounterAddAndRead(t *testing.T) {
	c := NewCounter()
	c.Inc()
	c.Add(4)
	require.Equal(t, int64(5), c.Read())
}

func TestGaugeSetAndAdd(t *testing.T) {
	g := NewGauge()
	g.Set(3)
	g.Add(-1)
	require.Equal(t, 2.0, g.Read())
}

func TestAveragerReadsMean(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewAverager("test_metric", "a test metric", reg)
	require.NoError(t, err)
	a.Observe(2)
	a.Observe(4)
	require.Equal(t, 3.0, a.Read())
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("writes")
	c, err := r.GetCounter("writes")
	require.NoError(t, err)
	c.Inc()
	require.Equal(t, int64(1), c.Read())

	_, err = r.GetGauge("missing")
	require.Error(t, err)
}

func TestHDDSMetricsSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHDDSMetrics(reg)
	require.NoError(t, err)

	m.RecordSent(128)
	m.RecordSent(64)
	m.RecordReceived()
	m.RecordDropped()
	m.RecordWouldBlock()
	m.RecordLatency(5 * time.Millisecond)

	snap := m.Snapshot(time.Unix(0, 1000))
	require.Equal(t, int64(2), snap.MessagesSent)
	require.Equal(t, int64(1), snap.MessagesReceived)
	require.Equal(t, int64(1), snap.MessagesDropped)
	require.Equal(t, int64(192), snap.BytesSent)
	require.Equal(t, int64(1), snap.WouldBlockCount)
	require.Equal(t, int64(1000), snap.TimestampNS)
	require.Greater(t, snap.LatencyP50NS, int64(0))
}
