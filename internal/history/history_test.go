package history

import (
	"testing"
	"time"

	"github.com/hdds-io/hdds/choices"
	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/herr"
	"github.com/hdds-io/hdds/internal/keyhash"
	"github.com/hdds-io/hdds/qos"
	"github.com/stretchr/testify/require"
)

func key(b byte) keyhash.KeyHash {
	var k keyhash.KeyHash
	k[0] = b
	return k
}

func TestKeepLastEvictsOldest(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepLast, Depth: 2}, qos.ResourceLimits{}, qos.Lifespan{})
	k := key(1)
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}))
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 2, SourceTimestamp: time.Now()}))
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 3, SourceTimestamp: time.Now()}))

	samples := c.Samples(k)
	require.Len(t, samples, 2)
	require.Equal(t, uint64(2), samples[0].SequenceNumber)
	require.Equal(t, uint64(3), samples[1].SequenceNumber)
}

func TestKeepAllRejectsOverMaxSamples(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{MaxSamples: 1}, qos.Lifespan{})
	k := key(1)
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}))
	err := c.Admit(k, &Sample{SequenceNumber: 2, SourceTimestamp: time.Now()})
	require.Error(t, err)
	require.Equal(t, herr.OutOfResources, herr.CodeOf(err))
}

func TestAdmitRejectsDuplicateWriterSequence(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	w := guid.New(guid.Prefix{1}, guid.EntityID{2})
	k := key(1)

	require.NoError(t, c.Admit(k, &Sample{WriterGUID: w, SequenceNumber: 7, SourceTimestamp: time.Now()}))
	err := c.Admit(k, &Sample{WriterGUID: w, SequenceNumber: 7, SourceTimestamp: time.Now()})
	require.Error(t, err)
	require.Equal(t, herr.AlreadyAdmitted, herr.CodeOf(err))
	require.Len(t, c.Samples(k), 1, "the resent duplicate must not be stored")
}

func TestAdmitAllowsSameSequenceFromDifferentWriters(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	w1 := guid.New(guid.Prefix{1}, guid.EntityID{2})
	w2 := guid.New(guid.Prefix{3}, guid.EntityID{4})
	k := key(1)

	require.NoError(t, c.Admit(k, &Sample{WriterGUID: w1, SequenceNumber: 1, SourceTimestamp: time.Now()}))
	require.NoError(t, c.Admit(k, &Sample{WriterGUID: w2, SequenceNumber: 1, SourceTimestamp: time.Now()}))
	require.Len(t, c.Samples(k), 2)
}

func TestForgetAckedRemovesOnlyMatchingSequence(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	k := key(1)
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}))
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 2, SourceTimestamp: time.Now()}))

	c.ForgetAcked(1)
	samples := c.Samples(k)
	require.Len(t, samples, 1)
	require.Equal(t, uint64(2), samples[0].SequenceNumber)
}

func TestMaxInstancesRejectsNewInstance(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{MaxInstances: 1}, qos.Lifespan{})
	require.NoError(t, c.Admit(key(1), &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}))
	err := c.Admit(key(2), &Sample{SequenceNumber: 2, SourceTimestamp: time.Now()})
	require.Error(t, err)
	require.Equal(t, herr.OutOfResources, herr.CodeOf(err))
}

func TestViewStateTransitionsNewToNotNew(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	k := key(1)
	s1 := &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}
	require.NoError(t, c.Admit(k, s1))
	require.Equal(t, choices.New, s1.ViewState)

	s2 := &Sample{SequenceNumber: 2, SourceTimestamp: time.Now()}
	require.NoError(t, c.Admit(k, s2))
	require.Equal(t, choices.NotNew, s2.ViewState)
}

func TestDisposeMarksInstanceState(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	k := key(1)
	s := &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}
	require.NoError(t, c.Admit(k, s))
	c.Dispose(k)
	require.Equal(t, choices.NotAliveDisposed, s.InstanceState)
}

func TestLifespanSweepExpiresOldSamples(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{Duration: time.Millisecond})
	k := key(1)
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 1, SourceTimestamp: time.Now().Add(-time.Hour)}))
	require.Equal(t, 0, c.Len(), "the lifespan sweep inside Admit removes the already-expired sample")
}

func TestAllPreservesAdmissionOrderAcrossInstances(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	require.NoError(t, c.Admit(key(1), &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}))
	require.NoError(t, c.Admit(key(2), &Sample{SequenceNumber: 2, SourceTimestamp: time.Now()}))
	require.NoError(t, c.Admit(key(1), &Sample{SequenceNumber: 3, SourceTimestamp: time.Now()}))

	all := c.All()
	require.Len(t, all, 3)
	require.Equal(t, uint64(1), all[0].SequenceNumber)
	require.Equal(t, uint64(3), all[1].SequenceNumber)
	require.Equal(t, uint64(2), all[2].SequenceNumber)
}

func TestTakeAllRemovesUnreadSamples(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	require.NoError(t, c.Admit(key(1), &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}))
	require.NoError(t, c.Admit(key(2), &Sample{SequenceNumber: 2, SourceTimestamp: time.Now()}))

	taken := c.TakeAll()
	require.Len(t, taken, 2)
	require.Equal(t, uint64(1), taken[0].SequenceNumber)
	require.Equal(t, uint64(2), taken[1].SequenceNumber)
	require.Equal(t, 0, c.Len())
	require.Empty(t, c.All())
}

func TestTakeAllLeavesAlreadyReadSamplesInPlace(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	k := key(1)
	require.NoError(t, c.Admit(k, &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}))
	c.ReadAll()

	taken := c.TakeAll()
	require.Empty(t, taken, "a sample already marked READ is not taken again")
	require.Equal(t, 1, c.Len())
}

func TestReadAllMarksButDoesNotRemove(t *testing.T) {
	c := New(qos.History{Kind: qos.KeepAll}, qos.ResourceLimits{}, qos.Lifespan{})
	k := key(1)
	s := &Sample{SequenceNumber: 1, SourceTimestamp: time.Now()}
	require.NoError(t, c.Admit(k, s))

	read := c.ReadAll()
	require.Len(t, read, 1)
	require.Equal(t, choices.Read, s.SampleState)
	require.Equal(t, 1, c.Len())

	require.Empty(t, c.ReadAll(), "a sample already marked READ is not returned again")
}
